package repository

import (
	"context"

	"github.com/smallbiznis/propease/internal/reading/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const mainColumns = `id, meter_id, period, previous, current, billed_amount,
	replaced, final_old, initial_new, created_at, updated_at`

const subColumns = `id, tenant_id, period, previous, current,
	replaced, final_old, initial_new, created_at, updated_at`

func (r *repo) CreateMain(ctx context.Context, db *gorm.DB, reading *domain.MainMeterReading) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO main_meter_readings (id, meter_id, period, previous, current,
		 billed_amount, replaced, final_old, initial_new, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reading.ID,
		reading.MeterID,
		reading.Period,
		reading.Previous,
		reading.Current,
		reading.BilledAmount,
		reading.Replaced,
		reading.FinalOld,
		reading.InitialNew,
		reading.CreatedAt,
		reading.UpdatedAt,
	).Error
}

func (r *repo) UpdateMain(ctx context.Context, db *gorm.DB, reading *domain.MainMeterReading) error {
	if reading == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE main_meter_readings
		 SET previous = ?, current = ?, billed_amount = ?, replaced = ?,
		     final_old = ?, initial_new = ?, updated_at = ?
		 WHERE id = ?`,
		reading.Previous,
		reading.Current,
		reading.BilledAmount,
		reading.Replaced,
		reading.FinalOld,
		reading.InitialNew,
		reading.UpdatedAt,
		reading.ID,
	).Error
}

func (r *repo) FindMain(ctx context.Context, db *gorm.DB, meterID int64, period string) (*domain.MainMeterReading, error) {
	var rec domain.MainMeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+mainColumns+` FROM main_meter_readings
		 WHERE meter_id = ? AND period = ?`,
		meterID,
		period,
	).Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) LatestMainBefore(ctx context.Context, db *gorm.DB, meterID int64, period string) (*domain.MainMeterReading, error) {
	var rec domain.MainMeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+mainColumns+` FROM main_meter_readings
		 WHERE meter_id = ? AND period < ?
		 ORDER BY period DESC LIMIT 1`,
		meterID,
		period,
	).Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) ListMainForPeriod(ctx context.Context, db *gorm.DB, propertyID int64, period string) ([]domain.MainMeterReading, error) {
	var items []domain.MainMeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT r.id, r.meter_id, r.period, r.previous, r.current, r.billed_amount,
		        r.replaced, r.final_old, r.initial_new, r.created_at, r.updated_at
		 FROM main_meter_readings r
		 JOIN main_meters m ON m.id = r.meter_id
		 WHERE m.property_id = ? AND r.period = ?
		 ORDER BY m.code ASC`,
		propertyID,
		period,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CreateSub(ctx context.Context, db *gorm.DB, reading *domain.SubMeterReading) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sub_meter_readings (id, tenant_id, period, previous, current,
		 replaced, final_old, initial_new, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reading.ID,
		reading.TenantID,
		reading.Period,
		reading.Previous,
		reading.Current,
		reading.Replaced,
		reading.FinalOld,
		reading.InitialNew,
		reading.CreatedAt,
		reading.UpdatedAt,
	).Error
}

func (r *repo) UpdateSub(ctx context.Context, db *gorm.DB, reading *domain.SubMeterReading) error {
	if reading == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE sub_meter_readings
		 SET previous = ?, current = ?, replaced = ?,
		     final_old = ?, initial_new = ?, updated_at = ?
		 WHERE id = ?`,
		reading.Previous,
		reading.Current,
		reading.Replaced,
		reading.FinalOld,
		reading.InitialNew,
		reading.UpdatedAt,
		reading.ID,
	).Error
}

func (r *repo) FindSub(ctx context.Context, db *gorm.DB, tenantID int64, period string) (*domain.SubMeterReading, error) {
	var rec domain.SubMeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+subColumns+` FROM sub_meter_readings
		 WHERE tenant_id = ? AND period = ?`,
		tenantID,
		period,
	).Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) LatestSubBefore(ctx context.Context, db *gorm.DB, tenantID int64, period string) (*domain.SubMeterReading, error) {
	var rec domain.SubMeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+subColumns+` FROM sub_meter_readings
		 WHERE tenant_id = ? AND period < ?
		 ORDER BY period DESC LIMIT 1`,
		tenantID,
		period,
	).Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) ListSubForPeriod(ctx context.Context, db *gorm.DB, propertyID int64, period string) ([]domain.SubMeterReading, error) {
	var items []domain.SubMeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT r.id, r.tenant_id, r.period, r.previous, r.current,
		        r.replaced, r.final_old, r.initial_new, r.created_at, r.updated_at
		 FROM sub_meter_readings r
		 JOIN tenants t ON t.id = r.tenant_id
		 WHERE t.property_id = ? AND r.period = ?
		 ORDER BY t.flat_number ASC`,
		propertyID,
		period,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
