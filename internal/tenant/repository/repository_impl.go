package repository

import (
	"context"

	"github.com/smallbiznis/propease/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const tenantColumns = `id, property_id, meter_id, flat_number, name, email, occupants,
	remainder, active, move_in_date, move_out_date, created_at, updated_at`

func (r *repo) Create(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenants (id, property_id, meter_id, flat_number, name, email, occupants,
		 remainder, active, move_in_date, move_out_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tenant.ID,
		tenant.PropertyID,
		tenant.MeterID,
		tenant.FlatNumber,
		tenant.Name,
		tenant.Email,
		tenant.Occupants,
		tenant.Remainder,
		tenant.Active,
		tenant.MoveInDate,
		tenant.MoveOutDate,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, propertyID, id int64) (*domain.Tenant, error) {
	var t domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT `+tenantColumns+` FROM tenants WHERE property_id = ? AND id = ?`,
		propertyID,
		id,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) FindByFlat(ctx context.Context, db *gorm.DB, propertyID int64, flatNumber string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT `+tenantColumns+` FROM tenants
		 WHERE property_id = ? AND flat_number = ? AND active = ?`,
		propertyID,
		flatNumber,
		true,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, propertyID int64, filter domain.ListFilter) ([]domain.Tenant, error) {
	var items []domain.Tenant
	stmt := db.WithContext(ctx).
		Model(&domain.Tenant{}).
		Where("property_id = ?", propertyID)

	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	if filter.MeterID != 0 {
		stmt = stmt.Where("meter_id = ?", filter.MeterID)
	}

	if err := stmt.Order("flat_number ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindRemainderOnMeter(ctx context.Context, db *gorm.DB, meterID int64) (*domain.Tenant, error) {
	var t domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT `+tenantColumns+` FROM tenants
		 WHERE meter_id = ? AND remainder = ? AND active = ?`,
		meterID,
		true,
		true,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	if tenant == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE tenants
		 SET meter_id = ?, name = ?, email = ?, occupants = ?, remainder = ?, active = ?,
		     move_in_date = ?, move_out_date = ?, updated_at = ?
		 WHERE property_id = ? AND id = ?`,
		tenant.MeterID,
		tenant.Name,
		tenant.Email,
		tenant.Occupants,
		tenant.Remainder,
		tenant.Active,
		tenant.MoveInDate,
		tenant.MoveOutDate,
		tenant.UpdatedAt,
		tenant.PropertyID,
		tenant.ID,
	).Error
}
