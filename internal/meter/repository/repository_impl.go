package repository

import (
	"context"

	"github.com/smallbiznis/propease/internal/meter/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, meter *domain.MainMeter) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO main_meters (id, property_id, code, name, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		meter.ID,
		meter.PropertyID,
		meter.Code,
		meter.Name,
		meter.Active,
		meter.CreatedAt,
		meter.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, propertyID, id int64) (*domain.MainMeter, error) {
	var m domain.MainMeter
	err := db.WithContext(ctx).Raw(
		`SELECT id, property_id, code, name, active, created_at, updated_at
		 FROM main_meters WHERE property_id = ? AND id = ?`,
		propertyID,
		id,
	).Scan(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, propertyID int64, code string) (*domain.MainMeter, error) {
	var m domain.MainMeter
	err := db.WithContext(ctx).Raw(
		`SELECT id, property_id, code, name, active, created_at, updated_at
		 FROM main_meters WHERE property_id = ? AND code = ?`,
		propertyID,
		code,
	).Scan(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, propertyID int64, activeOnly bool) ([]domain.MainMeter, error) {
	var items []domain.MainMeter
	q := `SELECT id, property_id, code, name, active, created_at, updated_at
	      FROM main_meters WHERE property_id = ?`
	args := []any{propertyID}
	if activeOnly {
		q += ` AND active = ?`
		args = append(args, true)
	}
	q += ` ORDER BY code ASC`

	err := db.WithContext(ctx).Raw(q, args...).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, meter *domain.MainMeter) error {
	if meter == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE main_meters SET name = ?, active = ?, updated_at = ?
		 WHERE property_id = ? AND id = ?`,
		meter.Name,
		meter.Active,
		meter.UpdatedAt,
		meter.PropertyID,
		meter.ID,
	).Error
}
