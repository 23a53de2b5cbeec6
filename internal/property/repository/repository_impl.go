package repository

import (
	"context"

	"github.com/smallbiznis/propease/internal/property/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO properties (id, code, name, address, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		property.ID,
		property.Code,
		property.Name,
		property.Address,
		property.CreatedAt,
		property.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Property, error) {
	var p domain.Property
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, address, created_at, updated_at
		 FROM properties WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Property, error) {
	var p domain.Property
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, address, created_at, updated_at
		 FROM properties WHERE code = ?`,
		code,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Property, error) {
	var items []domain.Property
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, address, created_at, updated_at
		 FROM properties ORDER BY created_at ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	if property == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE properties SET name = ?, address = ?, updated_at = ? WHERE id = ?`,
		property.Name,
		property.Address,
		property.UpdatedAt,
		property.ID,
	).Error
}
