package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, property *Property) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Property, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Property, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Property, error)
	Update(ctx context.Context, db *gorm.DB, property *Property) error
}
