package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, meter *MainMeter) error
	FindByID(ctx context.Context, db *gorm.DB, propertyID, id int64) (*MainMeter, error)
	FindByCode(ctx context.Context, db *gorm.DB, propertyID int64, code string) (*MainMeter, error)
	FindAll(ctx context.Context, db *gorm.DB, propertyID int64, activeOnly bool) ([]MainMeter, error)
	Update(ctx context.Context, db *gorm.DB, meter *MainMeter) error
}
