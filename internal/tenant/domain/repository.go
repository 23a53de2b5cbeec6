package domain

import (
	"context"

	"gorm.io/gorm"
)

// ListFilter narrows FindAll within a property.
type ListFilter struct {
	Active  *bool
	MeterID int64
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindByID(ctx context.Context, db *gorm.DB, propertyID, id int64) (*Tenant, error)
	FindByFlat(ctx context.Context, db *gorm.DB, propertyID int64, flatNumber string) (*Tenant, error)
	FindAll(ctx context.Context, db *gorm.DB, propertyID int64, filter ListFilter) ([]Tenant, error)
	FindRemainderOnMeter(ctx context.Context, db *gorm.DB, meterID int64) (*Tenant, error)
	Update(ctx context.Context, db *gorm.DB, tenant *Tenant) error
}
