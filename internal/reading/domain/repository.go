package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateMain(ctx context.Context, db *gorm.DB, reading *MainMeterReading) error
	UpdateMain(ctx context.Context, db *gorm.DB, reading *MainMeterReading) error
	FindMain(ctx context.Context, db *gorm.DB, meterID int64, period string) (*MainMeterReading, error)
	LatestMainBefore(ctx context.Context, db *gorm.DB, meterID int64, period string) (*MainMeterReading, error)
	ListMainForPeriod(ctx context.Context, db *gorm.DB, propertyID int64, period string) ([]MainMeterReading, error)

	CreateSub(ctx context.Context, db *gorm.DB, reading *SubMeterReading) error
	UpdateSub(ctx context.Context, db *gorm.DB, reading *SubMeterReading) error
	FindSub(ctx context.Context, db *gorm.DB, tenantID int64, period string) (*SubMeterReading, error)
	LatestSubBefore(ctx context.Context, db *gorm.DB, tenantID int64, period string) (*SubMeterReading, error)
	ListSubForPeriod(ctx context.Context, db *gorm.DB, propertyID int64, period string) ([]SubMeterReading, error)
}
