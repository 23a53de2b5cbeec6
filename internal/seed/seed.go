package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	propertydomain "github.com/smallbiznis/propease/internal/property/domain"
	"gorm.io/gorm"
)

const (
	defaultPropertyCode = "main"
	defaultPropertyName = "Main Property"
)

// EnsureDefaultProperty seeds one property so a fresh install can record
// meters and tenants without a setup step.
func EnsureDefaultProperty(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing propertydomain.Property
		err := tx.WithContext(ctx).
			Where("code = ?", defaultPropertyCode).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		return tx.WithContext(ctx).Create(&propertydomain.Property{
			ID:        node.Generate().Int64(),
			Code:      defaultPropertyCode,
			Name:      defaultPropertyName,
			CreatedAt: now,
			UpdatedAt: now,
		}).Error
	})
}
