package domain

import "time"

// MainMeter is a master electricity meter serving one or more flats in a
// property. Its billed amount per period drives the derived rate for every
// tenant attached to it.
type MainMeter struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	PropertyID int64     `json:"property_id" gorm:"column:property_id;not null;uniqueIndex:ux_main_meters_property_code,priority:1"`
	Code       string    `json:"code" gorm:"type:text;not null;uniqueIndex:ux_main_meters_property_code,priority:2"`
	Name       string    `json:"name" gorm:"type:text;not null"`
	Active     bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (MainMeter) TableName() string { return "main_meters" }
