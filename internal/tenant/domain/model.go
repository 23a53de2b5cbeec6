package domain

import "time"

// Tenant is an occupied (or previously occupied) flat drawing electricity
// from one of the property's main meters. Remainder marks the single flat on
// a meter whose consumption is inferred from the meter remainder instead of
// a sub-meter reading.
type Tenant struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	PropertyID  int64      `json:"property_id" gorm:"column:property_id;not null;index:ux_tenants_property_flat,priority:1"`
	MeterID     int64      `json:"meter_id" gorm:"column:meter_id;not null;index"`
	FlatNumber  string     `json:"flat_number" gorm:"type:text;not null;index:ux_tenants_property_flat,priority:2"`
	Name        string     `json:"name" gorm:"type:text;not null"`
	Email       *string    `json:"email,omitempty" gorm:"type:text"`
	Occupants   int        `json:"occupants" gorm:"not null;default:1"`
	Remainder   bool       `json:"remainder" gorm:"not null;default:false"`
	Active      bool       `json:"active" gorm:"not null;default:true"`
	MoveInDate  *time.Time `json:"move_in_date,omitempty"`
	MoveOutDate *time.Time `json:"move_out_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Tenant) TableName() string { return "tenants" }
