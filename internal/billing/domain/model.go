package domain

import "time"

const (
	BillStatusPending = "pending"
	BillStatusPaid    = "paid"
)

// Bill is one tenant's electricity bill for one period. Bills are replaced
// wholesale when their period is regenerated, so rows carry everything the
// statement needs without joining back to readings.
type Bill struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	PropertyID      int64      `json:"property_id" gorm:"column:property_id;not null;index"`
	TenantID        int64      `json:"tenant_id" gorm:"column:tenant_id;not null;index:ux_bills_tenant_period,priority:1"`
	MeterID         int64      `json:"meter_id" gorm:"column:meter_id;not null"`
	Period          string     `json:"period" gorm:"type:text;not null;index:ux_bills_tenant_period,priority:2"`
	FlatNumber      string     `json:"flat_number" gorm:"type:text;not null"`
	TenantName      string     `json:"tenant_name" gorm:"type:text;not null"`
	PreviousReading float64    `json:"previous_reading" gorm:"not null;default:0"`
	CurrentReading  float64    `json:"current_reading" gorm:"not null;default:0"`
	UnitsConsumed   float64    `json:"units_consumed" gorm:"not null;default:0"`
	RatePerUnit     float64    `json:"rate_per_unit" gorm:"not null;default:0"`
	ElectricityCost float64    `json:"electricity_cost" gorm:"not null;default:0"`
	SharedUnits     float64    `json:"shared_units" gorm:"not null;default:0"`
	SharedCost      float64    `json:"shared_cost" gorm:"not null;default:0"`
	TotalAmount     float64    `json:"total_amount" gorm:"not null;default:0"`
	Inferred        bool       `json:"inferred" gorm:"not null;default:false"`
	Status          string     `json:"status" gorm:"type:text;not null;default:pending"`
	GeneratedAt     time.Time  `json:"generated_at" gorm:"not null"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Bill) TableName() string { return "bills" }
