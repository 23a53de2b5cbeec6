package domain

import "time"

// MainMeterReading records one billing period on a master meter: the meter
// readings bracketing the period and the provider's billed amount. Replaced
// marks a physical meter swap mid-period; FinalOld and InitialNew are the
// old meter's last and the new meter's first readings.
type MainMeterReading struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	MeterID      int64     `json:"meter_id" gorm:"column:meter_id;not null;index:ux_main_meter_readings_meter_period,priority:1"`
	Period       string    `json:"period" gorm:"type:text;not null;index:ux_main_meter_readings_meter_period,priority:2"`
	Previous     float64   `json:"previous" gorm:"not null;default:0"`
	Current      float64   `json:"current" gorm:"not null;default:0"`
	BilledAmount float64   `json:"billed_amount" gorm:"not null;default:0"`
	Replaced     bool      `json:"replaced" gorm:"not null;default:false"`
	FinalOld     float64   `json:"final_old" gorm:"not null;default:0"`
	InitialNew   float64   `json:"initial_new" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (MainMeterReading) TableName() string { return "main_meter_readings" }

// SubMeterReading records one billing period on a flat's private sub-meter.
type SubMeterReading struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	TenantID   int64     `json:"tenant_id" gorm:"column:tenant_id;not null;index:ux_sub_meter_readings_tenant_period,priority:1"`
	Period     string    `json:"period" gorm:"type:text;not null;index:ux_sub_meter_readings_tenant_period,priority:2"`
	Previous   float64   `json:"previous" gorm:"not null;default:0"`
	Current    float64   `json:"current" gorm:"not null;default:0"`
	Replaced   bool      `json:"replaced" gorm:"not null;default:false"`
	FinalOld   float64   `json:"final_old" gorm:"not null;default:0"`
	InitialNew float64   `json:"initial_new" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SubMeterReading) TableName() string { return "sub_meter_readings" }
