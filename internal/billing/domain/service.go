package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	List(ctx context.Context, req ListRequest) ([]BillResponse, error)
	Get(ctx context.Context, propertyID, id string) (*BillResponse, error)
	MarkPaid(ctx context.Context, propertyID, id string) (*BillResponse, error)
	Summary(ctx context.Context, propertyID, period string) (*SummaryResponse, error)
	RenderPDF(ctx context.Context, propertyID, id string) ([]byte, error)
}

type GenerateRequest struct {
	PropertyID string `json:"-"`
	Period     string `json:"period"`
}

type ListRequest struct {
	PropertyID string
	Period     string
	TenantID   string
	Status     string
}

type BillResponse struct {
	ID              string     `json:"id"`
	PropertyID      string     `json:"property_id"`
	TenantID        string     `json:"tenant_id"`
	MeterID         string     `json:"meter_id"`
	Period          string     `json:"period"`
	FlatNumber      string     `json:"flat_number"`
	TenantName      string     `json:"tenant_name"`
	PreviousReading float64    `json:"previous_reading"`
	CurrentReading  float64    `json:"current_reading"`
	UnitsConsumed   float64    `json:"units_consumed"`
	RatePerUnit     float64    `json:"rate_per_unit"`
	ElectricityCost float64    `json:"electricity_cost"`
	SharedUnits     float64    `json:"shared_units"`
	SharedCost      float64    `json:"shared_cost"`
	TotalAmount     float64    `json:"total_amount"`
	Inferred        bool       `json:"inferred"`
	Status          string     `json:"status"`
	GeneratedAt     time.Time  `json:"generated_at"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
}

// MeterUsageResponse reports the derived per-meter figures for a generation
// run, including the flags an operator should review before sending bills.
type MeterUsageResponse struct {
	MeterID          string  `json:"meter_id"`
	Code             string  `json:"code"`
	Consumption      float64 `json:"consumption"`
	Rate             float64 `json:"rate_per_unit"`
	RemainderUnits   float64 `json:"remainder_units"`
	RemainderCost    float64 `json:"remainder_cost"`
	SubMeterOverflow bool    `json:"sub_meter_overflow,omitempty"`
	ZeroRateBilled   bool    `json:"zero_rate_billed,omitempty"`
}

type GenerateResponse struct {
	Period string               `json:"period"`
	Meters []MeterUsageResponse `json:"meters"`
	Bills  []BillResponse       `json:"bills"`
}

type SummaryResponse struct {
	Period        string  `json:"period"`
	BillCount     int     `json:"bill_count"`
	TotalUnits    float64 `json:"total_units"`
	TotalAmount   string  `json:"total_amount"`
	PaidAmount    string  `json:"paid_amount"`
	PendingAmount string  `json:"pending_amount"`
	Currency      string  `json:"currency"`
}

var (
	ErrInvalidProperty = errors.New("invalid_property")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrNotFound        = errors.New("bill_not_found")
	ErrAlreadyPaid     = errors.New("bill_already_paid")
)
