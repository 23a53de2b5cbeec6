package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	RecordMain(ctx context.Context, req RecordMainRequest) (*MainResponse, error)
	RecordSub(ctx context.Context, req RecordSubRequest) (*SubResponse, error)
	ListForPeriod(ctx context.Context, propertyID, period string) (*PeriodResponse, error)
	Snapshot(ctx context.Context, propertyID int64, period string) (*Snapshot, error)
}

// RecordMainRequest captures a master meter for one period. Previous is
// optional; when nil it is carried from the latest earlier reading.
type RecordMainRequest struct {
	PropertyID   string   `json:"-"`
	MeterID      string   `json:"meter_id"`
	Period       string   `json:"period"`
	Previous     *float64 `json:"previous"`
	Current      float64  `json:"current"`
	BilledAmount float64  `json:"billed_amount"`
	Replaced     bool     `json:"replaced"`
	FinalOld     float64  `json:"final_old"`
	InitialNew   float64  `json:"initial_new"`
}

// RecordSubRequest captures a flat's sub-meter for one period.
type RecordSubRequest struct {
	PropertyID string   `json:"-"`
	TenantID   string   `json:"tenant_id"`
	Period     string   `json:"period"`
	Previous   *float64 `json:"previous"`
	Current    float64  `json:"current"`
	Replaced   bool     `json:"replaced"`
	FinalOld   float64  `json:"final_old"`
	InitialNew float64  `json:"initial_new"`
}

type MainResponse struct {
	ID           string    `json:"id"`
	MeterID      string    `json:"meter_id"`
	Period       string    `json:"period"`
	Previous     float64   `json:"previous"`
	Current      float64   `json:"current"`
	BilledAmount float64   `json:"billed_amount"`
	Replaced     bool      `json:"replaced"`
	FinalOld     float64   `json:"final_old,omitempty"`
	InitialNew   float64   `json:"initial_new,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SubResponse struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	Period     string    `json:"period"`
	Previous   float64   `json:"previous"`
	Current    float64   `json:"current"`
	Replaced   bool      `json:"replaced"`
	FinalOld   float64   `json:"final_old,omitempty"`
	InitialNew float64   `json:"initial_new,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type PeriodResponse struct {
	Period string         `json:"period"`
	Mains  []MainResponse `json:"main_readings"`
	Subs   []SubResponse  `json:"sub_readings"`
}

// Snapshot is the fully materialized input for one property-period: every
// active main meter read this period, and every active tenant on those
// meters with their sub-meter reading when one exists.
type Snapshot struct {
	PropertyID int64
	Period     string
	Meters     []MeterSnapshot
	Tenants    []TenantSnapshot
}

type MeterSnapshot struct {
	MeterID int64
	Code    string
	Reading MainMeterReading
}

type TenantSnapshot struct {
	TenantID   int64
	FlatNumber string
	Name       string
	Occupants  int
	MeterID    int64
	Remainder  bool
	Reading    *SubMeterReading
}

var (
	ErrInvalidProperty = errors.New("invalid_property")
	ErrInvalidMeter    = errors.New("invalid_meter")
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrInvalidReading  = errors.New("invalid_reading")
	ErrNoMainReadings  = errors.New("no_main_readings_for_period")

	// ErrMissingMainReading reports an active tenant whose assigned meter
	// has no reading for the requested period.
	ErrMissingMainReading = errors.New("missing_main_reading")
)
