package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, propertyID, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	MoveOut(ctx context.Context, req MoveOutRequest) (*Response, error)
}

type ListRequest struct {
	PropertyID string `json:"-"`
	Active     *bool  `json:"-"`
	MeterID    string `json:"-"`
}

type CreateRequest struct {
	PropertyID string     `json:"property_id"`
	MeterID    string     `json:"meter_id"`
	FlatNumber string     `json:"flat_number"`
	Name       string     `json:"name"`
	Email      *string    `json:"email"`
	Occupants  int        `json:"occupants"`
	Remainder  bool       `json:"remainder"`
	MoveInDate *time.Time `json:"move_in_date"`
}

type UpdateRequest struct {
	PropertyID string  `json:"-"`
	ID         string  `json:"-"`
	MeterID    *string `json:"meter_id"`
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Occupants  *int    `json:"occupants"`
	Remainder  *bool   `json:"remainder"`
}

type MoveOutRequest struct {
	PropertyID  string     `json:"-"`
	ID          string     `json:"-"`
	MoveOutDate *time.Time `json:"move_out_date"`
}

type Response struct {
	ID          string     `json:"id"`
	PropertyID  string     `json:"property_id"`
	MeterID     string     `json:"meter_id"`
	FlatNumber  string     `json:"flat_number"`
	Name        string     `json:"name"`
	Email       *string    `json:"email,omitempty"`
	Occupants   int        `json:"occupants"`
	Remainder   bool       `json:"remainder"`
	Active      bool       `json:"active"`
	MoveInDate  *time.Time `json:"move_in_date,omitempty"`
	MoveOutDate *time.Time `json:"move_out_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

var (
	ErrInvalidProperty   = errors.New("invalid_property")
	ErrInvalidMeter      = errors.New("invalid_meter")
	ErrInvalidFlatNumber = errors.New("invalid_flat_number")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidOccupants  = errors.New("invalid_occupants")
	ErrInvalidID         = errors.New("invalid_id")
	ErrFlatExists        = errors.New("flat_number_exists")
	ErrRemainderExists   = errors.New("remainder_tenant_exists")
	ErrNotFound          = errors.New("tenant_not_found")
	ErrAlreadyMovedOut   = errors.New("tenant_already_moved_out")
)
