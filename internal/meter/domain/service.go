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
	Retire(ctx context.Context, propertyID, id string) (*Response, error)
}

type ListRequest struct {
	PropertyID string
	ActiveOnly bool
}

type CreateRequest struct {
	PropertyID string `json:"property_id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
}

type UpdateRequest struct {
	PropertyID string  `json:"-"`
	ID         string  `json:"-"`
	Name       *string `json:"name"`
	Active     *bool   `json:"active"`
}

type Response struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var (
	ErrInvalidProperty = errors.New("invalid_property")
	ErrInvalidCode     = errors.New("invalid_code")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidID       = errors.New("invalid_id")
	ErrCodeExists      = errors.New("meter_code_exists")
	ErrNotFound        = errors.New("meter_not_found")
)
