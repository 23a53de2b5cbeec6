package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	meterdomain "github.com/smallbiznis/propease/internal/meter/domain"
	"github.com/smallbiznis/propease/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	MeterRepo meterdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	meterRepo meterdomain.Repository
	genID     *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("tenant.service"),
		repo:      p.Repo,
		meterRepo: p.MeterRepo,
		genID:     p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	propertyID, err := parseID(req.PropertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}
	meterID, err := parseID(req.MeterID)
	if err != nil {
		return nil, domain.ErrInvalidMeter
	}

	flatNumber := strings.TrimSpace(req.FlatNumber)
	if flatNumber == "" {
		return nil, domain.ErrInvalidFlatNumber
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	// Zero occupants is legal: the flat exists but draws no per-head share.
	if req.Occupants < 0 {
		return nil, domain.ErrInvalidOccupants
	}

	meter, err := s.meterRepo.FindByID(ctx, s.db, propertyID, meterID)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return nil, domain.ErrInvalidMeter
	}

	existing, err := s.repo.FindByFlat(ctx, s.db, propertyID, flatNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrFlatExists
	}

	if req.Remainder {
		holder, err := s.repo.FindRemainderOnMeter(ctx, s.db, meterID)
		if err != nil {
			return nil, err
		}
		if holder != nil {
			return nil, domain.ErrRemainderExists
		}
	}

	now := time.Now().UTC()
	t := &domain.Tenant{
		ID:         s.genID.Generate().Int64(),
		PropertyID: propertyID,
		MeterID:    meterID,
		FlatNumber: flatNumber,
		Name:       name,
		Email:      normalizeEmail(req.Email),
		Occupants:  req.Occupants,
		Remainder:  req.Remainder,
		Active:     true,
		MoveInDate: req.MoveInDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, s.db, t); err != nil {
		return nil, err
	}
	resp := s.toResponse(t)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	propertyID, err := parseID(req.PropertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}

	filter := domain.ListFilter{Active: req.Active}
	if req.MeterID != "" {
		meterID, err := parseID(req.MeterID)
		if err != nil {
			return nil, domain.ErrInvalidMeter
		}
		filter.MeterID = meterID
	}

	items, err := s.repo.FindAll(ctx, s.db, propertyID, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, propertyID, id string) (*domain.Response, error) {
	pid, err := parseID(propertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}
	tenantID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, pid, tenantID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	pid, err := parseID(req.PropertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}
	tenantID, err := parseID(req.ID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, pid, tenantID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	meterChanged := false
	if req.MeterID != nil {
		meterID, err := parseID(*req.MeterID)
		if err != nil {
			return nil, domain.ErrInvalidMeter
		}
		meter, err := s.meterRepo.FindByID(ctx, s.db, pid, meterID)
		if err != nil {
			return nil, err
		}
		if meter == nil {
			return nil, domain.ErrInvalidMeter
		}
		meterChanged = meterID != item.MeterID
		item.MeterID = meterID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Email != nil {
		item.Email = normalizeEmail(req.Email)
	}
	if req.Occupants != nil {
		if *req.Occupants < 0 {
			return nil, domain.ErrInvalidOccupants
		}
		item.Occupants = *req.Occupants
	}
	remainder := item.Remainder
	if req.Remainder != nil {
		remainder = *req.Remainder
	}
	// Re-check the holder whenever the tenant ends up a remainder tenant on
	// a meter it was not already holding: becoming one, or moving meters.
	if remainder && (meterChanged || !item.Remainder) {
		holder, err := s.repo.FindRemainderOnMeter(ctx, s.db, item.MeterID)
		if err != nil {
			return nil, err
		}
		if holder != nil && holder.ID != item.ID {
			return nil, domain.ErrRemainderExists
		}
	}
	item.Remainder = remainder

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) MoveOut(ctx context.Context, req domain.MoveOutRequest) (*domain.Response, error) {
	pid, err := parseID(req.PropertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}
	tenantID, err := parseID(req.ID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, pid, tenantID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if !item.Active {
		return nil, domain.ErrAlreadyMovedOut
	}

	moveOut := time.Now().UTC()
	if req.MoveOutDate != nil {
		moveOut = req.MoveOutDate.UTC()
	}

	item.Active = false
	item.Remainder = false
	item.MoveOutDate = &moveOut
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) toResponse(t *domain.Tenant) domain.Response {
	return domain.Response{
		ID:          snowflake.ID(t.ID).String(),
		PropertyID:  snowflake.ID(t.PropertyID).String(),
		MeterID:     snowflake.ID(t.MeterID).String(),
		FlatNumber:  t.FlatNumber,
		Name:        t.Name,
		Email:       t.Email,
		Occupants:   t.Occupants,
		Remainder:   t.Remainder,
		Active:      t.Active,
		MoveInDate:  t.MoveInDate,
		MoveOutDate: t.MoveOutDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// normalizeEmail trims the address and collapses an empty value to nil so
// clearing an email and never setting one store the same thing.
func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}
