package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/propease/internal/meter/domain"
	pkgdb "github.com/smallbiznis/propease/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("meter.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	propertyID, err := parseID(req.PropertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = code
	}

	existing, err := s.repo.FindByCode(ctx, s.db, propertyID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrCodeExists
	}

	now := time.Now().UTC()
	m := &domain.MainMeter{
		ID:         s.genID.Generate().Int64(),
		PropertyID: propertyID,
		Code:       code,
		Name:       name,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, s.db, m); err != nil {
		// The unique index is the authority; the FindByCode check above can
		// lose a race with a concurrent create.
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCodeExists
		}
		return nil, err
	}
	resp := s.toResponse(m)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	propertyID, err := parseID(req.PropertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}

	items, err := s.repo.FindAll(ctx, s.db, propertyID, req.ActiveOnly)
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
	meterID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, pid, meterID)
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
	meterID, err := parseID(req.ID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, pid, meterID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Retire(ctx context.Context, propertyID, id string) (*domain.Response, error) {
	active := false
	return s.Update(ctx, domain.UpdateRequest{
		PropertyID: propertyID,
		ID:         id,
		Active:     &active,
	})
}

func (s *Service) toResponse(m *domain.MainMeter) domain.Response {
	return domain.Response{
		ID:         snowflake.ID(m.ID).String(),
		PropertyID: snowflake.ID(m.PropertyID).String(),
		Code:       m.Code,
		Name:       m.Name,
		Active:     m.Active,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}
