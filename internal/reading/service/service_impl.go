package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	meterdomain "github.com/smallbiznis/propease/internal/meter/domain"
	"github.com/smallbiznis/propease/internal/observability/metrics"
	"github.com/smallbiznis/propease/internal/reading/domain"
	tenantdomain "github.com/smallbiznis/propease/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	MeterRepo  meterdomain.Repository
	TenantRepo tenantdomain.Repository
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       domain.Repository
	meterRepo  meterdomain.Repository
	tenantRepo tenantdomain.Repository
	genID      *snowflake.Node
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("reading.service"),
		repo:       p.Repo,
		meterRepo:  p.MeterRepo,
		tenantRepo: p.TenantRepo,
		genID:      p.GenID,
		metrics:    p.Metrics,
	}
}

func (s *Service) RecordMain(ctx context.Context, req domain.RecordMainRequest) (*domain.MainResponse, error) {
	propertyID, err := parseID(req.PropertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}
	meterID, err := parseID(req.MeterID)
	if err != nil {
		return nil, domain.ErrInvalidMeter
	}
	period, err := domain.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}
	if req.Current < 0 || req.BilledAmount < 0 {
		return nil, domain.ErrInvalidReading
	}
	if req.Replaced && (req.FinalOld < 0 || req.InitialNew < 0) {
		return nil, domain.ErrInvalidReading
	}

	meter, err := s.meterRepo.FindByID(ctx, s.db, propertyID, meterID)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return nil, domain.ErrInvalidMeter
	}

	previous, err := s.resolveMainPrevious(ctx, meterID, period, req.Previous)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec, err := s.repo.FindMain(ctx, s.db, meterID, period)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &domain.MainMeterReading{
			ID:           s.genID.Generate().Int64(),
			MeterID:      meterID,
			Period:       period,
			Previous:     previous,
			Current:      req.Current,
			BilledAmount: req.BilledAmount,
			Replaced:     req.Replaced,
			FinalOld:     req.FinalOld,
			InitialNew:   req.InitialNew,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.CreateMain(ctx, s.db, rec); err != nil {
			return nil, err
		}
	} else {
		rec.Previous = previous
		rec.Current = req.Current
		rec.BilledAmount = req.BilledAmount
		rec.Replaced = req.Replaced
		rec.FinalOld = req.FinalOld
		rec.InitialNew = req.InitialNew
		rec.UpdatedAt = now
		if err := s.repo.UpdateMain(ctx, s.db, rec); err != nil {
			return nil, err
		}
	}

	if s.metrics != nil {
		s.metrics.ReadingsSaved.WithLabelValues("main").Inc()
	}

	resp := toMainResponse(rec)
	return &resp, nil
}

func (s *Service) RecordSub(ctx context.Context, req domain.RecordSubRequest) (*domain.SubResponse, error) {
	propertyID, err := parseID(req.PropertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}
	tenantID, err := parseID(req.TenantID)
	if err != nil {
		return nil, domain.ErrInvalidTenant
	}
	period, err := domain.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}
	if req.Current < 0 {
		return nil, domain.ErrInvalidReading
	}
	if req.Replaced && (req.FinalOld < 0 || req.InitialNew < 0) {
		return nil, domain.ErrInvalidReading
	}

	tenant, err := s.tenantRepo.FindByID(ctx, s.db, propertyID, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrInvalidTenant
	}

	previous, err := s.resolveSubPrevious(ctx, tenantID, period, req.Previous)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec, err := s.repo.FindSub(ctx, s.db, tenantID, period)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &domain.SubMeterReading{
			ID:         s.genID.Generate().Int64(),
			TenantID:   tenantID,
			Period:     period,
			Previous:   previous,
			Current:    req.Current,
			Replaced:   req.Replaced,
			FinalOld:   req.FinalOld,
			InitialNew: req.InitialNew,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.CreateSub(ctx, s.db, rec); err != nil {
			return nil, err
		}
	} else {
		rec.Previous = previous
		rec.Current = req.Current
		rec.Replaced = req.Replaced
		rec.FinalOld = req.FinalOld
		rec.InitialNew = req.InitialNew
		rec.UpdatedAt = now
		if err := s.repo.UpdateSub(ctx, s.db, rec); err != nil {
			return nil, err
		}
	}

	if s.metrics != nil {
		s.metrics.ReadingsSaved.WithLabelValues("sub").Inc()
	}

	resp := toSubResponse(rec)
	return &resp, nil
}

func (s *Service) ListForPeriod(ctx context.Context, propertyID, period string) (*domain.PeriodResponse, error) {
	pid, err := parseID(propertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}
	key, err := domain.ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	mains, err := s.repo.ListMainForPeriod(ctx, s.db, pid, key)
	if err != nil {
		return nil, err
	}
	subs, err := s.repo.ListSubForPeriod(ctx, s.db, pid, key)
	if err != nil {
		return nil, err
	}

	resp := &domain.PeriodResponse{
		Period: key,
		Mains:  make([]domain.MainResponse, 0, len(mains)),
		Subs:   make([]domain.SubResponse, 0, len(subs)),
	}
	for i := range mains {
		resp.Mains = append(resp.Mains, toMainResponse(&mains[i]))
	}
	for i := range subs {
		resp.Subs = append(resp.Subs, toSubResponse(&subs[i]))
	}
	return resp, nil
}

// Snapshot materializes the allocation input for one property-period: each
// main meter read this period plus the active tenants attached to those
// meters, paired with their sub-meter readings when present. Every active
// tenant's meter must have a reading for the period.
func (s *Service) Snapshot(ctx context.Context, propertyID int64, period string) (*domain.Snapshot, error) {
	key, err := domain.ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	mains, err := s.repo.ListMainForPeriod(ctx, s.db, propertyID, key)
	if err != nil {
		return nil, err
	}
	if len(mains) == 0 {
		return nil, domain.ErrNoMainReadings
	}

	meters, err := s.meterRepo.FindAll(ctx, s.db, propertyID, false)
	if err != nil {
		return nil, err
	}
	codes := make(map[int64]string, len(meters))
	for _, m := range meters {
		codes[m.ID] = m.Code
	}

	snapshot := &domain.Snapshot{
		PropertyID: propertyID,
		Period:     key,
		Meters:     make([]domain.MeterSnapshot, 0, len(mains)),
	}
	read := make(map[int64]bool, len(mains))
	for _, rec := range mains {
		read[rec.MeterID] = true
		snapshot.Meters = append(snapshot.Meters, domain.MeterSnapshot{
			MeterID: rec.MeterID,
			Code:    codes[rec.MeterID],
			Reading: rec,
		})
	}

	active := true
	tenants, err := s.tenantRepo.FindAll(ctx, s.db, propertyID, tenantdomain.ListFilter{Active: &active})
	if err != nil {
		return nil, err
	}

	subs, err := s.repo.ListSubForPeriod(ctx, s.db, propertyID, key)
	if err != nil {
		return nil, err
	}
	subByTenant := make(map[int64]*domain.SubMeterReading, len(subs))
	for i := range subs {
		subByTenant[subs[i].TenantID] = &subs[i]
	}

	for _, t := range tenants {
		if !read[t.MeterID] {
			// Skipping the tenant would let a regenerate wipe their
			// bills without replacement.
			return nil, fmt.Errorf("meter %s has no reading for period %s: %w",
				codes[t.MeterID], key, domain.ErrMissingMainReading)
		}
		snapshot.Tenants = append(snapshot.Tenants, domain.TenantSnapshot{
			TenantID:   t.ID,
			FlatNumber: t.FlatNumber,
			Name:       t.Name,
			Occupants:  t.Occupants,
			MeterID:    t.MeterID,
			Remainder:  t.Remainder,
			Reading:    subByTenant[t.ID],
		})
	}

	return snapshot, nil
}

func (s *Service) resolveMainPrevious(ctx context.Context, meterID int64, period string, override *float64) (float64, error) {
	if override != nil {
		if *override < 0 {
			return 0, domain.ErrInvalidReading
		}
		return *override, nil
	}
	latest, err := s.repo.LatestMainBefore(ctx, s.db, meterID, period)
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 0, nil
	}
	return latest.Current, nil
}

func (s *Service) resolveSubPrevious(ctx context.Context, tenantID int64, period string, override *float64) (float64, error) {
	if override != nil {
		if *override < 0 {
			return 0, domain.ErrInvalidReading
		}
		return *override, nil
	}
	latest, err := s.repo.LatestSubBefore(ctx, s.db, tenantID, period)
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 0, nil
	}
	return latest.Current, nil
}

func toMainResponse(rec *domain.MainMeterReading) domain.MainResponse {
	return domain.MainResponse{
		ID:           snowflake.ID(rec.ID).String(),
		MeterID:      snowflake.ID(rec.MeterID).String(),
		Period:       rec.Period,
		Previous:     rec.Previous,
		Current:      rec.Current,
		BilledAmount: rec.BilledAmount,
		Replaced:     rec.Replaced,
		FinalOld:     rec.FinalOld,
		InitialNew:   rec.InitialNew,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func toSubResponse(rec *domain.SubMeterReading) domain.SubResponse {
	return domain.SubResponse{
		ID:         snowflake.ID(rec.ID).String(),
		TenantID:   snowflake.ID(rec.TenantID).String(),
		Period:     rec.Period,
		Previous:   rec.Previous,
		Current:    rec.Current,
		Replaced:   rec.Replaced,
		FinalOld:   rec.FinalOld,
		InitialNew: rec.InitialNew,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}
