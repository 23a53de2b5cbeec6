package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/propease/internal/allocation"
	"github.com/smallbiznis/propease/internal/billing/domain"
	"github.com/smallbiznis/propease/internal/billing/pdf"
	"github.com/smallbiznis/propease/internal/config"
	"github.com/smallbiznis/propease/internal/observability/metrics"
	propertydomain "github.com/smallbiznis/propease/internal/property/domain"
	readingdomain "github.com/smallbiznis/propease/internal/reading/domain"
	"github.com/smallbiznis/propease/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	ReadingSvc   readingdomain.Service
	PropertyRepo propertydomain.Repository
	Billing      *config.BillingConfigHolder
	Renderer     *pdf.Renderer
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	billrepo     repository.Repository[domain.Bill]
	readingSvc   readingdomain.Service
	propertyRepo propertydomain.Repository
	billing      *config.BillingConfigHolder
	renderer     *pdf.Renderer
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("billing.service"),
		genID:        p.GenID,
		billrepo:     repository.ProvideStore[domain.Bill](p.DB),
		readingSvc:   p.ReadingSvc,
		propertyRepo: p.PropertyRepo,
		billing:      p.Billing,
		renderer:     p.Renderer,
		metrics:      p.Metrics,
	}
}

// Generate computes and persists every bill for one property-period. Reruns
// replace the period's bills wholesale inside one transaction, so a period
// can be regenerated after corrected readings without duplicates.
func (s *Service) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResponse, error) {
	propertyID, err := parseID(req.PropertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}

	property, err := s.propertyRepo.FindByID(ctx, s.db, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrInvalidProperty
	}

	snapshot, err := s.readingSvc.Snapshot(ctx, propertyID, req.Period)
	if err != nil {
		s.countRun("error")
		return nil, err
	}

	result, err := allocation.ComputePeriod(toPeriodInput(snapshot))
	if err != nil {
		s.countRun("error")
		return nil, err
	}

	s.warnOnFlags(snapshot.Period, result.Meters)

	now := time.Now().UTC()
	bills := make([]*domain.Bill, 0, len(result.Lines))
	for i, line := range result.Lines {
		tenant := snapshot.Tenants[i]
		bill := &domain.Bill{
			ID:              s.genID.Generate().Int64(),
			PropertyID:      propertyID,
			TenantID:        line.TenantID.Int64(),
			MeterID:         line.MeterID.Int64(),
			Period:          snapshot.Period,
			FlatNumber:      line.FlatNumber,
			TenantName:      tenant.Name,
			UnitsConsumed:   line.ElectricityUnits,
			RatePerUnit:     line.RatePerUnit,
			ElectricityCost: line.ElectricityCost,
			SharedUnits:     line.SharedUnits,
			SharedCost:      line.SharedCost,
			TotalAmount:     line.TotalAmount,
			Inferred:        line.Inferred,
			Status:          domain.BillStatusPending,
			GeneratedAt:     now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if tenant.Reading != nil {
			bill.PreviousReading = tenant.Reading.Previous
			bill.CurrentReading = tenant.Reading.Current
		}
		bills = append(bills, bill)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ? AND period = ?", propertyID, snapshot.Period).
			Delete(&domain.Bill{}).Error; err != nil {
			return err
		}
		return s.billrepo.WithTrx(tx).BatchCreate(ctx, bills)
	})
	if err != nil {
		s.countRun("error")
		return nil, err
	}

	s.countRun("success")
	if s.metrics != nil {
		s.metrics.BillsGenerated.Add(float64(len(bills)))
	}
	s.log.Info("billing run complete",
		zap.String("period", snapshot.Period),
		zap.Int("meters", len(result.Meters)),
		zap.Int("bills", len(bills)),
	)

	resp := &domain.GenerateResponse{
		Period: snapshot.Period,
		Meters: make([]domain.MeterUsageResponse, 0, len(result.Meters)),
		Bills:  make([]domain.BillResponse, 0, len(bills)),
	}
	for _, usage := range result.Meters {
		resp.Meters = append(resp.Meters, domain.MeterUsageResponse{
			MeterID:          usage.MeterID.String(),
			Code:             usage.Code,
			Consumption:      usage.Consumption,
			Rate:             usage.Rate,
			RemainderUnits:   usage.RemainderUnits,
			RemainderCost:    usage.RemainderCost,
			SubMeterOverflow: usage.SubMeterOverflow,
			ZeroRateBilled:   usage.ZeroRateBilled,
		})
	}
	for _, bill := range bills {
		resp.Bills = append(resp.Bills, toResponse(bill))
	}
	return resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.BillResponse, error) {
	propertyID, err := parseID(req.PropertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}

	stmt := s.db.WithContext(ctx).
		Model(&domain.Bill{}).
		Where("property_id = ?", propertyID)

	if req.Period != "" {
		period, err := readingdomain.ParsePeriod(req.Period)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("period = ?", period)
	}
	if req.TenantID != "" {
		tenantID, err := parseID(req.TenantID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		stmt = stmt.Where("tenant_id = ?", tenantID)
	}
	if req.Status != "" {
		status := strings.ToLower(strings.TrimSpace(req.Status))
		if status != domain.BillStatusPending && status != domain.BillStatusPaid {
			return nil, domain.ErrInvalidStatus
		}
		stmt = stmt.Where("status = ?", status)
	}

	var items []domain.Bill
	if err := stmt.Order("period DESC, flat_number ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	resp := make([]domain.BillResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, propertyID, id string) (*domain.BillResponse, error) {
	bill, err := s.find(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(bill)
	return &resp, nil
}

func (s *Service) MarkPaid(ctx context.Context, propertyID, id string) (*domain.BillResponse, error) {
	bill, err := s.find(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}
	if bill.Status == domain.BillStatusPaid {
		return nil, domain.ErrAlreadyPaid
	}

	now := time.Now().UTC()
	bill.Status = domain.BillStatusPaid
	bill.PaidAt = &now
	bill.UpdatedAt = now

	err = s.billrepo.Update(ctx, snowflake.ID(bill.ID).String(), map[string]any{
		"status":     bill.Status,
		"paid_at":    bill.PaidAt,
		"updated_at": bill.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(bill)
	return &resp, nil
}

func (s *Service) Summary(ctx context.Context, propertyID, period string) (*domain.SummaryResponse, error) {
	pid, err := parseID(propertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}
	key, err := readingdomain.ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	var items []domain.Bill
	err = s.db.WithContext(ctx).
		Model(&domain.Bill{}).
		Where("property_id = ? AND period = ?", pid, key).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	var totalUnits, total, paid float64
	for _, bill := range items {
		totalUnits += bill.UnitsConsumed + bill.SharedUnits
		total += bill.TotalAmount
		if bill.Status == domain.BillStatusPaid {
			paid += bill.TotalAmount
		}
	}

	return &domain.SummaryResponse{
		Period:        key,
		BillCount:     len(items),
		TotalUnits:    totalUnits,
		TotalAmount:   pdf.Money(total),
		PaidAmount:    pdf.Money(paid),
		PendingAmount: pdf.Money(total - paid),
		Currency:      s.billing.Get().Currency,
	}, nil
}

func (s *Service) RenderPDF(ctx context.Context, propertyID, id string) ([]byte, error) {
	bill, err := s.find(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}

	property, err := s.propertyRepo.FindByID(ctx, s.db, bill.PropertyID)
	if err != nil {
		return nil, err
	}
	propertyName := ""
	if property != nil {
		propertyName = property.Name
	}

	return s.renderer.Render(pdf.StatementData{
		PropertyName:    propertyName,
		FlatNumber:      bill.FlatNumber,
		TenantName:      bill.TenantName,
		Period:          bill.Period,
		Status:          bill.Status,
		Currency:        s.billing.Get().Currency,
		PreviousReading: bill.PreviousReading,
		CurrentReading:  bill.CurrentReading,
		UnitsConsumed:   bill.UnitsConsumed,
		RatePerUnit:     bill.RatePerUnit,
		ElectricityCost: bill.ElectricityCost,
		SharedUnits:     bill.SharedUnits,
		SharedCost:      bill.SharedCost,
		TotalAmount:     bill.TotalAmount,
		Inferred:        bill.Inferred,
	})
}

func (s *Service) find(ctx context.Context, propertyID, id string) (*domain.Bill, error) {
	pid, err := parseID(propertyID)
	if err != nil {
		return nil, domain.ErrInvalidProperty
	}
	billID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	bill, err := s.billrepo.FindOne(ctx, &domain.Bill{ID: billID, PropertyID: pid})
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, domain.ErrNotFound
	}
	return bill, nil
}

func (s *Service) warnOnFlags(period string, usages []allocation.MeterUsage) {
	cfg := s.billing.Get()
	for _, usage := range usages {
		if usage.ZeroRateBilled && cfg.WarnZeroRateBill {
			s.log.Warn("billed amount against zero consumption",
				zap.String("period", period),
				zap.String("meter", usage.Code),
			)
		}
		if usage.SubMeterOverflow && cfg.WarnSubMeterOverflow {
			s.log.Warn("sub-meters exceed main meter",
				zap.String("period", period),
				zap.String("meter", usage.Code),
			)
		}
	}
}

func (s *Service) countRun(outcome string) {
	if s.metrics != nil {
		s.metrics.BillingRuns.WithLabelValues(outcome).Inc()
	}
}

func toPeriodInput(snapshot *readingdomain.Snapshot) allocation.PeriodInput {
	in := allocation.PeriodInput{
		Meters:  make([]allocation.MainMeter, 0, len(snapshot.Meters)),
		Tenants: make([]allocation.Tenant, 0, len(snapshot.Tenants)),
	}
	for _, m := range snapshot.Meters {
		in.Meters = append(in.Meters, allocation.MainMeter{
			ID:           snowflake.ID(m.MeterID),
			Code:         m.Code,
			BilledAmount: m.Reading.BilledAmount,
			Reading: allocation.Reading{
				Previous:   m.Reading.Previous,
				Current:    m.Reading.Current,
				Replaced:   m.Reading.Replaced,
				FinalOld:   m.Reading.FinalOld,
				InitialNew: m.Reading.InitialNew,
			},
		})
	}
	for _, t := range snapshot.Tenants {
		tenant := allocation.Tenant{
			ID:         snowflake.ID(t.TenantID),
			FlatNumber: t.FlatNumber,
			Occupants:  t.Occupants,
			MeterID:    snowflake.ID(t.MeterID),
			Remainder:  t.Remainder,
		}
		if t.Reading != nil {
			tenant.Reading = &allocation.Reading{
				Previous:   t.Reading.Previous,
				Current:    t.Reading.Current,
				Replaced:   t.Reading.Replaced,
				FinalOld:   t.Reading.FinalOld,
				InitialNew: t.Reading.InitialNew,
			}
		}
		in.Tenants = append(in.Tenants, tenant)
	}
	return in
}

func toResponse(b *domain.Bill) domain.BillResponse {
	return domain.BillResponse{
		ID:              snowflake.ID(b.ID).String(),
		PropertyID:      snowflake.ID(b.PropertyID).String(),
		TenantID:        snowflake.ID(b.TenantID).String(),
		MeterID:         snowflake.ID(b.MeterID).String(),
		Period:          b.Period,
		FlatNumber:      b.FlatNumber,
		TenantName:      b.TenantName,
		PreviousReading: b.PreviousReading,
		CurrentReading:  b.CurrentReading,
		UnitsConsumed:   b.UnitsConsumed,
		RatePerUnit:     b.RatePerUnit,
		ElectricityCost: b.ElectricityCost,
		SharedUnits:     b.SharedUnits,
		SharedCost:      b.SharedCost,
		TotalAmount:     b.TotalAmount,
		Inferred:        b.Inferred,
		Status:          b.Status,
		GeneratedAt:     b.GeneratedAt,
		PaidAt:          b.PaidAt,
	}
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}
