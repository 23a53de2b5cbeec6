package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/propease/internal/billing/domain"
	"github.com/smallbiznis/propease/internal/billing/pdf"
	"github.com/smallbiznis/propease/internal/config"
	meterdomain "github.com/smallbiznis/propease/internal/meter/domain"
	meterrepo "github.com/smallbiznis/propease/internal/meter/repository"
	propertydomain "github.com/smallbiznis/propease/internal/property/domain"
	propertyrepo "github.com/smallbiznis/propease/internal/property/repository"
	readingdomain "github.com/smallbiznis/propease/internal/reading/domain"
	readingrepo "github.com/smallbiznis/propease/internal/reading/repository"
	readingservice "github.com/smallbiznis/propease/internal/reading/service"
	tenantdomain "github.com/smallbiznis/propease/internal/tenant/domain"
	tenantrepo "github.com/smallbiznis/propease/internal/tenant/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupBillingTest(t *testing.T) (*gorm.DB, domain.Service, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&propertydomain.Property{},
		&meterdomain.MainMeter{},
		&tenantdomain.Tenant{},
		&readingdomain.MainMeterReading{},
		&readingdomain.SubMeterReading{},
		&domain.Bill{},
	)
	require.NoError(t, err)

	node, _ := snowflake.NewNode(1)
	logger := zap.NewNop()

	readingSvc := readingservice.New(readingservice.Params{
		DB:         db,
		Log:        logger,
		GenID:      node,
		Repo:       readingrepo.Provide(),
		MeterRepo:  meterrepo.Provide(),
		TenantRepo: tenantrepo.Provide(),
	})

	svc := New(Params{
		DB:           db,
		Log:          logger,
		GenID:        node,
		ReadingSvc:   readingSvc,
		PropertyRepo: propertyrepo.Provide(),
		Billing:      config.NewStaticBillingConfig(config.DefaultBillingConfig()),
		Renderer:     pdf.NewRenderer(),
	})

	return db, svc, node
}

type fixture struct {
	property propertydomain.Property
	meter    meterdomain.MainMeter
	tenants  []tenantdomain.Tenant
}

// seedSharedMeter builds the canonical scenario: one main meter read
// 0 -> 1000 units billed 5500, three active flats with 2, 3 and 4 occupants
// where the third was not read this period.
func seedSharedMeter(t *testing.T, db *gorm.DB, node *snowflake.Node, period string) fixture {
	t.Helper()
	now := time.Now().UTC()

	property := propertydomain.Property{
		ID:        node.Generate().Int64(),
		Code:      "GREENWOOD",
		Name:      "Greenwood Residency",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&property).Error)

	meter := meterdomain.MainMeter{
		ID:         node.Generate().Int64(),
		PropertyID: property.ID,
		Code:       "MAIN-1",
		Name:       "Block A master",
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(&meter).Error)

	tenants := []tenantdomain.Tenant{
		{ID: node.Generate().Int64(), PropertyID: property.ID, MeterID: meter.ID, FlatNumber: "101", Name: "Asha", Occupants: 2, Active: true, CreatedAt: now, UpdatedAt: now},
		{ID: node.Generate().Int64(), PropertyID: property.ID, MeterID: meter.ID, FlatNumber: "102", Name: "Binod", Occupants: 3, Active: true, CreatedAt: now, UpdatedAt: now},
		{ID: node.Generate().Int64(), PropertyID: property.ID, MeterID: meter.ID, FlatNumber: "103", Name: "Chitra", Occupants: 4, Active: true, CreatedAt: now, UpdatedAt: now},
	}
	for i := range tenants {
		require.NoError(t, db.Create(&tenants[i]).Error)
	}

	require.NoError(t, db.Create(&readingdomain.MainMeterReading{
		ID:           node.Generate().Int64(),
		MeterID:      meter.ID,
		Period:       period,
		Previous:     0,
		Current:      1000,
		BilledAmount: 5500,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error)

	subReadings := []readingdomain.SubMeterReading{
		{ID: node.Generate().Int64(), TenantID: tenants[0].ID, Period: period, Previous: 1000, Current: 1300, CreatedAt: now, UpdatedAt: now},
		{ID: node.Generate().Int64(), TenantID: tenants[1].ID, Period: period, Previous: 2000, Current: 2500, CreatedAt: now, UpdatedAt: now},
	}
	for i := range subReadings {
		require.NoError(t, db.Create(&subReadings[i]).Error)
	}

	return fixture{property: property, meter: meter, tenants: tenants}
}

func billByFlat(bills []domain.BillResponse, flat string) *domain.BillResponse {
	for i := range bills {
		if bills[i].FlatNumber == flat {
			return &bills[i]
		}
	}
	return nil
}

func TestGenerateAllocatesSharedRemainder(t *testing.T) {
	db, svc, node := setupBillingTest(t)
	const period = "2025-07"
	f := seedSharedMeter(t, db, node, period)

	resp, err := svc.Generate(context.Background(), domain.GenerateRequest{
		PropertyID: snowflake.ID(f.property.ID).String(),
		Period:     period,
	})
	require.NoError(t, err)
	require.Len(t, resp.Bills, 3)
	require.Len(t, resp.Meters, 1)

	usage := resp.Meters[0]
	assert.Equal(t, 1000.0, usage.Consumption)
	assert.Equal(t, 5.5, usage.Rate)
	assert.Equal(t, 200.0, usage.RemainderUnits)

	// 300 direct units plus 2/5 of the 200-unit remainder.
	b101 := billByFlat(resp.Bills, "101")
	require.NotNil(t, b101)
	assert.Equal(t, 300.0, b101.UnitsConsumed)
	assert.Equal(t, 80.0, b101.SharedUnits)
	assert.Equal(t, 2090.0, b101.TotalAmount)
	assert.Equal(t, 1000.0, b101.PreviousReading)
	assert.Equal(t, 1300.0, b101.CurrentReading)
	assert.Equal(t, domain.BillStatusPending, b101.Status)

	b102 := billByFlat(resp.Bills, "102")
	require.NotNil(t, b102)
	assert.Equal(t, 3410.0, b102.TotalAmount)

	// Unread flat stays on the books with a zero bill and no share.
	b103 := billByFlat(resp.Bills, "103")
	require.NotNil(t, b103)
	assert.Equal(t, 0.0, b103.UnitsConsumed)
	assert.Equal(t, 0.0, b103.SharedUnits)
	assert.Equal(t, 0.0, b103.TotalAmount)

	var persisted []domain.Bill
	require.NoError(t, db.Where("property_id = ? AND period = ?", f.property.ID, period).Find(&persisted).Error)
	assert.Len(t, persisted, 3)
}

func TestGenerateRerunReplacesBills(t *testing.T) {
	db, svc, node := setupBillingTest(t)
	const period = "2025-08"
	f := seedSharedMeter(t, db, node, period)
	propertyID := snowflake.ID(f.property.ID).String()

	first, err := svc.Generate(context.Background(), domain.GenerateRequest{PropertyID: propertyID, Period: period})
	require.NoError(t, err)

	// Correct flat 102's reading and rerun: the period is replaced, never
	// appended.
	require.NoError(t, db.Model(&readingdomain.SubMeterReading{}).
		Where("tenant_id = ?", f.tenants[1].ID).
		Update("current", 2400).Error)

	second, err := svc.Generate(context.Background(), domain.GenerateRequest{PropertyID: propertyID, Period: period})
	require.NoError(t, err)
	require.Len(t, second.Bills, 3)

	var count int64
	require.NoError(t, db.Model(&domain.Bill{}).
		Where("property_id = ? AND period = ?", f.property.ID, period).
		Count(&count).Error)
	assert.Equal(t, int64(3), count)

	// 400 direct units now, remainder grows from 200 to 300.
	b102 := billByFlat(second.Bills, "102")
	require.NotNil(t, b102)
	assert.Equal(t, 400.0, b102.UnitsConsumed)
	assert.Equal(t, 180.0, b102.SharedUnits)

	firstTotal := billByFlat(first.Bills, "101").TotalAmount
	secondTotal := billByFlat(second.Bills, "101").TotalAmount
	assert.NotEqual(t, firstTotal, secondTotal)
}

func TestGenerateIdempotentWithoutChanges(t *testing.T) {
	db, svc, node := setupBillingTest(t)
	const period = "2025-09"
	f := seedSharedMeter(t, db, node, period)
	propertyID := snowflake.ID(f.property.ID).String()

	first, err := svc.Generate(context.Background(), domain.GenerateRequest{PropertyID: propertyID, Period: period})
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), domain.GenerateRequest{PropertyID: propertyID, Period: period})
	require.NoError(t, err)

	require.Len(t, second.Bills, len(first.Bills))
	for _, bill := range first.Bills {
		rerun := billByFlat(second.Bills, bill.FlatNumber)
		require.NotNil(t, rerun)
		assert.Equal(t, bill.UnitsConsumed, rerun.UnitsConsumed)
		assert.Equal(t, bill.SharedUnits, rerun.SharedUnits)
		assert.Equal(t, bill.TotalAmount, rerun.TotalAmount)
	}

	var count int64
	require.NoError(t, db.Model(&domain.Bill{}).
		Where("property_id = ? AND period = ?", f.property.ID, period).
		Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestGenerateExcludesMovedOutTenants(t *testing.T) {
	db, svc, node := setupBillingTest(t)
	const period = "2025-10"
	f := seedSharedMeter(t, db, node, period)

	// Flat 103 moved out before the period.
	require.NoError(t, db.Model(&tenantdomain.Tenant{}).
		Where("id = ?", f.tenants[2].ID).
		Update("active", false).Error)

	resp, err := svc.Generate(context.Background(), domain.GenerateRequest{
		PropertyID: snowflake.ID(f.property.ID).String(),
		Period:     period,
	})
	require.NoError(t, err)

	require.Len(t, resp.Bills, 2)
	assert.Nil(t, billByFlat(resp.Bills, "103"))

	// The remaining flats still absorb the full remainder between them.
	shared := billByFlat(resp.Bills, "101").SharedUnits + billByFlat(resp.Bills, "102").SharedUnits
	assert.InDelta(t, 200.0, shared, 1e-9)
}

func TestGenerateRemainderTenant(t *testing.T) {
	db, svc, node := setupBillingTest(t)
	const period = "2025-11"
	f := seedSharedMeter(t, db, node, period)

	// Flat 103 is the landlord unit: no sub-meter, absorbs the remainder.
	require.NoError(t, db.Model(&tenantdomain.Tenant{}).
		Where("id = ?", f.tenants[2].ID).
		Update("remainder", true).Error)

	resp, err := svc.Generate(context.Background(), domain.GenerateRequest{
		PropertyID: snowflake.ID(f.property.ID).String(),
		Period:     period,
	})
	require.NoError(t, err)

	b103 := billByFlat(resp.Bills, "103")
	require.NotNil(t, b103)
	assert.True(t, b103.Inferred)
	assert.Equal(t, 200.0, b103.UnitsConsumed)
	assert.Equal(t, 1100.0, b103.TotalAmount)

	// Nothing left to prorate.
	assert.Equal(t, 0.0, billByFlat(resp.Bills, "101").SharedUnits)
	assert.Equal(t, 0.0, billByFlat(resp.Bills, "102").SharedUnits)
}

func TestGenerateRequiresMainReading(t *testing.T) {
	db, svc, node := setupBillingTest(t)
	f := seedSharedMeter(t, db, node, "2025-12")

	_, err := svc.Generate(context.Background(), domain.GenerateRequest{
		PropertyID: snowflake.ID(f.property.ID).String(),
		Period:     "2026-01",
	})
	assert.ErrorIs(t, err, readingdomain.ErrNoMainReadings)
}

func TestGenerateRequiresReadingForEveryActiveMeter(t *testing.T) {
	db, svc, node := setupBillingTest(t)
	const period = "2026-06"
	f := seedSharedMeter(t, db, node, period)
	ctx := context.Background()

	_, err := svc.Generate(ctx, domain.GenerateRequest{
		PropertyID: snowflake.ID(f.property.ID).String(),
		Period:     period,
	})
	require.NoError(t, err)

	// A second meter gains an active tenant but no reading for the period.
	now := time.Now().UTC()
	meterB := meterdomain.MainMeter{
		ID:         node.Generate().Int64(),
		PropertyID: f.property.ID,
		Code:       "MAIN-2",
		Name:       "Block B master",
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(&meterB).Error)
	require.NoError(t, db.Create(&tenantdomain.Tenant{
		ID:         node.Generate().Int64(),
		PropertyID: f.property.ID,
		MeterID:    meterB.ID,
		FlatNumber: "201",
		Name:       "Devika",
		Occupants:  2,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}).Error)

	_, err = svc.Generate(ctx, domain.GenerateRequest{
		PropertyID: snowflake.ID(f.property.ID).String(),
		Period:     period,
	})
	assert.ErrorIs(t, err, readingdomain.ErrMissingMainReading)

	// The failed rerun must not touch the previously generated bills.
	var count int64
	require.NoError(t, db.Model(&domain.Bill{}).
		Where("property_id = ? AND period = ?", f.property.ID, period).
		Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestMarkPaidAndSummary(t *testing.T) {
	db, svc, node := setupBillingTest(t)
	const period = "2026-02"
	f := seedSharedMeter(t, db, node, period)
	propertyID := snowflake.ID(f.property.ID).String()

	resp, err := svc.Generate(context.Background(), domain.GenerateRequest{PropertyID: propertyID, Period: period})
	require.NoError(t, err)

	b101 := billByFlat(resp.Bills, "101")
	require.NotNil(t, b101)

	paid, err := svc.MarkPaid(context.Background(), propertyID, b101.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = svc.MarkPaid(context.Background(), propertyID, b101.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)

	summary, err := svc.Summary(context.Background(), propertyID, period)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.BillCount)
	assert.Equal(t, "5500.00", summary.TotalAmount)
	assert.Equal(t, "2090.00", summary.PaidAmount)
	assert.Equal(t, "3410.00", summary.PendingAmount)
	assert.Equal(t, 1000.0, summary.TotalUnits)
	assert.Equal(t, "INR", summary.Currency)

	var stored domain.Bill
	require.NoError(t, db.Where("flat_number = ? AND period = ?", "101", period).First(&stored).Error)
	assert.Equal(t, domain.BillStatusPaid, stored.Status)
}

func TestRenderPDF(t *testing.T) {
	db, svc, node := setupBillingTest(t)
	const period = "2026-03"
	f := seedSharedMeter(t, db, node, period)
	propertyID := snowflake.ID(f.property.ID).String()

	resp, err := svc.Generate(context.Background(), domain.GenerateRequest{PropertyID: propertyID, Period: period})
	require.NoError(t, err)

	b101 := billByFlat(resp.Bills, "101")
	require.NotNil(t, b101)

	doc, err := svc.RenderPDF(context.Background(), propertyID, b101.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, doc)
}
