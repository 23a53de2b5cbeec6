package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	meterdomain "github.com/smallbiznis/propease/internal/meter/domain"
	meterrepo "github.com/smallbiznis/propease/internal/meter/repository"
	propertydomain "github.com/smallbiznis/propease/internal/property/domain"
	"github.com/smallbiznis/propease/internal/tenant/domain"
	"github.com/smallbiznis/propease/internal/tenant/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type tenantFixture struct {
	db         *gorm.DB
	node       *snowflake.Node
	svc        domain.Service
	propertyID string
	meterID    string
}

func (f *tenantFixture) addMeter(t *testing.T, code string) string {
	t.Helper()
	propertyID, err := snowflake.ParseString(f.propertyID)
	require.NoError(t, err)
	id := f.node.Generate().Int64()
	require.NoError(t, f.db.Create(&meterdomain.MainMeter{
		ID:         id,
		PropertyID: propertyID.Int64(),
		Code:       code,
		Name:       code,
		Active:     true,
	}).Error)
	return snowflake.ID(id).String()
}

func setupTenantTest(t *testing.T) *tenantFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&propertydomain.Property{},
		&meterdomain.MainMeter{},
		&domain.Tenant{},
	)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	propertyID := node.Generate().Int64()
	require.NoError(t, db.Create(&propertydomain.Property{
		ID:   propertyID,
		Code: "greenwood",
		Name: "Greenwood Residency",
	}).Error)

	meterID := node.Generate().Int64()
	require.NoError(t, db.Create(&meterdomain.MainMeter{
		ID:         meterID,
		PropertyID: propertyID,
		Code:       "MAIN-1",
		Name:       "MAIN-1",
		Active:     true,
	}).Error)

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		MeterRepo: meterrepo.Provide(),
	})

	return &tenantFixture{
		db:         db,
		node:       node,
		svc:        svc,
		propertyID: snowflake.ID(propertyID).String(),
		meterID:    snowflake.ID(meterID).String(),
	}
}

func TestCreateTenantAllowsZeroOccupants(t *testing.T) {
	f := setupTenantTest(t)
	ctx := context.Background()

	// A vacant or storage flat is stored at zero; the allocator gives it a
	// zero per-head share rather than one person's worth.
	email := "asha@example.com"
	resp, err := f.svc.Create(ctx, domain.CreateRequest{
		PropertyID: f.propertyID,
		MeterID:    f.meterID,
		FlatNumber: "101",
		Name:       "Asha",
		Email:      &email,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Occupants)
	assert.True(t, resp.Active)
	require.NotNil(t, resp.Email)
	assert.Equal(t, "asha@example.com", *resp.Email)

	got, err := f.svc.Get(ctx, f.propertyID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Occupants)
}

func TestCreateTenantRejectsDuplicateFlat(t *testing.T) {
	f := setupTenantTest(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreateRequest{
		PropertyID: f.propertyID,
		MeterID:    f.meterID,
		FlatNumber: "102",
		Name:       "Binod",
		Occupants:  3,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		PropertyID: f.propertyID,
		MeterID:    f.meterID,
		FlatNumber: "102",
		Name:       "Someone Else",
	})
	assert.ErrorIs(t, err, domain.ErrFlatExists)
}

func TestCreateTenantSingleRemainderPerMeter(t *testing.T) {
	f := setupTenantTest(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreateRequest{
		PropertyID: f.propertyID,
		MeterID:    f.meterID,
		FlatNumber: "103",
		Name:       "Chitra",
		Remainder:  true,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		PropertyID: f.propertyID,
		MeterID:    f.meterID,
		FlatNumber: "104",
		Name:       "Deepak",
		Remainder:  true,
	})
	assert.ErrorIs(t, err, domain.ErrRemainderExists)
}

func TestUpdateTenantMeterMoveKeepsSingleRemainder(t *testing.T) {
	f := setupTenantTest(t)
	ctx := context.Background()
	meterB := f.addMeter(t, "MAIN-2")

	onA, err := f.svc.Create(ctx, domain.CreateRequest{
		PropertyID: f.propertyID,
		MeterID:    f.meterID,
		FlatNumber: "108",
		Name:       "Gauri",
		Remainder:  true,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		PropertyID: f.propertyID,
		MeterID:    meterB,
		FlatNumber: "109",
		Name:       "Harsh",
		Remainder:  true,
	})
	require.NoError(t, err)

	// Moving an existing remainder tenant onto a meter that already has one
	// must be rejected even when the remainder flag itself is untouched.
	_, err = f.svc.Update(ctx, domain.UpdateRequest{
		PropertyID: f.propertyID,
		ID:         onA.ID,
		MeterID:    &meterB,
	})
	assert.ErrorIs(t, err, domain.ErrRemainderExists)

	// Dropping the flag in the same request makes the move legal.
	noRemainder := false
	moved, err := f.svc.Update(ctx, domain.UpdateRequest{
		PropertyID: f.propertyID,
		ID:         onA.ID,
		MeterID:    &meterB,
		Remainder:  &noRemainder,
	})
	require.NoError(t, err)
	assert.Equal(t, meterB, moved.MeterID)
	assert.False(t, moved.Remainder)
}

func TestCreateTenantValidates(t *testing.T) {
	f := setupTenantTest(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreateRequest{
		PropertyID: f.propertyID,
		MeterID:    f.meterID,
		FlatNumber: "",
		Name:       "Asha",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFlatNumber)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		PropertyID: f.propertyID,
		MeterID:    f.meterID,
		FlatNumber: "105",
		Name:       "Asha",
		Occupants:  -1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOccupants)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		PropertyID: f.propertyID,
		MeterID:    snowflake.ID(42).String(),
		FlatNumber: "106",
		Name:       "Asha",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMeter)
}

func TestMoveOutReleasesFlatAndRemainder(t *testing.T) {
	f := setupTenantTest(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, domain.CreateRequest{
		PropertyID: f.propertyID,
		MeterID:    f.meterID,
		FlatNumber: "107",
		Name:       "Esha",
		Occupants:  2,
		Remainder:  true,
	})
	require.NoError(t, err)

	moved, err := f.svc.MoveOut(ctx, domain.MoveOutRequest{
		PropertyID: f.propertyID,
		ID:         created.ID,
	})
	require.NoError(t, err)
	assert.False(t, moved.Active)
	assert.False(t, moved.Remainder)
	require.NotNil(t, moved.MoveOutDate)

	_, err = f.svc.MoveOut(ctx, domain.MoveOutRequest{
		PropertyID: f.propertyID,
		ID:         created.ID,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyMovedOut)

	// The flat is free again and a new remainder tenant is allowed.
	_, err = f.svc.Create(ctx, domain.CreateRequest{
		PropertyID: f.propertyID,
		MeterID:    f.meterID,
		FlatNumber: "107",
		Name:       "Farhan",
		Remainder:  true,
	})
	require.NoError(t, err)
}
