// Package allocation implements the shared-utility allocation engine: a pure,
// synchronous computation that turns one period's meter readings and tenant
// occupancy into per-tenant bill lines. It performs no I/O; callers fetch the
// period snapshot first and persist the output afterwards.
package allocation

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrUnknownMeter       = errors.New("unknown_meter")
	ErrDuplicateRemainder = errors.New("duplicate_remainder_tenant")
)

// MainMeter is a master meter's reading and billed amount for the period.
type MainMeter struct {
	ID           snowflake.ID
	Code         string
	Reading      Reading
	BilledAmount float64
}

// Tenant is one occupant unit drawing from a main meter. Reading is nil when
// the flat's sub-meter was not read this period. A Remainder tenant's
// consumption is inferred as whatever the main meter shows beyond the read
// sub-meters; a measured reading takes precedence over inference.
type Tenant struct {
	ID         snowflake.ID
	FlatNumber string
	Occupants  int
	MeterID    snowflake.ID
	Remainder  bool
	Reading    *Reading
}

// PeriodInput is the fully materialized snapshot for one billing period.
type PeriodInput struct {
	Meters  []MainMeter
	Tenants []Tenant
}

// MeterUsage reports the derived figures for one main meter.
type MeterUsage struct {
	MeterID        snowflake.ID
	Code           string
	Consumption    float64
	Rate           float64
	RemainderUnits float64
	RemainderCost  float64

	// SubMeterOverflow marks sub-meters summing past the main meter; the
	// remainder clamped to zero and the excess was absorbed.
	SubMeterOverflow bool
	// ZeroRateBilled marks a billed amount against zero consumption; every
	// tenant on this meter pays nothing for electricity this period.
	ZeroRateBilled bool
}

// BillLine is the engine's output for one tenant.
type BillLine struct {
	TenantID   snowflake.ID
	FlatNumber string
	MeterID    snowflake.ID

	ElectricityUnits float64
	RatePerUnit      float64
	ElectricityCost  float64
	SharedUnits      float64
	SharedCost       float64
	RawTotal         float64
	TotalAmount      float64

	// Inferred marks units back-calculated from the meter remainder rather
	// than read from a sub-meter.
	Inferred bool
}

// Result is the engine output for one period.
type Result struct {
	Meters []MeterUsage
	Lines  []BillLine
}

// DeriveRate computes the effective per-unit rate for a main meter. A
// zero-consumption meter yields a zero rate rather than a division error.
func DeriveRate(billedAmount, consumption float64) float64 {
	if consumption > 0 {
		return billedAmount / consumption
	}
	return 0
}

// ResolveRemainder infers the shared consumption left on a main meter after
// subtracting the known sub-meter consumption. Overflow reports sub-meters
// reading past the main meter; the remainder clamps to zero.
func ResolveRemainder(mainConsumption float64, subConsumptions []float64) (remainder float64, overflow bool) {
	var known float64
	for _, u := range subConsumptions {
		known += u
	}
	if known > mainConsumption {
		return 0, true
	}
	return ClampNegativeToZero(mainConsumption - known), false
}

// Prorate splits remainder units across tenants by occupant count. Shares are
// real-valued; the sum over all entries equals the remainder up to float
// rounding. Entries with zero occupants receive zero.
func Prorate(remainder float64, occupants []int) []float64 {
	total := 0
	for _, p := range occupants {
		total += p
	}
	perPerson := remainder / float64(MinimumDivisorOne(total))

	shares := make([]float64, len(occupants))
	for i, p := range occupants {
		shares[i] = perPerson * float64(p)
	}
	return shares
}

// ComputePeriod runs the full allocation for one period: consumption and rate
// per meter, remainder resolution, per-head proration, and bill composition.
// Inactive tenants (zero direct consumption) receive zero-amount lines and do
// not dilute the shares of active ones. Output order follows input order.
func ComputePeriod(in PeriodInput) (*Result, error) {
	meters := make(map[snowflake.ID]*meterState, len(in.Meters))
	usages := make([]MeterUsage, 0, len(in.Meters))

	for _, m := range in.Meters {
		consumption := m.Reading.Consumption()
		meters[m.ID] = &meterState{
			meter:       m,
			consumption: consumption,
			rate:        DeriveRate(m.BilledAmount, consumption),
		}
	}

	// First pass: direct consumption, remainder-tenant detection.
	lines := make([]BillLine, len(in.Tenants))
	for i, t := range in.Tenants {
		state, ok := meters[t.MeterID]
		if !ok {
			return nil, fmt.Errorf("tenant %s flat %s: %w", t.ID, t.FlatNumber, ErrUnknownMeter)
		}

		lines[i] = BillLine{
			TenantID:    t.ID,
			FlatNumber:  t.FlatNumber,
			MeterID:     t.MeterID,
			RatePerUnit: state.rate,
		}

		if t.Reading != nil {
			lines[i].ElectricityUnits = t.Reading.Consumption()
			state.knownUnits = append(state.knownUnits, lines[i].ElectricityUnits)
		} else if t.Remainder {
			if state.remainderLine != nil {
				return nil, fmt.Errorf("meter %s: %w", state.meter.Code, ErrDuplicateRemainder)
			}
			state.remainderLine = &lines[i]
		}

		state.tenantLines = append(state.tenantLines, &lines[i])
		state.occupants = append(state.occupants, t.Occupants)
	}

	// Second pass: remainder per meter, attributed or prorated.
	for _, m := range in.Meters {
		state := meters[m.ID]

		remainder, overflow := ResolveRemainder(state.consumption, state.knownUnits)

		if state.remainderLine != nil {
			// Attributed wholesale to the unread unit, not prorated.
			state.remainderLine.ElectricityUnits = remainder
			state.remainderLine.Inferred = true
		} else if remainder > 0 {
			prorateShared(state, remainder)
		}

		usages = append(usages, MeterUsage{
			MeterID:          m.ID,
			Code:             m.Code,
			Consumption:      state.consumption,
			Rate:             state.rate,
			RemainderUnits:   remainder,
			RemainderCost:    remainder * state.rate,
			SubMeterOverflow: overflow,
			ZeroRateBilled:   state.consumption == 0 && m.BilledAmount > 0,
		})
	}

	// Final pass: compose totals.
	for i := range lines {
		line := &lines[i]
		line.ElectricityCost = line.ElectricityUnits * line.RatePerUnit
		line.SharedCost = line.SharedUnits * line.RatePerUnit
		line.RawTotal = line.ElectricityCost + line.SharedCost
		line.TotalAmount = CeilToWholeUnit(line.RawTotal)
	}

	return &Result{Meters: usages, Lines: lines}, nil
}

type meterState struct {
	meter       MainMeter
	consumption float64
	rate        float64

	knownUnits    []float64
	tenantLines   []*BillLine
	occupants     []int
	remainderLine *BillLine
}

// prorateShared distributes remainder units over the meter's active tenants
// (direct consumption > 0) by occupant count.
func prorateShared(state *meterState, remainder float64) {
	active := make([]*BillLine, 0, len(state.tenantLines))
	occupants := make([]int, 0, len(state.tenantLines))
	for i, line := range state.tenantLines {
		if line.ElectricityUnits <= 0 {
			continue
		}
		active = append(active, line)
		occupants = append(occupants, state.occupants[i])
	}

	shares := Prorate(remainder, occupants)
	for i, line := range active {
		line.SharedUnits = shares[i]
	}
}
