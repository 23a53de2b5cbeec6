// Package pdf renders tenant bill statements.
package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// StatementData is everything a one-page bill statement shows.
type StatementData struct {
	PropertyName string
	FlatNumber   string
	TenantName   string
	Period       string
	Status       string
	Currency     string

	PreviousReading float64
	CurrentReading  float64
	UnitsConsumed   float64
	RatePerUnit     float64
	ElectricityCost float64
	SharedUnits     float64
	SharedCost      float64
	TotalAmount     float64
	Inferred        bool
}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(data StatementData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Electricity Bill", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(24,
		col.New(6).Add(
			text.New(data.PropertyName, props.Text{Style: fontstyle.Bold}),
			text.New("Flat "+data.FlatNumber, props.Text{Top: 5}),
			text.New(data.TenantName, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Billing period: "+data.Period, props.Text{Align: align.Right}),
			text.New("Status: "+data.Status, props.Text{Top: 5, Align: align.Right}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Units", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	meterLabel := "Metered consumption"
	if data.Inferred {
		meterLabel = "Inferred consumption"
	}
	m.AddRow(10,
		text.NewCol(6, fmt.Sprintf("%s (%s -> %s)", meterLabel,
			formatUnits(data.PreviousReading), formatUnits(data.CurrentReading)), props.Text{Size: 9}),
		text.NewCol(2, formatUnits(data.UnitsConsumed), props.Text{Size: 9, Align: align.Right}),
		text.NewCol(2, Money(data.RatePerUnit), props.Text{Size: 9, Align: align.Right}),
		text.NewCol(2, Money(data.ElectricityCost), props.Text{Size: 9, Align: align.Right}),
	)

	if data.SharedUnits > 0 {
		m.AddRow(10,
			text.NewCol(6, "Shared consumption", props.Text{Size: 9}),
			text.NewCol(2, formatUnits(data.SharedUnits), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, Money(data.RatePerUnit), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, Money(data.SharedCost), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(12,
		col.New(8),
		text.NewCol(2, "Total due", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, data.Currency+" "+Money(data.TotalAmount), props.Text{
			Style: fontstyle.Bold,
			Size:  10,
			Align: align.Right,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

// Money formats an amount with two fixed decimals, without float artifacts.
func Money(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func formatUnits(units float64) string {
	return decimal.NewFromFloat(units).StringFixed(1)
}
