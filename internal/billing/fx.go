package billing

import (
	"github.com/smallbiznis/propease/internal/billing/pdf"
	"github.com/smallbiznis/propease/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(pdf.NewRenderer),
	fx.Provide(service.New),
)
