package property

import (
	"github.com/smallbiznis/propease/internal/property/repository"
	"github.com/smallbiznis/propease/internal/property/service"
	"go.uber.org/fx"
)

var Module = fx.Module("property.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
