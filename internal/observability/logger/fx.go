package logger

import (
	"github.com/smallbiznis/propease/internal/config"
	"go.uber.org/fx"
)

// FromAppConfig derives the logger configuration from application config.
func FromAppConfig(cfg config.Config) Config {
	return Config{
		ServiceName:   cfg.AppName,
		Environment:   cfg.Environment,
		Version:       cfg.AppVersion,
		Level:         cfg.LogLevel,
		Format:        cfg.LogFormat,
		Debug:         !cfg.IsProduction(),
		IncludeCaller: true,
	}
}

// Module wires the zap logger for the application.
var Module = fx.Module("observability.logger",
	fx.Provide(
		FromAppConfig,
		New,
	),
)
