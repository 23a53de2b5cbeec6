package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/propease/internal/config"
	"github.com/smallbiznis/propease/internal/migration"
	"github.com/smallbiznis/propease/internal/observability/logger"
	"github.com/smallbiznis/propease/internal/observability/metrics"
	"github.com/smallbiznis/propease/internal/server"
	"github.com/smallbiznis/propease/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		metrics.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
