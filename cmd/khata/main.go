package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/dukandar/khata/internal/clock"
	"github.com/dukandar/khata/internal/config"
	"github.com/dukandar/khata/internal/drawer"
	"github.com/dukandar/khata/internal/logger"
	"github.com/dukandar/khata/internal/migration"
	obsmetrics "github.com/dukandar/khata/internal/observability/metrics"
	"github.com/dukandar/khata/internal/reporting"
	"github.com/dukandar/khata/internal/server"
	"github.com/dukandar/khata/internal/tax"
	"github.com/dukandar/khata/internal/taxrecord"
	"github.com/dukandar/khata/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		obsmetrics.Module,
		migration.Module,

		// Functional domains
		drawer.Module,
		tax.Module,
		taxrecord.Module,
		reporting.Module,

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
