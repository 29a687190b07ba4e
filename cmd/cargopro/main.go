package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smartlogix/cargopro/internal/config"
	"github.com/smartlogix/cargopro/internal/migration"
	"github.com/smartlogix/cargopro/internal/observability"
	"github.com/smartlogix/cargopro/internal/server"
	"github.com/smartlogix/cargopro/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
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
