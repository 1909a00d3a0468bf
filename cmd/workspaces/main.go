package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/researchhub/workspaces/internal/config"
	"github.com/researchhub/workspaces/internal/migration"
	"github.com/researchhub/workspaces/internal/observability"
	"github.com/researchhub/workspaces/internal/server"
	"github.com/researchhub/workspaces/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
