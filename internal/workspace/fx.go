package workspace

import (
	"github.com/researchhub/workspaces/internal/workspace/repository"
	"github.com/researchhub/workspaces/internal/workspace/service"
	"go.uber.org/fx"
)

var Module = fx.Module("workspace.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
