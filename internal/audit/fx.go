package audit

import (
	"github.com/researchhub/workspaces/internal/audit/repository"
	"github.com/researchhub/workspaces/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
