package member

import (
	"github.com/researchhub/workspaces/internal/member/repository"
	"github.com/researchhub/workspaces/internal/member/service"
	"go.uber.org/fx"
)

var Module = fx.Module("member.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
