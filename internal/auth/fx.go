package auth

import (
	"github.com/researchhub/workspaces/internal/auth/repository"
	"github.com/researchhub/workspaces/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
