package migration

import (
	"github.com/researchhub/workspaces/internal/config"
	"github.com/researchhub/workspaces/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.DefaultWorkspaceID != 0 {
			if err := seed.EnsureDefaultWorkspaceWithID(conn, cfg.Bootstrap.DefaultWorkspaceName, cfg.DefaultWorkspaceID); err != nil {
				return err
			}
		} else {
			if err := seed.EnsureDefaultWorkspace(conn, cfg.Bootstrap.DefaultWorkspaceName); err != nil {
				return err
			}
		}
		if cfg.Bootstrap.EnsureDefaultWorkspaceAndOwner {
			return seed.EnsureDefaultWorkspaceAndOwner(conn, cfg.Bootstrap.DefaultWorkspaceName, cfg.Bootstrap.DefaultOwnerEmail)
		}
		return nil
	}),
)
