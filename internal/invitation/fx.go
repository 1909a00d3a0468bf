package invitation

import (
	"context"
	"time"

	"github.com/researchhub/workspaces/internal/invitation/domain"
	"github.com/researchhub/workspaces/internal/invitation/repository"
	"github.com/researchhub/workspaces/internal/invitation/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const expirySweepInterval = time.Hour

var Module = fx.Module("invitation.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
	fx.Invoke(registerExpirySweep),
)

// registerExpirySweep runs a background loop that marks overdue pending
// invitations as expired. The sweep takes a cluster lock so only one
// instance does the work per interval.
func registerExpirySweep(lc fx.Lifecycle, svc domain.Service, log *zap.Logger) {
	sweepLog := log.Named("invitation.sweep")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(expirySweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if _, err := svc.ExpireStale(ctx); err != nil {
							sweepLog.Warn("expiry sweep failed", zap.Error(err))
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
