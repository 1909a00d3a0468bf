package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/researchhub/workspaces/internal/config"
)

const (
	keyInviteWorkspace = "invites:workspace:%s"
	keyInviteUser      = "invites:user:%s"
	keyExpirySweepLock = "invites:expiry:lock"
)

// InviteLimiter throttles invitation sends per workspace and per
// inviting user. A nil limiter (rate limiting disabled) allows all.
type InviteLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	workspaceRate  float64
	workspaceBurst int
	userRate       float64
	userBurst      int
}

func NewInviteLimiter(cfg config.Config) (*InviteLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.InviteWorkspaceRate <= 0 || limitCfg.InviteWorkspaceBurst <= 0 {
		return nil, errors.New("invite workspace rate limit must be positive")
	}
	if limitCfg.InviteUserRate <= 0 || limitCfg.InviteUserBurst <= 0 {
		return nil, errors.New("invite user rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &InviteLimiter{
		enabled:        true,
		bucket:         NewTokenBucket(client),
		locker:         NewLocker(client),
		workspaceRate:  limitCfg.InviteWorkspaceRate,
		workspaceBurst: limitCfg.InviteWorkspaceBurst,
		userRate:       limitCfg.InviteUserRate,
		userBurst:      limitCfg.InviteUserBurst,
	}, nil
}

func (l *InviteLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowWorkspace consumes one workspace-scoped token.
func (l *InviteLimiter) AllowWorkspace(ctx context.Context, workspaceID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyInviteWorkspace, strings.TrimSpace(workspaceID)), l.workspaceRate, l.workspaceBurst)
	if err != nil {
		return false, err
	}
	return res.Allowed, nil
}

// AllowUser consumes one inviter-scoped token.
func (l *InviteLimiter) AllowUser(ctx context.Context, userID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyInviteUser, strings.TrimSpace(userID)), l.userRate, l.userBurst)
	if err != nil {
		return false, err
	}
	return res.Allowed, nil
}

// TryExpirySweepLock claims the cluster-wide expiry sweep lock.
func (l *InviteLimiter) TryExpirySweepLock(ctx context.Context, ttl time.Duration) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, keyExpirySweepLock, ttl)
}

// ReleaseExpirySweepLock releases a previously claimed sweep lock.
func (l *InviteLimiter) ReleaseExpirySweepLock(ctx context.Context, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, keyExpirySweepLock, token)
}
