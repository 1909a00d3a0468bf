package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	auditdomain "github.com/researchhub/workspaces/internal/audit/domain"
	authdomain "github.com/researchhub/workspaces/internal/auth/domain"
	"github.com/researchhub/workspaces/internal/clock"
	"github.com/researchhub/workspaces/internal/config"
	"github.com/researchhub/workspaces/internal/invitation/domain"
	memberdomain "github.com/researchhub/workspaces/internal/member/domain"
	"github.com/researchhub/workspaces/internal/observability/metrics"
	"github.com/researchhub/workspaces/internal/providers/email"
	"github.com/researchhub/workspaces/internal/ratelimit"
	"github.com/researchhub/workspaces/internal/role"
	workspacedomain "github.com/researchhub/workspaces/internal/workspace/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	resultStatusSent    = "sent"
	resultStatusSkipped = "skipped"
)

type Params struct {
	fx.In

	Log           *zap.Logger
	DB            *gorm.DB
	Cfg           config.Config
	Policy        *config.PolicyHolder
	Repo          domain.Repository
	MemberRepo    memberdomain.Repository
	UserRepo      authdomain.Repository
	WorkspaceRepo workspacedomain.Repository
	GenID         *snowflake.Node
	Clock         clock.Clock
	Limiter       *ratelimit.InviteLimiter `optional:"true"`
	Email         email.Provider
	Audit         auditdomain.Service
	Metrics       *metrics.Metrics
}

type service struct {
	log           *zap.Logger
	db            *gorm.DB
	cfg           config.Config
	policy        *config.PolicyHolder
	repo          domain.Repository
	memberRepo    memberdomain.Repository
	userRepo      authdomain.Repository
	workspaceRepo workspacedomain.Repository
	genID         *snowflake.Node
	clock         clock.Clock
	limiter       *ratelimit.InviteLimiter
	email         email.Provider
	audit         auditdomain.Service
	metrics       *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &service{
		log:           p.Log.Named("invitation.service"),
		db:            p.DB,
		cfg:           p.Cfg,
		policy:        p.Policy,
		repo:          p.Repo,
		memberRepo:    p.MemberRepo,
		userRepo:      p.UserRepo,
		workspaceRepo: p.WorkspaceRepo,
		genID:         p.GenID,
		clock:         p.Clock,
		limiter:       p.Limiter,
		email:         p.Email,
		audit:         p.Audit,
		metrics:       p.Metrics,
	}
}

func (s *service) BatchInvite(ctx context.Context, actorUserID, workspaceID snowflake.ID, req domain.BatchInviteRequest) (*domain.BatchInviteResponse, error) {
	if len(req.Invitations) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	policy := s.policy.Get()
	if len(req.Invitations) > policy.MaxBatchSize {
		return nil, domain.ErrBatchTooLarge
	}

	actor, err := s.memberRepo.GetByUser(ctx, workspaceID, actorUserID)
	if err != nil {
		if errors.Is(err, memberdomain.ErrMemberNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}
	if !role.Role(actor.Role).AtLeast(role.Admin) {
		return nil, domain.ErrForbidden
	}

	if err := s.checkRateLimit(ctx, actorUserID, workspaceID); err != nil {
		return nil, err
	}

	pending, err := s.repo.CountPending(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	ws, err := s.workspaceRepo.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	inviter, err := s.userRepo.FindByID(ctx, actorUserID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	expiresAt := now.Add(time.Duration(policy.ExpiryDays) * 24 * time.Hour)

	resp := &domain.BatchInviteResponse{
		Results: make([]domain.InviteResult, 0, len(req.Invitations)),
	}
	var created []domain.Invitation

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		memberRepo := s.memberRepo.WithTx(tx)

		for _, invite := range req.Invitations {
			addr := strings.TrimSpace(invite.Email)
			result := domain.InviteResult{Email: addr, Status: resultStatusSkipped}

			// Rows that fail validation are dropped without failing
			// the batch; valid rows still go through.
			if !domain.IsValidEmail(addr) {
				result.Reason = domain.ErrInvalidEmail.Error()
				resp.Results = append(resp.Results, result)
				continue
			}

			inviteRole := strings.TrimSpace(invite.Role)
			if inviteRole == "" {
				inviteRole = policy.DefaultRole
			}
			parsedRole, ok := role.Parse(inviteRole)
			if !ok || parsedRole == role.Owner {
				result.Reason = domain.ErrInvalidRole.Error()
				resp.Results = append(resp.Results, result)
				continue
			}

			existing, err := s.userRepo.FindByEmail(ctx, addr)
			if err != nil && !errors.Is(err, authdomain.ErrUserNotFound) {
				return err
			}
			if existing != nil {
				if _, err := memberRepo.GetByUser(ctx, workspaceID, existing.ID); err == nil {
					result.Reason = domain.ErrAlreadyMember.Error()
					resp.Results = append(resp.Results, result)
					continue
				} else if !errors.Is(err, memberdomain.ErrMemberNotFound) {
					return err
				}
			}

			if _, err := repo.FindPending(ctx, workspaceID, addr); err == nil {
				result.Reason = domain.ErrAlreadyInvited.Error()
				resp.Results = append(resp.Results, result)
				continue
			} else if !errors.Is(err, domain.ErrInvitationNotFound) {
				return err
			}

			if policy.MaxPendingPerWorkspace > 0 && pending >= int64(policy.MaxPendingPerWorkspace) {
				result.Reason = domain.ErrTooManyPending.Error()
				resp.Results = append(resp.Results, result)
				continue
			}

			invitation := domain.Invitation{
				ID:          s.genID.Generate(),
				WorkspaceID: workspaceID,
				Email:       strings.ToLower(addr),
				Role:        parsedRole.String(),
				Code:        newInviteCode(now),
				Status:      domain.StatusPending,
				Message:     strings.TrimSpace(invite.Message),
				InvitedBy:   actorUserID,
				ExpiresAt:   expiresAt,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := repo.Create(ctx, &invitation); err != nil {
				return err
			}

			// An invitee with an existing account shows up in the
			// member list immediately; others join on accept.
			if existing != nil {
				invitedAt := now
				member := memberdomain.WorkspaceMember{
					ID:          s.genID.Generate(),
					WorkspaceID: workspaceID,
					UserID:      existing.ID,
					Role:        parsedRole.String(),
					Status:      memberdomain.StatusInvited,
					InvitedAt:   &invitedAt,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := memberRepo.Create(ctx, &member); err != nil {
					return err
				}
			}

			pending++
			created = append(created, invitation)
			result.Status = resultStatusSent
			result.Reason = ""
			resp.Results = append(resp.Results, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.Sent = len(created)
	for _, invitation := range created {
		s.sendInviteEmail(ctx, ws, inviter, invitation)
	}

	if len(created) > 0 {
		s.metrics.RecordInvitesSent(ctx, workspaceID.String(), len(created))

		actorID := actorUserID.String()
		_ = s.audit.AuditLog(ctx, &workspaceID, string(auditdomain.ActorTypeUser), &actorID,
			auditdomain.ActionInvitationSent, "invitation", nil, map[string]any{
				"requested": len(req.Invitations),
				"sent":      len(created),
			})
	}

	s.log.Info("invitation batch processed",
		zap.String("workspace_id", workspaceID.String()),
		zap.Int("requested", len(req.Invitations)),
		zap.Int("sent", len(created)),
	)
	return resp, nil
}

func (s *service) List(ctx context.Context, workspaceID snowflake.ID) ([]domain.InvitationResponse, error) {
	invitations, err := s.repo.ListByWorkspace(ctx, workspaceID, domain.StatusPending)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.InvitationResponse, 0, len(invitations))
	for _, invitation := range invitations {
		resp = append(resp, domain.InvitationResponse{
			ID:        invitation.ID.String(),
			Email:     invitation.Email,
			Role:      invitation.Role,
			RoleBadge: role.ToDisplay(role.Role(invitation.Role)).BadgeVariant,
			Status:    invitation.Status,
			ExpiresAt: invitation.ExpiresAt,
			CreatedAt: invitation.CreatedAt,
		})
	}
	return resp, nil
}

func (s *service) Accept(ctx context.Context, userID snowflake.ID, code string) (*domain.AcceptResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, domain.ErrInvalidCode
	}

	invitation, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return nil, domain.ErrInvalidCode
		}
		return nil, err
	}

	now := s.clock.Now()
	switch invitation.Status {
	case domain.StatusRevoked:
		return nil, domain.ErrInvitationRevoked
	case domain.StatusAccepted:
		return nil, domain.ErrInvitationAccepted
	case domain.StatusExpired:
		return nil, domain.ErrInvitationExpired
	}
	if now.After(invitation.ExpiresAt) {
		_ = s.repo.UpdateFields(ctx, invitation.ID, map[string]any{
			"status":     domain.StatusExpired,
			"updated_at": now,
		})
		return nil, domain.ErrInvitationExpired
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(user.Email), invitation.Email) {
		return nil, domain.ErrEmailMismatch
	}

	var memberID snowflake.ID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		memberRepo := s.memberRepo.WithTx(tx)

		if err := repo.UpdateFields(ctx, invitation.ID, map[string]any{
			"status":      domain.StatusAccepted,
			"accepted_at": now,
			"updated_at":  now,
		}); err != nil {
			return err
		}

		member, err := memberRepo.GetByUser(ctx, invitation.WorkspaceID, userID)
		switch {
		case err == nil:
			memberID = member.ID
			return memberRepo.UpdateFields(ctx, member.ID, map[string]any{
				"status":         memberdomain.StatusActive,
				"role":           invitation.Role,
				"last_active_at": now,
				"updated_at":     now,
			})
		case errors.Is(err, memberdomain.ErrMemberNotFound):
			invitedAt := invitation.CreatedAt
			newMember := memberdomain.WorkspaceMember{
				ID:           s.genID.Generate(),
				WorkspaceID:  invitation.WorkspaceID,
				UserID:       userID,
				Role:         invitation.Role,
				Status:       memberdomain.StatusActive,
				InvitedAt:    &invitedAt,
				LastActiveAt: &now,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			memberID = newMember.ID
			return memberRepo.Create(ctx, &newMember)
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordInviteAccepted(ctx, invitation.WorkspaceID.String())

	actorID := userID.String()
	targetID := invitation.ID.String()
	_ = s.audit.AuditLog(ctx, &invitation.WorkspaceID, string(auditdomain.ActorTypeUser), &actorID,
		auditdomain.ActionInvitationAccept, "invitation", &targetID, map[string]any{
			"role": invitation.Role,
		})

	return &domain.AcceptResult{
		WorkspaceID: invitation.WorkspaceID.String(),
		MemberID:    memberID.String(),
		Role:        invitation.Role,
	}, nil
}

func (s *service) Revoke(ctx context.Context, actorUserID, workspaceID, invitationID snowflake.ID) error {
	actor, err := s.memberRepo.GetByUser(ctx, workspaceID, actorUserID)
	if err != nil {
		if errors.Is(err, memberdomain.ErrMemberNotFound) {
			return domain.ErrForbidden
		}
		return err
	}
	if !role.Role(actor.Role).AtLeast(role.Admin) {
		return domain.ErrForbidden
	}

	invitation, err := s.repo.GetByID(ctx, workspaceID, invitationID)
	if err != nil {
		return err
	}
	if invitation.Status != domain.StatusPending {
		switch invitation.Status {
		case domain.StatusAccepted:
			return domain.ErrInvitationAccepted
		case domain.StatusRevoked:
			return domain.ErrInvitationRevoked
		default:
			return domain.ErrInvitationExpired
		}
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		memberRepo := s.memberRepo.WithTx(tx)

		if err := repo.UpdateFields(ctx, invitation.ID, map[string]any{
			"status":     domain.StatusRevoked,
			"revoked_at": now,
			"updated_at": now,
		}); err != nil {
			return err
		}

		// Drop the provisional member row created at invite time.
		if user, err := s.userRepo.FindByEmail(ctx, invitation.Email); err == nil {
			member, err := memberRepo.GetByUser(ctx, workspaceID, user.ID)
			if err == nil && member.Status == memberdomain.StatusInvited {
				return memberRepo.UpdateFields(ctx, member.ID, map[string]any{
					"status":     memberdomain.StatusRemoved,
					"updated_at": now,
				})
			}
			if err != nil && !errors.Is(err, memberdomain.ErrMemberNotFound) {
				return err
			}
		} else if !errors.Is(err, authdomain.ErrUserNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordInviteRevoked(ctx, workspaceID.String())

	actorID := actorUserID.String()
	targetID := invitationID.String()
	_ = s.audit.AuditLog(ctx, &workspaceID, string(auditdomain.ActorTypeUser), &actorID,
		auditdomain.ActionInvitationRevoked, "invitation", &targetID, map[string]any{
			"email": invitation.Email,
		})
	return nil
}

func (s *service) ExpireStale(ctx context.Context) (int64, error) {
	token, ok, err := s.limiter.TryExpirySweepLock(ctx, time.Minute)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	defer func() {
		_ = s.limiter.ReleaseExpirySweepLock(ctx, token)
	}()

	expired, err := s.repo.ExpireBefore(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.log.Info("expired stale invitations", zap.Int64("count", expired))
	}
	return expired, nil
}

func (s *service) checkRateLimit(ctx context.Context, actorUserID, workspaceID snowflake.ID) error {
	allowed, err := s.limiter.AllowUser(ctx, actorUserID.String())
	if err != nil {
		s.log.Warn("invite rate limiter unavailable", zap.Error(err))
		return nil
	}
	s.metrics.RecordRateLimit(ctx, "invite_user", allowed)
	if !allowed {
		return domain.ErrRateLimited
	}

	allowed, err = s.limiter.AllowWorkspace(ctx, workspaceID.String())
	if err != nil {
		s.log.Warn("invite rate limiter unavailable", zap.Error(err))
		return nil
	}
	s.metrics.RecordRateLimit(ctx, "invite_workspace", allowed)
	if !allowed {
		return domain.ErrRateLimited
	}
	return nil
}

func (s *service) sendInviteEmail(ctx context.Context, ws *workspacedomain.Workspace, inviter *authdomain.User, invitation domain.Invitation) {
	display := role.ToDisplay(role.Role(invitation.Role))
	data := map[string]interface{}{
		"workspace_name": ws.Name,
		"inviter_name":   inviter.DisplayName(),
		"role_label":     display.Label,
		"message":        invitation.Message,
		"accept_url":     fmt.Sprintf("%s/invites/%s", strings.TrimRight(s.cfg.PublicBaseURL, "/"), invitation.Code),
		"expires_at":     invitation.ExpiresAt.Format("Jan 2, 2006"),
	}
	if err := s.email.SendTemplate(ctx, []string{invitation.Email}, "invite_member", data); err != nil {
		// Delivery failures do not roll back the invitation; the
		// code can still be shared out of band.
		s.log.Warn("failed to send invitation email",
			zap.String("invitation_id", invitation.ID.String()),
			zap.Error(err),
		)
	}
}

// newInviteCode returns a ULID-based single-use code. The timestamp
// component keeps codes roughly sortable by issue time.
func newInviteCode(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}
