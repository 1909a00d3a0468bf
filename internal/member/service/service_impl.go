package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/researchhub/workspaces/internal/audit/domain"
	"github.com/researchhub/workspaces/internal/cache"
	"github.com/researchhub/workspaces/internal/clock"
	"github.com/researchhub/workspaces/internal/member/domain"
	"github.com/researchhub/workspaces/internal/observability/metrics"
	"github.com/researchhub/workspaces/internal/role"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	countsCacheTTL  = 30 * time.Second
	countsCacheSize = 4096
)

type Params struct {
	fx.In

	Log     *zap.Logger
	DB      *gorm.DB
	Repo    domain.Repository
	Clock   clock.Clock
	Audit   auditdomain.Service
	Metrics *metrics.Metrics
}

type service struct {
	log     *zap.Logger
	db      *gorm.DB
	repo    domain.Repository
	clock   clock.Clock
	audit   auditdomain.Service
	metrics *metrics.Metrics
	counts  cache.Cache[snowflake.ID, domain.MemberCounts]
}

func NewService(p Params) domain.Service {
	return &service{
		log:     p.Log.Named("member.service"),
		db:      p.DB,
		repo:    p.Repo,
		clock:   p.Clock,
		audit:   p.Audit,
		metrics: p.Metrics,
		counts:  cache.NewTTLCache[snowflake.ID, domain.MemberCounts](countsCacheTTL, countsCacheSize),
	}
}

func (s *service) List(ctx context.Context, actorUserID, workspaceID snowflake.ID, req domain.ListMembersRequest) (*domain.MemberListResponse, error) {
	views, err := s.repo.ListViews(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	actorRole := ""
	for _, v := range views {
		if v.UserID == actorUserID {
			actorRole = v.Role
			break
		}
	}
	canManage := role.Role(actorRole).AtLeast(role.Admin)

	counts := domain.CountMembers(views)
	s.counts.Set(workspaceID, counts)

	now := s.clock.Now()
	filtered := domain.FilterMembers(views, req.Query)

	resp := &domain.MemberListResponse{
		Members: make([]domain.MemberResponse, 0, len(filtered)),
		Pending: make([]domain.MemberResponse, 0),
		Counts:  counts,
	}
	for _, v := range domain.PendingInvitations(views) {
		resp.Pending = append(resp.Pending, s.toResponse(v, actorUserID, canManage, now))
	}
	for _, v := range filtered {
		resp.Members = append(resp.Members, s.toResponse(v, actorUserID, canManage, now))
	}

	return resp, nil
}

func (s *service) ChangeRole(ctx context.Context, actorUserID, workspaceID, memberID snowflake.ID, newRole string) (*domain.MemberResponse, error) {
	parsed, ok := role.Parse(newRole)
	if !ok {
		return nil, domain.ErrInvalidRole
	}

	member, err := s.repo.Get(ctx, workspaceID, memberID)
	if err != nil {
		return nil, err
	}
	if member.UserID == actorUserID {
		return nil, domain.ErrSelfManagement
	}

	actor, err := s.repo.GetByUser(ctx, workspaceID, actorUserID)
	if err != nil {
		return nil, err
	}
	actorRole := role.Role(actor.Role)
	if !actorRole.AtLeast(role.Admin) {
		return nil, domain.ErrForbidden
	}
	// Granting or revoking ownership is reserved to owners.
	if (parsed == role.Owner || role.Role(member.Role) == role.Owner) && actorRole != role.Owner {
		return nil, domain.ErrForbidden
	}

	if role.Role(member.Role) == role.Owner && parsed != role.Owner {
		if err := s.ensureSpareOwner(ctx, workspaceID, member.ID); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).UpdateFields(ctx, memberID, map[string]any{
			"role":       parsed.String(),
			"updated_at": now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.counts.Delete(workspaceID)
	s.metrics.RecordRoleChange(ctx, workspaceID.String(), parsed.String())

	actorID := actorUserID.String()
	targetID := memberID.String()
	_ = s.audit.AuditLog(ctx, &workspaceID, string(auditdomain.ActorTypeUser), &actorID,
		auditdomain.ActionMemberRoleChanged, "member", &targetID, map[string]any{
			"previous_role": member.Role,
			"new_role":      parsed.String(),
		})

	s.log.Info("member role changed",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("member_id", memberID.String()),
		zap.String("new_role", parsed.String()),
	)

	member.Role = parsed.String()
	view := domain.MemberView{
		ID:           member.ID,
		WorkspaceID:  member.WorkspaceID,
		UserID:       member.UserID,
		Role:         member.Role,
		Status:       member.Status,
		Department:   member.Department,
		JobTitle:     member.JobTitle,
		InvitedAt:    member.InvitedAt,
		LastActiveAt: member.LastActiveAt,
	}
	out := s.toResponse(view, actorUserID, true, now)
	return &out, nil
}

func (s *service) Remove(ctx context.Context, actorUserID, workspaceID, memberID snowflake.ID) error {
	member, err := s.repo.Get(ctx, workspaceID, memberID)
	if err != nil {
		return err
	}
	if member.UserID == actorUserID {
		return domain.ErrSelfManagement
	}

	actor, err := s.repo.GetByUser(ctx, workspaceID, actorUserID)
	if err != nil {
		return err
	}
	actorRole := role.Role(actor.Role)
	if !actorRole.AtLeast(role.Admin) {
		return domain.ErrForbidden
	}
	if role.Role(member.Role) == role.Owner {
		if actorRole != role.Owner {
			return domain.ErrForbidden
		}
		if err := s.ensureSpareOwner(ctx, workspaceID, member.ID); err != nil {
			return err
		}
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).UpdateFields(ctx, memberID, map[string]any{
			"status":     domain.StatusRemoved,
			"updated_at": now,
		})
	})
	if err != nil {
		return err
	}

	s.counts.Delete(workspaceID)
	s.metrics.RecordMemberRemoved(ctx, workspaceID.String())

	actorID := actorUserID.String()
	targetID := memberID.String()
	_ = s.audit.AuditLog(ctx, &workspaceID, string(auditdomain.ActorTypeUser), &actorID,
		auditdomain.ActionMemberRemoved, "member", &targetID, map[string]any{
			"removed_role": member.Role,
		})

	s.log.Info("member removed",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("member_id", memberID.String()),
	)
	return nil
}

func (s *service) Counts(ctx context.Context, workspaceID snowflake.ID) (domain.MemberCounts, error) {
	if counts, ok := s.counts.Get(workspaceID); ok {
		return counts, nil
	}

	active, err := s.repo.CountByStatus(ctx, workspaceID, domain.StatusActive)
	if err != nil {
		return domain.MemberCounts{}, err
	}
	invited, err := s.repo.CountByStatus(ctx, workspaceID, domain.StatusInvited)
	if err != nil {
		return domain.MemberCounts{}, err
	}

	counts := domain.MemberCounts{
		Active:  int(active),
		Invited: int(invited),
		Total:   int(active + invited),
	}
	s.counts.Set(workspaceID, counts)
	return counts, nil
}

// ensureSpareOwner refuses to demote or remove the only remaining
// owner of a workspace.
func (s *service) ensureSpareOwner(ctx context.Context, workspaceID, excludeMemberID snowflake.ID) error {
	views, err := s.repo.ListViews(ctx, workspaceID)
	if err != nil {
		return err
	}
	for _, v := range views {
		if v.ID != excludeMemberID && v.Role == role.Owner.String() && v.Status == domain.StatusActive {
			return nil
		}
	}
	return domain.ErrLastOwner
}

func (s *service) toResponse(v domain.MemberView, actorUserID snowflake.ID, canManage bool, now time.Time) domain.MemberResponse {
	display := role.ToDisplay(role.Role(v.Role))
	return domain.MemberResponse{
		ID:          v.ID.String(),
		UserID:      v.UserID.String(),
		FirstName:   v.FirstName,
		LastName:    v.LastName,
		Email:       v.Email,
		Role:        v.Role,
		RoleBadge:   display.BadgeVariant,
		RoleLabel:   display.Label,
		Status:      v.Status,
		Department:  v.Department,
		JobTitle:    v.JobTitle,
		Invited:     domain.FormatRelativeTime(v.InvitedAt, now),
		LastActive:  domain.FormatRelativeTime(v.LastActiveAt, now),
		CanManage:   domain.CanManage(canManage, int64(actorUserID), int64(v.UserID)),
		CurrentUser: v.UserID == actorUserID,
	}
}
