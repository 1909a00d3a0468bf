package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/researchhub/workspaces/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, workspaceID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return ErrInvalidWorkspace
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, actorType, actorID, err := s.resolveActor(ctx, actor, workspaceID)
	if err != nil {
		s.auditDenied(ctx, actorType, actorID, workspaceID, object, action)
		return err
	}

	dom := fmt.Sprintf("ws:%s", workspaceID)
	if err := s.ensureGrouping(subject, roleName, dom); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, dom, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, actorType, actorID, workspaceID, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, workspaceID string) (string, string, string, *string, error) {
	if actor == "system" {
		return actor, "role:system", "system", nil, nil
	}
	if strings.HasPrefix(actor, "user:") {
		userIDRaw := strings.TrimPrefix(actor, "user:")
		userID, err := snowflake.ParseString(userIDRaw)
		if err != nil || userID == 0 {
			return "", "", "", nil, ErrInvalidActor
		}
		userIDStr := userID.String()
		parsedWorkspaceID, err := snowflake.ParseString(workspaceID)
		if err != nil || parsedWorkspaceID == 0 {
			return actor, "", "user", &userIDStr, ErrInvalidWorkspace
		}
		role, err := s.roleForUser(ctx, parsedWorkspaceID, userID)
		if err != nil {
			return actor, "", "user", &userIDStr, err
		}
		return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), "user", &userIDStr, nil
	}
	return "", "", "", nil, ErrInvalidActor
}

func (s *ServiceImpl) roleForUser(ctx context.Context, workspaceID snowflake.ID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM workspace_members
		 WHERE workspace_id = ? AND user_id = ? AND status = 'active'
		 LIMIT 1`,
		workspaceID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

// ensureGrouping keeps the casbin grouping in sync with the membership
// table, replacing any stale role binding the subject carries in the
// workspace domain.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string, dom string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", dom)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, dom)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, dom)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actorType string, actorID *string, workspaceID string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	parsedWorkspaceID, err := snowflake.ParseString(workspaceID)
	if err != nil || parsedWorkspaceID == 0 {
		return
	}
	targetID := "capability"
	_ = s.auditSvc.AuditLog(ctx, &parsedWorkspaceID, actorType, actorID, "authorization.denied", "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Viewer permissions
		{"role:viewer", ObjectWorkspace, ActionWorkspaceView},
		{"role:viewer", ObjectMember, ActionMemberView},

		// Editor permissions
		{"role:editor", ObjectWorkspace, ActionWorkspaceView},
		{"role:editor", ObjectMember, ActionMemberView},

		// Admin permissions
		{"role:admin", ObjectWorkspace, ActionWorkspaceView},
		{"role:admin", ObjectWorkspace, ActionWorkspaceUpdate},
		{"role:admin", ObjectMember, ActionMemberView},
		{"role:admin", ObjectMember, ActionMemberManage},
		{"role:admin", ObjectMember, ActionMemberRemove},
		{"role:admin", ObjectInvitation, ActionInvitationView},
		{"role:admin", ObjectInvitation, ActionInvitationSend},
		{"role:admin", ObjectInvitation, ActionInvitationRevoke},
		{"role:admin", ObjectAuditLog, ActionAuditLogView},
		{"role:admin", ObjectRoster, ActionRosterExport},

		// Owner permissions
		{"role:owner", ObjectWorkspace, ActionWorkspaceView},
		{"role:owner", ObjectWorkspace, ActionWorkspaceUpdate},
		{"role:owner", ObjectWorkspace, ActionWorkspaceArchive},
		{"role:owner", ObjectMember, ActionMemberView},
		{"role:owner", ObjectMember, ActionMemberManage},
		{"role:owner", ObjectMember, ActionMemberRemove},
		{"role:owner", ObjectInvitation, ActionInvitationView},
		{"role:owner", ObjectInvitation, ActionInvitationSend},
		{"role:owner", ObjectInvitation, ActionInvitationRevoke},
		{"role:owner", ObjectAuditLog, ActionAuditLogView},
		{"role:owner", ObjectRoster, ActionRosterExport},

		// System permissions (background jobs)
		{"role:system", ObjectInvitation, ActionInvitationView},
		{"role:system", ObjectInvitation, ActionInvitationRevoke},
		{"role:system", ObjectAuditLog, ActionAuditLogView},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("authorization.service",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
