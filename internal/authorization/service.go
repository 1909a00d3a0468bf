package authorization

import (
	"context"
	"errors"
)

// Objects are the resource kinds guarded by workspace roles.
const (
	ObjectWorkspace  = "workspace"
	ObjectMember     = "member"
	ObjectInvitation = "invitation"
	ObjectAuditLog   = "audit_log"
	ObjectRoster     = "roster"
)

const (
	ActionWorkspaceView    = "workspace.view"
	ActionWorkspaceUpdate  = "workspace.update"
	ActionWorkspaceArchive = "workspace.archive"

	ActionMemberView   = "member.view"
	ActionMemberManage = "member.manage"
	ActionMemberRemove = "member.remove"

	ActionInvitationView   = "invitation.view"
	ActionInvitationSend   = "invitation.send"
	ActionInvitationRevoke = "invitation.revoke"

	ActionAuditLogView = "audit_log.view"

	ActionRosterExport = "roster.export"
)

type Service interface {
	// Authorize checks whether actor may perform action on object
	// within the given workspace. Actors are "user:<id>" or "system".
	Authorize(ctx context.Context, actor string, workspaceID string, object string, action string) error
}

var (
	ErrInvalidActor     = errors.New("invalid_actor")
	ErrInvalidWorkspace = errors.New("invalid_workspace")
	ErrInvalidObject    = errors.New("invalid_object")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrForbidden        = errors.New("forbidden")
)
