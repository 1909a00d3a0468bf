// Package domain contains the audit log model and service contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeSystem ActorType = "system"
)

// Audited actions recorded by the membership and invitation flows.
const (
	ActionWorkspaceCreated  = "workspace.created"
	ActionWorkspaceUpdated  = "workspace.updated"
	ActionWorkspaceArchived = "workspace.archived"
	ActionMemberRoleChanged = "member.role_changed"
	ActionMemberRemoved     = "member.removed"
	ActionInvitationSent    = "invitation.sent"
	ActionInvitationAccept  = "invitation.accepted"
	ActionInvitationRevoked = "invitation.revoked"
)

// AuditLog is an immutable record of a state-changing action.
type AuditLog struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	WorkspaceID *snowflake.ID     `gorm:"column:workspace_id;index" json:"workspace_id,omitempty"`
	ActorType   string            `gorm:"column:actor_type;type:text;not null" json:"actor_type"`
	ActorID     *string           `gorm:"column:actor_id;type:text" json:"actor_id,omitempty"`
	Action      string            `gorm:"type:text;not null;index" json:"action"`
	TargetType  string            `gorm:"column:target_type;type:text;not null" json:"target_type"`
	TargetID    *string           `gorm:"column:target_id;type:text" json:"target_id,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	IPAddress   *string           `gorm:"column:ip_address;type:text" json:"ip_address,omitempty"`
	UserAgent   *string           `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }

// AuditCursor identifies a position in the descending audit stream.
type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

// ListFilter narrows an audit log listing.
type ListFilter struct {
	WorkspaceID snowflake.ID
	Action      string
	TargetType  string
	TargetID    string
	ActorType   string
	StartAt     *time.Time
	EndAt       *time.Time
	Cursor      *AuditCursor
	Limit       int
}
