// Package domain contains the invitation model and service contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRevoked  = "revoked"
	StatusExpired  = "expired"
)

// Invitation tracks a pending invite into a workspace.
type Invitation struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	WorkspaceID snowflake.ID      `gorm:"column:workspace_id;not null;index" json:"workspace_id"`
	Email       string            `gorm:"type:text;not null;index" json:"email"`
	Role        string            `gorm:"type:text;not null" json:"role"`
	Code        string            `gorm:"type:text;not null;uniqueIndex:ux_invitations_code" json:"-"`
	Status      string            `gorm:"type:text;not null;index" json:"status"`
	Message     string            `gorm:"type:text" json:"message,omitempty"`
	InvitedBy   snowflake.ID      `gorm:"column:invited_by;not null;index" json:"invited_by"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	ExpiresAt   time.Time         `gorm:"column:expires_at;not null;index" json:"expires_at"`
	AcceptedAt  *time.Time        `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	RevokedAt   *time.Time        `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invitation) TableName() string { return "workspace_invitations" }
