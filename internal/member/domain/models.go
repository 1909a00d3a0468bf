// Package domain contains the workspace membership model and the pure
// derivations (search, counts, relative time) built on top of it.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusActive    = "active"
	StatusInvited   = "invited"
	StatusSuspended = "suspended"
	StatusRemoved   = "removed"
)

// WorkspaceMember represents a user's membership in a workspace.
type WorkspaceMember struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	WorkspaceID  snowflake.ID `gorm:"column:workspace_id;not null;index;uniqueIndex:ux_workspace_user,priority:1" json:"workspace_id"`
	UserID       snowflake.ID `gorm:"column:user_id;not null;index;uniqueIndex:ux_workspace_user,priority:2" json:"user_id"`
	Role         string       `gorm:"type:text;not null" json:"role"`
	Status       string       `gorm:"type:text;not null;default:'active'" json:"status"`
	Department   string       `gorm:"type:text" json:"department,omitempty"`
	JobTitle     string       `gorm:"column:job_title;type:text" json:"job_title,omitempty"`
	InvitedAt    *time.Time   `gorm:"column:invited_at" json:"invited_at,omitempty"`
	LastActiveAt *time.Time   `gorm:"column:last_active_at" json:"last_active_at,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (WorkspaceMember) TableName() string { return "workspace_members" }

// MemberView is a member joined with its user profile, the shape every
// list and search operation works over.
type MemberView struct {
	ID           snowflake.ID `json:"id"`
	WorkspaceID  snowflake.ID `json:"workspace_id"`
	UserID       snowflake.ID `json:"user_id"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	Email        string       `json:"email"`
	Role         string       `json:"role"`
	Status       string       `json:"status"`
	Department   string       `json:"department,omitempty"`
	JobTitle     string       `json:"job_title,omitempty"`
	InvitedAt    *time.Time   `json:"invited_at,omitempty"`
	LastActiveAt *time.Time   `json:"last_active_at,omitempty"`
}

// MemberCounts summarizes a member list by status.
type MemberCounts struct {
	Active  int `json:"active"`
	Invited int `json:"invited"`
	Total   int `json:"total"`
}
