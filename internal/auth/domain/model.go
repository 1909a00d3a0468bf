// Package domain contains core types for session authentication.
// User and session records are provisioned by the external identity
// service; this package only reads and annotates them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// User represents a system user account.
type User struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	ExternalID string            `gorm:"column:external_id;type:text;uniqueIndex"`
	Email      string            `gorm:"column:email;uniqueIndex"`
	FirstName  string            `gorm:"column:first_name;type:text"`
	LastName   string            `gorm:"column:last_name;type:text"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// DisplayName returns the user's full name, falling back to the email
// local part when no name is set.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

// Session represents a persisted login session.
type Session struct {
	ID                snowflake.ID  `gorm:"primaryKey"`
	UserID            snowflake.ID  `gorm:"column:user_id;not null;index"`
	SessionTokenHash  string        `gorm:"column:session_token_hash;type:text;not null;uniqueIndex"`
	ActiveWorkspaceID *snowflake.ID `gorm:"column:active_workspace_id"`
	UserAgent         string        `gorm:"column:user_agent;type:text"`
	IPAddress         string        `gorm:"column:ip_address;type:text"`
	ExpiresAt         time.Time     `gorm:"column:expires_at;not null;index"`
	RevokedAt         *time.Time    `gorm:"column:revoked_at"`
	CreatedAt         time.Time     `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt        time.Time     `gorm:"column:last_seen_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
