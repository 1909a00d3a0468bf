// Package domain contains persistence models for the workspace service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Workspace represents a tenant that owns members and studies.
type Workspace struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Slug        string            `gorm:"type:text;not null;uniqueIndex:ux_workspaces_slug" json:"slug"`
	Description string            `gorm:"type:text" json:"description"`
	Status      string            `gorm:"type:text;not null;default:'active'" json:"status"`
	Plan        string            `gorm:"type:text" json:"plan"`
	IsDefault   bool              `gorm:"column:is_default" json:"is_default"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Workspace) TableName() string { return "workspaces" }
