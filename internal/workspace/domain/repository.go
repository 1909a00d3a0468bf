package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// WorkspaceListItem is a workspace joined with the caller's membership.
type WorkspaceListItem struct {
	ID          snowflake.ID
	Name        string
	Description string
	Status      string
	Plan        string
	Role        string
	MemberCount int64
	CreatedAt   time.Time
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateWorkspace(ctx context.Context, ws Workspace) error
	GetWorkspace(ctx context.Context, id snowflake.ID) (*Workspace, error)
	UpdateWorkspace(ctx context.Context, id snowflake.ID, fields map[string]any) error
	AddOwnerMember(ctx context.Context, memberID, workspaceID, userID snowflake.ID, createdAt time.Time) error
	ListWorkspacesByUser(ctx context.Context, userID snowflake.ID) ([]WorkspaceListItem, error)
	IsMember(ctx context.Context, workspaceID, userID snowflake.ID) (bool, error)
	MemberRole(ctx context.Context, workspaceID, userID snowflake.ID) (string, error)
}
