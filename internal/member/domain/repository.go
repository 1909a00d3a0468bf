package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, member *WorkspaceMember) error
	Get(ctx context.Context, workspaceID, memberID snowflake.ID) (*WorkspaceMember, error)
	GetByUser(ctx context.Context, workspaceID, userID snowflake.ID) (*WorkspaceMember, error)
	ListViews(ctx context.Context, workspaceID snowflake.ID) ([]MemberView, error)
	UpdateFields(ctx context.Context, memberID snowflake.ID, fields map[string]any) error
	CountByStatus(ctx context.Context, workspaceID snowflake.ID, status string) (int64, error)
}
