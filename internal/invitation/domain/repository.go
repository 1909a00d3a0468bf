package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invitation *Invitation) error
	GetByID(ctx context.Context, workspaceID, id snowflake.ID) (*Invitation, error)
	GetByCode(ctx context.Context, code string) (*Invitation, error)
	ListByWorkspace(ctx context.Context, workspaceID snowflake.ID, status string) ([]Invitation, error)
	FindPending(ctx context.Context, workspaceID snowflake.ID, email string) (*Invitation, error)
	CountPending(ctx context.Context, workspaceID snowflake.ID) (int64, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
