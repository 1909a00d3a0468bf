package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Authenticate(ctx context.Context, rawToken string) (*Session, error)
	Logout(ctx context.Context, rawToken string) error
	CurrentUser(ctx context.Context, userID snowflake.ID) (*User, error)
	SetActiveWorkspace(ctx context.Context, sessionID snowflake.ID, workspaceID *snowflake.ID) error
}
