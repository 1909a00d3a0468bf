package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req CreateWorkspaceRequest) (*WorkspaceResponse, error)
	GetByID(ctx context.Context, id string) (*WorkspaceResponse, error)
	Update(ctx context.Context, userID snowflake.ID, id string, req UpdateWorkspaceRequest) (*WorkspaceResponse, error)
	Archive(ctx context.Context, userID snowflake.ID, id string) error
	ListByUser(ctx context.Context, userID snowflake.ID) ([]WorkspaceListResponseItem, error)
	Use(ctx context.Context, userID snowflake.ID, id string) (*WorkspaceResponse, error)
}

type CreateWorkspaceRequest struct {
	Name        string
	Description string
	Plan        string
}

type UpdateWorkspaceRequest struct {
	Name        *string
	Description *string
}

type WorkspaceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Plan        string    `json:"plan,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type WorkspaceListResponseItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Plan        string    `json:"plan,omitempty"`
	Role        string    `json:"role"`
	RoleBadge   string    `json:"role_badge"`
	MemberCount int64     `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidUser       = errors.New("invalid_user")
	ErrInvalidWorkspace  = errors.New("invalid_workspace")
	ErrWorkspaceNotFound = errors.New("workspace_not_found")
	ErrWorkspaceExists   = errors.New("workspace_exists")
	ErrNotMember         = errors.New("not_member")
	ErrForbidden         = errors.New("forbidden")
)
