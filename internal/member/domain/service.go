package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	List(ctx context.Context, actorUserID, workspaceID snowflake.ID, req ListMembersRequest) (*MemberListResponse, error)
	ChangeRole(ctx context.Context, actorUserID, workspaceID, memberID snowflake.ID, newRole string) (*MemberResponse, error)
	Remove(ctx context.Context, actorUserID, workspaceID, memberID snowflake.ID) error
	Counts(ctx context.Context, workspaceID snowflake.ID) (MemberCounts, error)
}

type ListMembersRequest struct {
	Query string
}

// MemberResponse is a member row shaped for rendering, with badge and
// relative-time fields precomputed.
type MemberResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	RoleBadge   string `json:"role_badge"`
	RoleLabel   string `json:"role_label"`
	Status      string `json:"status"`
	Department  string `json:"department,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
	Invited     string `json:"invited"`
	LastActive  string `json:"last_active"`
	CanManage   bool   `json:"can_manage"`
	CurrentUser bool   `json:"current_user"`
}

type MemberListResponse struct {
	Members []MemberResponse `json:"members"`
	Pending []MemberResponse `json:"pending"`
	Counts  MemberCounts     `json:"counts"`
}

var (
	ErrMemberNotFound = errors.New("member_not_found")
	ErrInvalidRole    = errors.New("invalid_role")
	ErrSelfManagement = errors.New("self_management_not_allowed")
	ErrLastOwner      = errors.New("last_owner")
	ErrForbidden      = errors.New("forbidden")
)
