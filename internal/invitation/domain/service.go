package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type InviteRequest struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	Message string `json:"message,omitempty"`
}

type BatchInviteRequest struct {
	Invitations []InviteRequest `json:"invitations"`
}

// InviteResult reports the per-email outcome of a batch invite so the
// caller can attribute server-side failures back to individual rows.
type InviteResult struct {
	Email  string `json:"email"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type BatchInviteResponse struct {
	Sent    int            `json:"sent"`
	Results []InviteResult `json:"results"`
}

type InvitationResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	RoleBadge string    `json:"role_badge"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type AcceptResult struct {
	WorkspaceID string `json:"workspace_id"`
	MemberID    string `json:"member_id"`
	Role        string `json:"role"`
}

type Service interface {
	BatchInvite(ctx context.Context, actorUserID, workspaceID snowflake.ID, req BatchInviteRequest) (*BatchInviteResponse, error)
	List(ctx context.Context, workspaceID snowflake.ID) ([]InvitationResponse, error)
	Accept(ctx context.Context, userID snowflake.ID, code string) (*AcceptResult, error)
	Revoke(ctx context.Context, actorUserID, workspaceID, invitationID snowflake.ID) error
	ExpireStale(ctx context.Context) (int64, error)
}

var (
	ErrEmptyBatch         = errors.New("empty_batch")
	ErrBatchTooLarge      = errors.New("batch_too_large")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidCode        = errors.New("invalid_code")
	ErrInvitationNotFound = errors.New("invitation_not_found")
	ErrInvitationExpired  = errors.New("invitation_expired")
	ErrInvitationRevoked  = errors.New("invitation_revoked")
	ErrInvitationAccepted = errors.New("invitation_already_accepted")
	ErrAlreadyMember      = errors.New("already_member")
	ErrAlreadyInvited     = errors.New("already_invited")
	ErrTooManyPending     = errors.New("too_many_pending")
	ErrRateLimited        = errors.New("rate_limited")
	ErrEmailMismatch      = errors.New("email_mismatch")
	ErrForbidden          = errors.New("forbidden")
)
