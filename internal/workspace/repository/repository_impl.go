package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/researchhub/workspaces/internal/role"
	"github.com/researchhub/workspaces/internal/workspace/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateWorkspace(ctx context.Context, ws domain.Workspace) error {
	return r.db.WithContext(ctx).Create(&ws).Error
}

func (r *repository) GetWorkspace(ctx context.Context, id snowflake.ID) (*domain.Workspace, error) {
	var ws domain.Workspace
	err := r.db.WithContext(ctx).First(&ws, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *repository) UpdateWorkspace(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Workspace{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrWorkspaceNotFound
	}
	return nil
}

func (r *repository) AddOwnerMember(ctx context.Context, memberID, workspaceID, userID snowflake.ID, createdAt time.Time) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO workspace_members (id, workspace_id, user_id, role, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'active', ?, ?)`,
		memberID,
		workspaceID,
		userID,
		role.Owner.String(),
		createdAt,
		createdAt,
	).Error
}

func (r *repository) ListWorkspacesByUser(ctx context.Context, userID snowflake.ID) ([]domain.WorkspaceListItem, error) {
	var items []domain.WorkspaceListItem
	err := r.db.WithContext(ctx).Raw(
		`SELECT w.id, w.name, w.description, w.status, w.plan, m.role, w.created_at,
		        (SELECT COUNT(*) FROM workspace_members c
		         WHERE c.workspace_id = w.id AND c.status IN ('active', 'invited')) AS member_count
		 FROM workspaces w
		 JOIN workspace_members m ON m.workspace_id = w.id
		 WHERE m.user_id = ? AND m.status = 'active'
		 ORDER BY w.created_at ASC`,
		userID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *repository) IsMember(ctx context.Context, workspaceID, userID snowflake.ID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM workspace_members
		 WHERE workspace_id = ? AND user_id = ? AND status = 'active'`,
		workspaceID,
		userID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) MemberRole(ctx context.Context, workspaceID, userID snowflake.ID) (string, error) {
	var memberRole string
	err := r.db.WithContext(ctx).Raw(
		`SELECT role FROM workspace_members
		 WHERE workspace_id = ? AND user_id = ? AND status = 'active'`,
		workspaceID,
		userID,
	).Scan(&memberRole).Error
	if err != nil {
		return "", err
	}
	if memberRole == "" {
		return "", domain.ErrNotMember
	}
	return memberRole, nil
}
