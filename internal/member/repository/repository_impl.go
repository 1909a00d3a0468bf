package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/researchhub/workspaces/internal/member/domain"
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

func (r *repository) Create(ctx context.Context, member *domain.WorkspaceMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) Get(ctx context.Context, workspaceID, memberID snowflake.ID) (*domain.WorkspaceMember, error) {
	var member domain.WorkspaceMember
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, memberID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) GetByUser(ctx context.Context, workspaceID, userID snowflake.ID) (*domain.WorkspaceMember, error) {
	var member domain.WorkspaceMember
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) ListViews(ctx context.Context, workspaceID snowflake.ID) ([]domain.MemberView, error) {
	var views []domain.MemberView
	err := r.db.WithContext(ctx).Raw(
		`SELECT m.id, m.workspace_id, m.user_id,
		        COALESCE(u.first_name, '') AS first_name,
		        COALESCE(u.last_name, '') AS last_name,
		        COALESCE(u.email, '') AS email,
		        m.role, m.status, m.department, m.job_title,
		        m.invited_at, m.last_active_at
		 FROM workspace_members m
		 LEFT JOIN users u ON u.id = m.user_id
		 WHERE m.workspace_id = ? AND m.status <> 'removed'
		 ORDER BY m.created_at ASC, m.id ASC`,
		workspaceID,
	).Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *repository) UpdateFields(ctx context.Context, memberID snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.WorkspaceMember{}).
		Where("id = ?", memberID).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (r *repository) CountByStatus(ctx context.Context, workspaceID snowflake.ID, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.WorkspaceMember{}).
		Where("workspace_id = ? AND status = ?", workspaceID, status).
		Count(&count).Error
	return count, err
}
