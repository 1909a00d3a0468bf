package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/researchhub/workspaces/internal/invitation/domain"
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

func (r *repository) Create(ctx context.Context, invitation *domain.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *repository) GetByID(ctx context.Context, workspaceID, id snowflake.ID) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.TrimSpace(code)).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *repository) ListByWorkspace(ctx context.Context, workspaceID snowflake.ID, status string) ([]domain.Invitation, error) {
	stmt := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID)
	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}

	var invitations []domain.Invitation
	if err := stmt.Order("created_at ASC, id ASC").Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *repository) FindPending(ctx context.Context, workspaceID snowflake.ID, email string) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND lower(email) = ? AND status = ?",
			workspaceID, strings.ToLower(strings.TrimSpace(email)), domain.StatusPending).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *repository) CountPending(ctx context.Context, workspaceID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("workspace_id = ? AND status = ?", workspaceID, domain.StatusPending).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("id = ?", id).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrInvitationNotFound
	}
	return nil
}

func (r *repository) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("status = ? AND expires_at < ?", domain.StatusPending, cutoff).
		Updates(map[string]any{"status": domain.StatusExpired, "updated_at": cutoff})
	return tx.RowsAffected, tx.Error
}
