package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	authdomain "github.com/researchhub/workspaces/internal/auth/domain"
	memberdomain "github.com/researchhub/workspaces/internal/member/domain"
	workspacedomain "github.com/researchhub/workspaces/internal/workspace/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureDefaultWorkspace seeds the default workspace for startup
// bootstrap when none exists yet.
func EnsureDefaultWorkspace(db *gorm.DB, name string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureDefaultWorkspaceTx(ctx, tx, node, name)
		return err
	})
}

// EnsureDefaultWorkspaceWithID pins the default workspace to a fixed
// identifier, used when several instances must agree on it.
func EnsureDefaultWorkspaceWithID(db *gorm.DB, name string, id int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if id == 0 {
		return errors.New("seed workspace id is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing workspacedomain.Workspace
		err := tx.WithContext(ctx).Where("id = ?", id).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		ws := workspacedomain.Workspace{
			ID:        snowflake.ID(id),
			Name:      name,
			Slug:      slug.Make(name),
			Status:    "active",
			IsDefault: true,
			Metadata:  datatypes.JSONMap{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.WithContext(ctx).Create(&ws).Error
	})
}

// EnsureDefaultWorkspaceAndOwner seeds the default workspace together
// with an owner account for self-hosted first runs.
func EnsureDefaultWorkspaceAndOwner(db *gorm.DB, name, ownerEmail string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ws, err := ensureDefaultWorkspaceTx(ctx, tx, node, name)
		if err != nil {
			return err
		}

		email := strings.ToLower(strings.TrimSpace(ownerEmail))
		var user authdomain.User
		err = tx.WithContext(ctx).Where("lower(email) = ?", email).First(&user).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			now := time.Now().UTC()
			user = authdomain.User{
				ID:         node.Generate(),
				ExternalID: email,
				Email:      email,
				Metadata:   datatypes.JSONMap{},
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
				return err
			}
		}

		var member memberdomain.WorkspaceMember
		err = tx.WithContext(ctx).
			Where("workspace_id = ? AND user_id = ?", ws.ID, user.ID).
			First(&member).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		member = memberdomain.WorkspaceMember{
			ID:           node.Generate(),
			WorkspaceID:  ws.ID,
			UserID:       user.ID,
			Role:         "owner",
			Status:       memberdomain.StatusActive,
			LastActiveAt: &now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.WithContext(ctx).Create(&member).Error
	})
}

func ensureDefaultWorkspaceTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name string) (*workspacedomain.Workspace, error) {
	var ws workspacedomain.Workspace
	err := tx.WithContext(ctx).Where("is_default = ?", true).First(&ws).Error
	if err == nil {
		return &ws, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	ws = workspacedomain.Workspace{
		ID:        node.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		Status:    "active",
		IsDefault: true,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&ws).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}
