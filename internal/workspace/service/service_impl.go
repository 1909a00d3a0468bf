package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/researchhub/workspaces/internal/clock"
	"github.com/researchhub/workspaces/internal/role"
	"github.com/researchhub/workspaces/internal/workspace/domain"
	"github.com/researchhub/workspaces/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	log   *zap.Logger
	db    *gorm.DB
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(log *zap.Logger, gdb *gorm.DB, repo domain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &service{
		log:   log.Named("workspace.service"),
		db:    gdb,
		repo:  repo,
		genID: genID,
		clock: clk,
	}
}

func (s *service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateWorkspaceRequest) (*domain.WorkspaceResponse, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	wsID := s.genID.Generate()
	ws := domain.Workspace{
		ID:          wsID,
		Name:        name,
		Slug:        slug.Make(name),
		Description: strings.TrimSpace(req.Description),
		Status:      domain.StatusActive,
		Plan:        strings.TrimSpace(req.Plan),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateWorkspace(ctx, ws); err != nil {
			return err
		}
		return repo.AddOwnerMember(ctx, s.genID.Generate(), wsID, userID, now)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrWorkspaceExists
		}
		return nil, err
	}

	s.log.Info("workspace created",
		zap.String("workspace_id", wsID.String()),
		zap.String("owner_user_id", userID.String()),
	)

	return toResponse(&ws), nil
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.WorkspaceResponse, error) {
	wsID, err := parseWorkspaceID(id)
	if err != nil {
		return nil, err
	}

	ws, err := s.repo.GetWorkspace(ctx, wsID)
	if err != nil {
		return nil, err
	}
	return toResponse(ws), nil
}

func (s *service) Update(ctx context.Context, userID snowflake.ID, id string, req domain.UpdateWorkspaceRequest) (*domain.WorkspaceResponse, error) {
	wsID, err := parseWorkspaceID(id)
	if err != nil {
		return nil, err
	}

	if err := s.requireRole(ctx, wsID, userID, role.Admin); err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_at": s.clock.Now()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
		fields["slug"] = slug.Make(name)
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}

	if err := s.repo.UpdateWorkspace(ctx, wsID, fields); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrWorkspaceExists
		}
		return nil, err
	}

	ws, err := s.repo.GetWorkspace(ctx, wsID)
	if err != nil {
		return nil, err
	}
	return toResponse(ws), nil
}

func (s *service) Archive(ctx context.Context, userID snowflake.ID, id string) error {
	wsID, err := parseWorkspaceID(id)
	if err != nil {
		return err
	}

	if err := s.requireRole(ctx, wsID, userID, role.Owner); err != nil {
		return err
	}

	return s.repo.UpdateWorkspace(ctx, wsID, map[string]any{
		"status":     domain.StatusArchived,
		"updated_at": s.clock.Now(),
	})
}

func (s *service) ListByUser(ctx context.Context, userID snowflake.ID) ([]domain.WorkspaceListResponseItem, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	items, err := s.repo.ListWorkspacesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.WorkspaceListResponseItem, 0, len(items))
	for _, item := range items {
		resp = append(resp, domain.WorkspaceListResponseItem{
			ID:          item.ID.String(),
			Name:        item.Name,
			Description: item.Description,
			Status:      item.Status,
			Plan:        item.Plan,
			Role:        item.Role,
			RoleBadge:   role.ToDisplay(role.Role(item.Role)).BadgeVariant,
			MemberCount: item.MemberCount,
			CreatedAt:   item.CreatedAt,
		})
	}

	return resp, nil
}

func (s *service) Use(ctx context.Context, userID snowflake.ID, id string) (*domain.WorkspaceResponse, error) {
	wsID, err := parseWorkspaceID(id)
	if err != nil {
		return nil, err
	}

	member, err := s.repo.IsMember(ctx, wsID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, domain.ErrNotMember
	}

	ws, err := s.repo.GetWorkspace(ctx, wsID)
	if err != nil {
		return nil, err
	}
	return toResponse(ws), nil
}

func (s *service) requireRole(ctx context.Context, wsID, userID snowflake.ID, min role.Role) error {
	memberRole, err := s.repo.MemberRole(ctx, wsID, userID)
	if err != nil {
		return err
	}
	if !role.Role(memberRole).AtLeast(min) {
		return domain.ErrForbidden
	}
	return nil
}

func parseWorkspaceID(id string) (snowflake.ID, error) {
	raw := strings.TrimSpace(id)
	if raw == "" {
		return 0, domain.ErrInvalidWorkspace
	}
	wsID, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, domain.ErrInvalidWorkspace
	}
	return wsID, nil
}

func toResponse(ws *domain.Workspace) *domain.WorkspaceResponse {
	return &domain.WorkspaceResponse{
		ID:          ws.ID.String(),
		Name:        ws.Name,
		Slug:        ws.Slug,
		Description: ws.Description,
		Status:      ws.Status,
		Plan:        ws.Plan,
		CreatedAt:   ws.CreatedAt,
	}
}
