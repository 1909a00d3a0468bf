package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/researchhub/workspaces/internal/providers/pdf"
	workspacedomain "github.com/researchhub/workspaces/internal/workspace/domain"
)

type createWorkspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Plan        string `json:"plan"`
}

type updateWorkspaceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ListWorkspaces feeds the workspace manager table. The optional q
// parameter matches name and description.
func (s *Server) ListWorkspaces(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	workspaces, err := s.workspaceSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	workspaces = workspacedomain.FilterForManager(workspaces, c.Query("q"))

	c.JSON(http.StatusOK, gin.H{"workspaces": workspaces})
}

func (s *Server) CreateWorkspace(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ws, err := s.workspaceSvc.Create(c.Request.Context(), userID, workspacedomain.CreateWorkspaceRequest{
		Name:        req.Name,
		Description: req.Description,
		Plan:        req.Plan,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"workspace": ws})
}

func (s *Server) GetWorkspace(c *gin.Context) {
	workspaceID, ok := workspaceIDParam(c)
	if !ok {
		return
	}

	ws, err := s.workspaceSvc.GetByID(c.Request.Context(), workspaceID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if ws == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"workspace": ws})
}

func (s *Server) UpdateWorkspace(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	workspaceID, ok := workspaceIDParam(c)
	if !ok {
		return
	}

	var req updateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ws, err := s.workspaceSvc.Update(c.Request.Context(), userID, workspaceID.String(), workspacedomain.UpdateWorkspaceRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"workspace": ws})
}

func (s *Server) ArchiveWorkspace(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	workspaceID, ok := workspaceIDParam(c)
	if !ok {
		return
	}

	if err := s.workspaceSvc.Archive(c.Request.Context(), userID, workspaceID.String()); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportMemberRoster renders the current member list as a PDF.
func (s *Server) ExportMemberRoster(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	workspaceID, ok := s.workspaceIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	ws, err := s.workspaceSvc.GetByID(c.Request.Context(), workspaceID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	members, err := s.memberSvc.List(c.Request.Context(), userID, workspaceID, memberListRequestFromQuery(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	roster := pdf.RosterData{
		WorkspaceName: ws.Name,
		GeneratedAt:   formattedNow(),
		ActiveCount:   members.Counts.Active,
		InvitedCount:  members.Counts.Invited,
		TotalCount:    members.Counts.Total,
	}
	for _, m := range members.Members {
		name := strings.TrimSpace(m.FirstName + " " + m.LastName)
		if name == "" {
			name = m.Email
		}
		roster.Members = append(roster.Members, pdf.RosterMember{
			Name:       name,
			Email:      m.Email,
			Role:       m.RoleLabel,
			Status:     m.Status,
			Department: m.Department,
			LastActive: m.LastActive,
		})
	}

	reader, err := s.pdfProvider.GenerateMemberRoster(c.Request.Context(), roster)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "member-roster.pdf"))
	c.Data(http.StatusOK, "application/pdf", data)
}

func workspaceIDParam(c *gin.Context) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	if raw == "" {
		AbortWithError(c, newValidationError("id", "invalid_workspace", "invalid workspace id"))
		return 0, false
	}
	parsed, err := snowflake.ParseString(raw)
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_workspace", "invalid workspace id"))
		return 0, false
	}
	return parsed, true
}
