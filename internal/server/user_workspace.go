package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	workspacedomain "github.com/researchhub/workspaces/internal/workspace/domain"
)

// ListUserWorkspaces feeds the workspace switcher. The optional q
// parameter narrows results by name.
func (s *Server) ListUserWorkspaces(c *gin.Context) {
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

	workspaces = workspacedomain.FilterForSwitcher(workspaces, c.Query("q"))

	c.JSON(http.StatusOK, gin.H{"workspaces": workspaces})
}

func (s *Server) UseWorkspace(c *gin.Context) {
	session, ok := s.sessionFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	rawWorkspaceID := strings.TrimSpace(c.Param("workspaceId"))
	if rawWorkspaceID == "" {
		AbortWithError(c, newValidationError("workspace_id", "invalid_workspace", "invalid workspace id"))
		return
	}
	parsed, err := snowflake.ParseString(rawWorkspaceID)
	if err != nil {
		AbortWithError(c, newValidationError("workspace_id", "invalid_workspace", "invalid workspace id"))
		return
	}

	ws, err := s.workspaceSvc.Use(c.Request.Context(), session.UserID, parsed.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authsvc.SetActiveWorkspace(c.Request.Context(), session.ID, &parsed); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"workspace": ws})
}
