package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	memberdomain "github.com/researchhub/workspaces/internal/member/domain"
)

type changeMemberRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) ListMembers(c *gin.Context) {
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

	resp, err := s.memberSvc.List(c.Request.Context(), userID, workspaceID, memberListRequestFromQuery(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) MemberCounts(c *gin.Context) {
	workspaceID, ok := s.workspaceIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	counts, err := s.memberSvc.Counts(c.Request.Context(), workspaceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func (s *Server) ChangeMemberRole(c *gin.Context) {
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
	memberID, ok := memberIDParam(c)
	if !ok {
		return
	}

	var req changeMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.memberSvc.ChangeRole(c.Request.Context(), userID, workspaceID, memberID, req.Role)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"member": resp})
}

func (s *Server) RemoveMember(c *gin.Context) {
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
	memberID, ok := memberIDParam(c)
	if !ok {
		return
	}

	if err := s.memberSvc.Remove(c.Request.Context(), userID, workspaceID, memberID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func memberListRequestFromQuery(c *gin.Context) memberdomain.ListMembersRequest {
	return memberdomain.ListMembersRequest{
		Query: c.Query("q"),
	}
}

func memberIDParam(c *gin.Context) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	if raw == "" {
		AbortWithError(c, newValidationError("id", "invalid_member", "invalid member id"))
		return 0, false
	}
	parsed, err := snowflake.ParseString(raw)
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_member", "invalid member id"))
		return 0, false
	}
	return parsed, true
}

func formattedNow() string {
	return time.Now().UTC().Format("Jan 2, 2006 15:04 MST")
}
