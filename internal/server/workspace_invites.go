package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invitationdomain "github.com/researchhub/workspaces/internal/invitation/domain"
)

type inviteMembersRequest struct {
	Invitations []inviteMemberRequest `json:"invitations"`
}

type inviteMemberRequest struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	Message string `json:"message"`
}

func (s *Server) InviteMembers(c *gin.Context) {
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

	var req inviteMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invitations := make([]invitationdomain.InviteRequest, 0, len(req.Invitations))
	for _, invite := range req.Invitations {
		invitations = append(invitations, invitationdomain.InviteRequest{
			Email:   invite.Email,
			Role:    invite.Role,
			Message: invite.Message,
		})
	}

	resp, err := s.invitationSvc.BatchInvite(c.Request.Context(), userID, workspaceID, invitationdomain.BatchInviteRequest{
		Invitations: invitations,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListInvites(c *gin.Context) {
	workspaceID, ok := s.workspaceIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	invites, err := s.invitationSvc.List(c.Request.Context(), workspaceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": invites})
}

func (s *Server) RevokeInvite(c *gin.Context) {
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

	raw := strings.TrimSpace(c.Param("id"))
	invitationID, err := snowflake.ParseString(raw)
	if err != nil || invitationID == 0 {
		AbortWithError(c, newValidationError("id", "invalid_invitation", "invalid invitation id"))
		return
	}

	if err := s.invitationSvc.Revoke(c.Request.Context(), userID, workspaceID, invitationID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) AcceptInvite(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		AbortWithError(c, invitationdomain.ErrInvalidCode)
		return
	}

	result, err := s.invitationSvc.Accept(c.Request.Context(), userID, code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
