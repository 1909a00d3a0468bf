package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) Me(c *gin.Context) {
	session, ok := s.sessionFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.authsvc.CurrentUser(c.Request.Context(), session.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := gin.H{
		"user": gin.H{
			"id":         user.ID.String(),
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"name":       user.DisplayName(),
		},
	}
	if session.ActiveWorkspaceID != nil {
		resp["active_workspace_id"] = session.ActiveWorkspaceID.String()
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) Logout(c *gin.Context) {
	token, ok := s.sessions.ReadToken(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}
