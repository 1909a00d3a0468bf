package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/researchhub/workspaces/internal/role"
)

type roleInfo struct {
	Value        string `json:"value"`
	Label        string `json:"label"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	BadgeVariant string `json:"badge_variant"`
}

// ListRoles returns the assignable roles with their display
// attributes, ordered by ascending privilege.
func (s *Server) ListRoles(c *gin.Context) {
	roles := make([]roleInfo, 0, len(role.All))
	for _, r := range role.All {
		display := role.ToDisplay(r)
		roles = append(roles, roleInfo{
			Value:        r.String(),
			Label:        display.Label,
			Description:  display.Description,
			Icon:         display.Icon,
			BadgeVariant: display.BadgeVariant,
		})
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles})
}
