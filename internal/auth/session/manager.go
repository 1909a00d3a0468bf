package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/researchhub/workspaces/internal/config"
)

// DefaultCookieName matches the cookie minted by the identity service.
const DefaultCookieName = "_sid"

// Manager reads and clears the auth session cookie. Minting is owned by
// the external identity service; this service never sets a session value,
// it only authenticates tokens and expires the cookie on logout.
type Manager struct {
	cookieName string
	secure     bool
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{
		cookieName: DefaultCookieName,
		secure:     cfg.AuthCookieSecure,
	}
}

func (m *Manager) CookieName() string {
	return m.cookieName
}

// ReadToken returns the raw session token from the request cookie. A
// present-but-blank cookie is treated as absent.
func (m *Manager) ReadToken(c *gin.Context) (string, bool) {
	token, err := c.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}
	if strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

// Clear expires the session cookie. The attributes must match the ones the
// identity service mints with, otherwise browsers keep the original cookie.
func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}
