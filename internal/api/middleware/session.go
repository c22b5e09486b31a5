package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/service"
)

const (
	SessionHeader     = "X-Session-ID"
	SessionContextKey = "session"
)

var validSessionID = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// SessionMiddleware resolves the shopper's session from X-Session-ID.
// A missing or malformed id starts a new session; the id in use is echoed back in the response header.
func SessionMiddleware(registry *service.SessionRegistry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if !validSessionID.MatchString(id) {
			if id != "" {
				logger.Debug("Ignoring malformed session id", zap.Int("length", len(id)))
			}
			id = uuid.New().String()
		}

		c.Header(SessionHeader, id)
		c.Set(SessionContextKey, registry.Get(id))
		c.Next()
	}
}

// GetSessionFromContext retrieves the session from the Gin context
func GetSessionFromContext(c *gin.Context) (*service.Session, bool) {
	session, exists := c.Get(SessionContextKey)
	if !exists {
		return nil, false
	}

	s, ok := session.(*service.Session)
	return s, ok
}
