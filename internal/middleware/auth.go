package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clusterboard/dashboard-api/internal/handler"
	"github.com/clusterboard/dashboard-api/pkg/token"
)

const (
	ContextUsername = "username"
	ContextToken    = "token"
)

type AuthMiddleware struct {
	tokens     *token.Manager
	cookieName string
}

func NewAuthMiddleware(tokens *token.Manager, cookieName string) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "token"
	}
	return &AuthMiddleware{tokens: tokens, cookieName: cookieName}
}

// Authenticate verifies the session token (Bearer header or session cookie)
// and sets the resolved username in the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := m.extractToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handler.NewErrorResponse("missing authentication token"))
			return
		}

		username, err := m.tokens.Validate(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handler.NewErrorResponse("invalid token"))
			return
		}

		c.Set(ContextUsername, username)
		c.Set(ContextToken, raw)
		c.Next()
	}
}

func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Request.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
