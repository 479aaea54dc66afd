package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookswap/internal/services"
)

// Context keys for the authenticated caller.
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyToken  = "auth_token"
)

// Middleware authenticates API requests with bearer tokens.
type Middleware struct {
	service *Service
}

func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireAuth rejects requests without a valid, unrevoked bearer token.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}

		claims, err := m.service.Authenticate(c.Request.Context(), token)
		if err != nil {
			if services.IsKind(err, services.KindUnauthorized) {
				abortUnauthorized(c, "Invalid or expired token")
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "internal server error",
				"code":  services.KindInternal,
			})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyToken, token)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
		"code":  services.KindUnauthorized,
	})
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetUserID returns the authenticated user's ID, or "" outside RequireAuth.
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// GetToken returns the bearer token the request was authenticated with.
func GetToken(c *gin.Context) string {
	return c.GetString(ContextKeyToken)
}

// GetClientInfo extracts the caller's address and user agent.
func GetClientInfo(c *gin.Context) ClientInfo {
	return ClientInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
