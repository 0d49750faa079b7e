package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/karobar/backend/internal/infrastructure/auth"
	"github.com/karobar/backend/internal/interfaces/http/dto"
)

// Context keys for authenticated request data
const (
	JWTUserIDKey = "jwt_user_id"
	JWTOrgIDKey  = "jwt_org_id"
	JWTClaimsKey = "jwt_claims"
)

// JWTMiddlewareConfig configures the JWT middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// SkipPaths are exact paths that bypass authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that bypass authentication
	SkipPathPrefixes []string
}

// JWTWithConfig validates the Authorization bearer token and stores
// the caller's identity in the request context
func JWTWithConfig(config JWTMiddlewareConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skip[path] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skip[path] {
			c.Next()
			return
		}
		for _, prefix := range config.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Missing or malformed authorization header"))
			return
		}

		claims, err := config.JWTService.ValidateAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Invalid or expired token"))
			return
		}

		userID, err := claims.GetUserUUID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Invalid token claims"))
			return
		}
		orgID, err := claims.GetOrgUUID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Invalid token claims"))
			return
		}

		c.Set(JWTUserIDKey, userID)
		c.Set(JWTOrgIDKey, orgID)
		c.Set(JWTClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// GetJWTUserID returns the authenticated user's ID from the context
func GetJWTUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(JWTUserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// GetJWTOrgID returns the authenticated user's org ID from the context
func GetJWTOrgID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(JWTOrgIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
