package middleware

import (
	"net/http"
	"strings"

	"tably/internal/shared/config"
	"tably/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Context keys set by the identity middleware. Token issuance belongs to the
// external auth service; this layer only verifies and extracts identity so
// services receive explicit caller/venue parameters instead of ambient state.
const (
	CtxCallerID = "caller_id"
	CtxRole     = "role"
	CtxVenueID  = "venue_id"
)

// Identity verifies the bearer token and threads caller identity and the
// venue scope (X-Venue-ID header) into the request context.
func Identity(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})

		if err != nil || !token.Valid {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, ok := claims["sub"].(string); ok {
				c.Set(CtxCallerID, sub)
			}
			if role, ok := claims["role"].(string); ok {
				c.Set(CtxRole, role)
			}
		}

		venueID := c.GetHeader("X-Venue-ID")
		if venueID == "" {
			response.RespondJSON(c, "error", http.StatusBadRequest, "X-Venue-ID header is required", nil, nil)
			c.Abort()
			return
		}
		c.Set(CtxVenueID, venueID)

		c.Next()
	}
}

// RequireRole checks if the caller has one of the required roles
func RequireRole(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxRole)
		if !exists {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "caller role not found in context", nil, nil)
			c.Abort()
			return
		}

		hasRole := false
		for _, required := range requiredRoles {
			if role.(string) == required {
				hasRole = true
				break
			}
		}

		if !hasRole {
			response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// CallerID extracts the authenticated caller id from the gin context.
func CallerID(c *gin.Context) string {
	if v, ok := c.Get(CtxCallerID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// VenueID extracts the venue scope from the gin context.
func VenueID(c *gin.Context) string {
	if v, ok := c.Get(CtxVenueID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
