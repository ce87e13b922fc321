// Package middleware contains gin middleware shared across route groups.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sanojDD/Balentine/internal/auth"
	"github.com/sanojDD/Balentine/internal/models"
	"github.com/sanojDD/Balentine/internal/util"
)

// RequireAuth validates the bearer token and stores the authenticated user on
// the request context.
func RequireAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			util.RespondUnauthorized(c, "authentication required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		user, err := authService.ValidateToken(tokenString)
		if err != nil {
			util.RespondUnauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// RequireAdmin ensures the authenticated user is an admin. Must run after
// RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			util.RespondUnauthorized(c, "authentication required")
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			util.RespondForbidden(c, "admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser returns the user set by RequireAuth
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok
}
