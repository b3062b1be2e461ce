package middleware

import (
	"net/http"

	"campusbook/models"

	"github.com/gin-gonic/gin"
)

// RequireRole gates a route group on the caller's role claim. Must run after
// FirebaseAuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString("role")] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}
