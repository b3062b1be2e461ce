package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"campusbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// cachedIdentity is the verified-token payload kept in the auth cache so
// repeated requests skip a round trip to the identity provider.
type cachedIdentity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// FirebaseAuthMiddleware verifies the caller's Firebase ID token and places
// uid, email and role into the request context. Verified tokens are cached
// in Redis keyed by token hash.
func FirebaseAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		ctx := context.Background()
		cacheKey := utils.AuthCachePrefix + hashToken(tokenString)
		authCache := utils.GetAuthCacheClient()

		if payload, err := authCache.Get(ctx, cacheKey).Result(); err == nil {
			var id cachedIdentity
			if json.Unmarshal([]byte(payload), &id) == nil && id.UID != "" {
				setIdentity(c, id)
				c.Next()
				return
			}
		} else if err != redis.Nil {
			utils.GetLogger().Sugar().Warnf("auth cache unavailable, falling back to verification: %v", err)
		}

		token, err := utils.AuthClient.VerifyIDToken(ctx, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		id := cachedIdentity{UID: token.UID}
		if email, ok := token.Claims["email"].(string); ok {
			id.Email = email
		}
		if role, ok := token.Claims["role"].(string); ok {
			id.Role = role
		}

		if payload, err := json.Marshal(id); err == nil {
			_ = authCache.Set(ctx, cacheKey, payload, utils.AuthCacheTTL).Err()
		}

		setIdentity(c, id)
		c.Next()
	}
}

func setIdentity(c *gin.Context, id cachedIdentity) {
	c.Set("uid", id.UID)
	c.Set("email", id.Email)
	c.Set("role", id.Role)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
