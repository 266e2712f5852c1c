package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"counselhub/utils"
)

// Context keys populated by ActorAuthMiddleware.
const (
	ActorIDKey   = "actorID"
	ActorRoleKey = "actorRole"
)

// ActorAuthMiddleware extracts the acting identity from the host-issued
// bearer token and stores it on the request context. Handlers use it to
// attribute status changes and to enforce ownership.
func ActorAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		id, role, err := utils.ExtractActorFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ActorIDKey, id)
		c.Set(ActorRoleKey, role)
		c.Next()
	}
}
