package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quickscan-service/auth"
	"quickscan-service/config"
	"quickscan-service/utils"
)

// AuthMiddleware validates the bearer token and injects the user into
// both the gin context and the request context, where the engine's
// identity provider picks it up.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		user, err := utils.ParseToken(tokenString, cfg.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user", user)
		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), user))
		c.Next()
	}
}
