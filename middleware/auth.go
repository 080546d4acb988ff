package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quizmeai/quizme-backend/utils"
)

// OptionalAuthMiddleware resolves the caller's identity from a Bearer
// token when one is supplied. Requests without a (valid) token pass
// through as anonymous; handlers fall back to an explicit userId field
// or the anonymous default.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Next()
			return
		}

		claims, err := utils.VerifyToken(parts[1])
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}
