package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"task-board/backend/internal/services"
)

// ContextUserID is the gin context key carrying the authenticated user's ID.
const ContextUserID = "user_id"

// Auth verifies the Bearer token and stores the caller's user ID on the
// context. Requests fail with 401 before any store is touched.
func Auth(tokens services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header is required",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header must use Bearer token",
			})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := tokens.Verify(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Token validation failed",
			})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID reads the authenticated user's ID set by Auth.
func UserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok && userID != ""
}
