package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequireRole is a middleware that checks if the user has the required role.
// It must run after JWTAuth.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewAPIError(http.StatusUnauthorized, "User not authenticated", models.ErrUnauthorized))
			return
		}

		if c.GetString(ContextUserRole) != requiredRole {
			log.WithFields(logrus.Fields{
				"request_id":    c.GetString(ContextRequestID),
				"user_id":       c.GetUint(ContextUserID),
				"user_role":     c.GetString(ContextUserRole),
				"required_role": requiredRole,
			}).Warn("Insufficient permissions")
			c.AbortWithStatusJSON(http.StatusForbidden,
				models.NewAPIError(http.StatusForbidden, "Insufficient permissions", models.ErrForbidden))
			return
		}

		c.Next()
	}
}
