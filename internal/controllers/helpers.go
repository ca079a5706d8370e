package controllers

import (
	"strconv"

	"github.com/franciscosanchezn/gin-recipe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
)

// actorFrom returns the caller set by the auth middleware. Anonymous callers
// get a zero UserID.
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		UserID: c.GetUint(middleware.ContextUserID),
		Role:   c.GetString(middleware.ContextUserRole),
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		_ = c.Error(models.NewValidationError("Not a valid id"))
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, target any) bool {
	if err := c.ShouldBindQuery(target); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}
