package attendance

import (
	"github.com/heyyrintu/hrms-sub003/internal/middleware"
	"github.com/heyyrintu/hrms-sub003/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	attendances := r.Group("/attendance")
	attendances.Use(middleware.AuthMiddleware())
	{
		attendances.GET("/facts", middleware.RBACAuthorize(rbacService, "attendance", "read"), handler.GetMonthlyFacts)
	}
}
