package employeesalary

import (
	"github.com/heyyrintu/hrms-sub003/internal/middleware"
	"github.com/heyyrintu/hrms-sub003/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	salaries := r.Group("/employee-salaries")
	salaries.Use(middleware.AuthMiddleware())
	{
		salaries.GET("", middleware.RBACAuthorize(rbacService, "employee_salary", "read"), handler.GetAll)
		salaries.GET("/:id", middleware.RBACAuthorize(rbacService, "employee_salary", "read"), handler.GetById)
		salaries.POST("", middleware.RBACAuthorize(rbacService, "employee_salary", "create"), handler.Create)
		salaries.PUT("/:id", middleware.RBACAuthorize(rbacService, "employee_salary", "update"), handler.Update)
		salaries.POST("/:id/deactivate", middleware.RBACAuthorize(rbacService, "employee_salary", "update"), handler.Deactivate)
		salaries.DELETE("/:id", middleware.RBACAuthorize(rbacService, "employee_salary", "delete"), handler.Delete)
	}
}
