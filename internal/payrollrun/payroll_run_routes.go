package payrollrun

import (
	"github.com/heyyrintu/hrms-sub003/internal/middleware"
	"github.com/heyyrintu/hrms-sub003/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	runs := r.Group("/payroll-runs")
	runs.Use(middleware.AuthMiddleware())
	{
		runs.GET("", middleware.RBACAuthorize(rbacService, "payroll_run", "read"), handler.GetAll)
		runs.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll_run", "read"), handler.GetById)
		runs.GET("/:id/payslips", middleware.RBACAuthorize(rbacService, "payroll_run", "read"), handler.GetPayslips)
		runs.GET("/:id/failures", middleware.RBACAuthorize(rbacService, "payroll_run", "read"), handler.GetFailures)
		if redisClient != nil {
			runs.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "payroll_run", "create"),
				handler.Create,
			)
			runs.POST(
				"/:id/process",
				middleware.RateLimitByIP(0.5, 2),
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "payroll_run", "process"),
				handler.Process,
			)
		} else {
			runs.POST("", middleware.RBACAuthorize(rbacService, "payroll_run", "create"), handler.Create)
			runs.POST(
				"/:id/process",
				middleware.RateLimitByIP(0.5, 2),
				middleware.RBACAuthorize(rbacService, "payroll_run", "process"),
				handler.Process,
			)
		}
		runs.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "payroll_run", "approve"), handler.Approve)
		runs.POST("/:id/mark-paid", middleware.RBACAuthorize(rbacService, "payroll_run", "pay"), handler.MarkAsPaid)
		runs.DELETE("/:id", middleware.RBACAuthorize(rbacService, "payroll_run", "delete"), handler.Delete)
	}

	payslips := r.Group("/payslips")
	payslips.Use(middleware.AuthMiddleware())
	{
		payslips.GET(
			"/employees/:employeeId",
			middleware.RBACAuthorize(rbacService, "payroll_run", "read"),
			handler.GetEmployeePayslips,
		)
	}
}
