package rbac

import "github.com/gin-gonic/gin"

// RegisterRoutes exposes a single enforcement probe, used by operators
// to check whether a role may run a payroll action before granting it.
func RegisterRoutes(r *gin.Engine, handler *Handler) {
	group := r.Group("/rbac")
	{
		group.POST("/enforce", handler.Enforce)
	}
}
