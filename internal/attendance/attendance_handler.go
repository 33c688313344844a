package attendance

import (
	"net/http"

	"github.com/heyyrintu/hrms-sub003/internal/shared/apperror"
	"github.com/heyyrintu/hrms-sub003/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetMonthlyFacts(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req MonthlyFactsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", err.Error())
		return
	}

	resp, err := h.service.GetMonthlyFacts(c.Request.Context(), companyID, req.EmployeeID, req.Month, req.Year)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
