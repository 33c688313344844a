package attendance

type MonthlyFactsRequest struct {
	EmployeeID string `form:"employee_id" binding:"required"`
	Month      int    `form:"month" binding:"required,min=1,max=12"`
	Year       int    `form:"year" binding:"required,min=2000,max=2100"`
}

type MonthlyFactsResponse struct {
	EmployeeID        string `json:"employee_id"`
	Month             int    `json:"month"`
	Year              int    `json:"year"`
	WorkingDays       int    `json:"working_days"`
	PresentDays       int    `json:"present_days"`
	LopDays           int    `json:"lop_days"`
	ApprovedOtMinutes int    `json:"approved_ot_minutes"`
}
