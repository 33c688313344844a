package payrollrun

type CreateRunRequest struct {
	Month   int     `json:"month" binding:"required,min=1,max=12"`
	Year    int     `json:"year" binding:"required,min=2000,max=2100"`
	Remarks *string `json:"remarks"`
}

type ApproveRunRequest struct {
	// Override approves despite unresolved per-employee errors. The
	// override is recorded in the run remarks.
	Override bool    `json:"override"`
	Remarks  *string `json:"remarks"`
}

type RunResponse struct {
	ID              string  `json:"id"`
	CompanyID       string  `json:"company_id"`
	Month           int     `json:"month"`
	Year            int     `json:"year"`
	Status          string  `json:"status"`
	TotalGross      int64   `json:"total_gross"`
	TotalDeductions int64   `json:"total_deductions"`
	TotalNet        int64   `json:"total_net"`
	ProcessedCount  int     `json:"processed_count"`
	ErrorCount      int     `json:"error_count"`
	Remarks         *string `json:"remarks,omitempty"`
	CreatedBy       string  `json:"created_by"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	PaidBy          *string `json:"paid_by,omitempty"`
	PaidAt          *string `json:"paid_at,omitempty"`
}

type PayslipLineResponse struct {
	Name          string `json:"name"`
	ComponentType string `json:"component_type"`
	CalcType      string `json:"calc_type"`
	Value         string `json:"value"`
	Amount        int64  `json:"amount"`
}

type PayslipResponse struct {
	ID              string                `json:"id"`
	PayrollRunID    string                `json:"payroll_run_id"`
	EmployeeID      string                `json:"employee_id"`
	PayslipNumber   string                `json:"payslip_number"`
	BasePay         int64                 `json:"base_pay"`
	ProRatedBase    int64                 `json:"pro_rated_base"`
	WorkingDays     int                   `json:"working_days"`
	PresentDays     int                   `json:"present_days"`
	LopDays         int                   `json:"lop_days"`
	OtMinutes       int                   `json:"ot_minutes"`
	OtPay           int64                 `json:"ot_pay"`
	Earnings        []PayslipLineResponse `json:"earnings"`
	Deductions      []PayslipLineResponse `json:"deductions"`
	GrossPay        int64                 `json:"gross_pay"`
	TotalDeductions int64                 `json:"total_deductions"`
	NetPay          int64                 `json:"net_pay"`
	NetShortfall    int64                 `json:"net_shortfall,omitempty"`
}

type RunFailureResponse struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
	Detail     string `json:"detail,omitempty"`
}

type RunSummaryResponse struct {
	Run      RunResponse          `json:"run"`
	Failures []RunFailureResponse `json:"failures,omitempty"`
}
