package employeesalary

type CreateEmployeeSalaryRequest struct {
	EmployeeID        string  `json:"employee_id" binding:"required"`
	SalaryStructureID string  `json:"salary_structure_id" binding:"required"`
	BasePay           int64   `json:"base_pay" binding:"min=0"`
	EffectiveFrom     string  `json:"effective_from" binding:"required"`
	EffectiveTo       *string `json:"effective_to"`
}

type UpdateEmployeeSalaryRequest struct {
	SalaryStructureID string  `json:"salary_structure_id" binding:"required"`
	BasePay           int64   `json:"base_pay" binding:"min=0"`
	EffectiveFrom     string  `json:"effective_from" binding:"required"`
	EffectiveTo       *string `json:"effective_to"`
}

type EmployeeSalaryResponse struct {
	ID                string  `json:"id"`
	EmployeeID        string  `json:"employee_id"`
	EmployeeName      string  `json:"employee_name,omitempty"`
	SalaryStructureID string  `json:"salary_structure_id"`
	StructureName     string  `json:"structure_name,omitempty"`
	BasePay           int64   `json:"base_pay"`
	EffectiveFrom     string  `json:"effective_from"`
	EffectiveTo       *string `json:"effective_to,omitempty"`
	IsActive          bool    `json:"is_active"`
}
