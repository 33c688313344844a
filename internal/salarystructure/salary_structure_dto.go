package salarystructure

import "github.com/shopspring/decimal"

type ComponentRequest struct {
	Name          string          `json:"name" binding:"required"`
	ComponentType string          `json:"component_type" binding:"required,oneof=EARNING DEDUCTION"`
	CalcType      string          `json:"calc_type" binding:"required,oneof=PERCENTAGE FIXED"`
	Value         decimal.Decimal `json:"value"`
}

type CreateSalaryStructureRequest struct {
	Name       string             `json:"name" binding:"required"`
	Components []ComponentRequest `json:"components" binding:"required,min=1,dive"`
}

type UpdateSalaryStructureRequest struct {
	Name       string             `json:"name" binding:"required"`
	Components []ComponentRequest `json:"components" binding:"required,min=1,dive"`
}

type ComponentResponse struct {
	Name          string `json:"name"`
	ComponentType string `json:"component_type"`
	CalcType      string `json:"calc_type"`
	Value         string `json:"value"`
}

type SalaryStructureResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	IsActive   bool                `json:"is_active"`
	Components []ComponentResponse `json:"components"`
}
