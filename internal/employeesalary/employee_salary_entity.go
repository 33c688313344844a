package employeesalary

import (
	"time"

	"github.com/google/uuid"
)

// EmployeeSalary binds an employee to a salary structure and a base pay
// for a bounded effective period. EffectiveTo nil means open-ended. For
// any calendar date at most one active assignment covers an employee.
type EmployeeSalary struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID         uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_employee_salary_effective,priority:1"`
	EmployeeID        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_employee_salary_effective,priority:2"`
	SalaryStructureID uuid.UUID `gorm:"type:uuid;not null;index"`

	// BasePay is in the currency's minor unit.
	BasePay int64 `gorm:"type:bigint;not null;default:0"`

	EffectiveFrom time.Time `gorm:"not null;uniqueIndex:uq_employee_salary_effective,priority:3"`
	EffectiveTo   *time.Time
	IsActive      bool      `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Populated by joined queries only.
	EmployeeName  string `gorm:"->;-:migration"`
	StructureName string `gorm:"->;-:migration"`
}

func (EmployeeSalary) TableName() string {
	return "employee_salaries"
}
