package salarystructure

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ComponentEarning   = "EARNING"
	ComponentDeduction = "DEDUCTION"

	CalcPercentage = "PERCENTAGE"
	CalcFixed      = "FIXED"
)

type SalaryStructure struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_structures_company_name,unique"`
	Name      string    `gorm:"type:varchar(120);not null;index:idx_structures_company_name,unique"`
	IsActive  bool      `gorm:"not null;default:true"`

	Components []StructureComponent `gorm:"foreignKey:SalaryStructureID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SalaryStructure) TableName() string {
	return "salary_structures"
}

// StructureComponent order is preserved for display; computation is
// order-independent.
type StructureComponent struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SalaryStructureID uuid.UUID       `gorm:"type:uuid;not null;index"`
	CompanyID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name              string          `gorm:"type:varchar(120);not null"`
	ComponentType     string          `gorm:"type:varchar(20);not null"`
	CalcType          string          `gorm:"type:varchar(20);not null"`
	Value             decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Position          int             `gorm:"type:int;not null;default:0"`
	CreatedAt         time.Time
}

func (StructureComponent) TableName() string {
	return "salary_structure_components"
}
