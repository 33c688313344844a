package payrollrun

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayrollRun struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_runs_company_period,unique"`
	Month     int       `gorm:"type:int;not null;index:idx_runs_company_period,unique"`
	Year      int       `gorm:"type:int;not null;index:idx_runs_company_period,unique"`

	Status string `gorm:"type:varchar(20);not null;default:'DRAFT';index"`

	// Financials are stored in the currency's minor unit (e.g. cents)
	// to avoid floating point error.
	TotalGross      int64 `gorm:"type:bigint;not null;default:0"`
	TotalDeductions int64 `gorm:"type:bigint;not null;default:0"`
	TotalNet        int64 `gorm:"type:bigint;not null;default:0"`

	ProcessedCount int     `gorm:"type:int;not null;default:0"`
	ErrorCount     int     `gorm:"type:int;not null;default:0"`
	Remarks        *string `gorm:"type:text"`

	// Workflow & Audit
	CreatedBy           uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy          *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt          *time.Time `gorm:"index"`
	PaidBy              *uuid.UUID `gorm:"type:uuid"`
	PaidAt              *time.Time `gorm:"index"`
	ProcessingStartedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Payslips []Payslip `gorm:"foreignKey:PayrollRunID"`
}

func (PayrollRun) TableName() string {
	return "payroll_runs"
}

type Payslip struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PayrollRunID uuid.UUID `gorm:"type:uuid;not null;index:idx_payslips_run_employee,unique"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;index:idx_payslips_run_employee,unique"`

	PayslipNumber string `gorm:"type:varchar(30);not null"`

	BasePay      int64 `gorm:"type:bigint;not null;default:0"`
	ProRatedBase int64 `gorm:"type:bigint;not null;default:0"`
	WorkingDays  int   `gorm:"type:int;not null;default:0"`
	PresentDays  int   `gorm:"type:int;not null;default:0"`
	LopDays      int   `gorm:"type:int;not null;default:0"`

	OtMinutes int   `gorm:"type:int;not null;default:0"`
	OtPay     int64 `gorm:"type:bigint;not null;default:0"`

	GrossPay        int64 `gorm:"type:bigint;not null;default:0"`
	TotalDeductions int64 `gorm:"type:bigint;not null;default:0"`
	NetPay          int64 `gorm:"type:bigint;not null;default:0"`

	// NetShortfall is the amount by which deductions exceeded gross when
	// net pay was clamped to zero. Zero on a normal payslip.
	NetShortfall int64 `gorm:"type:bigint;not null;default:0"`

	Lines []PayslipLine `gorm:"foreignKey:PayslipID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Payslip) TableName() string {
	return "payslips"
}

// PayslipLine is a deep snapshot of a structure component as it was
// resolved at computation time. Later edits to the live structure never
// touch these rows.
type PayslipLine struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PayslipID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name          string          `gorm:"type:varchar(120);not null"`
	ComponentType string          `gorm:"type:varchar(20);not null"`
	CalcType      string          `gorm:"type:varchar(20);not null"`
	Value         decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Amount        int64           `gorm:"type:bigint;not null;default:0"`
	Position      int             `gorm:"type:int;not null;default:0"`
	CreatedAt     time.Time
}

func (PayslipLine) TableName() string {
	return "payslip_lines"
}

// RunFailure records a per-employee computation failure. One row per
// (run, employee); reprocessing replaces it.
type RunFailure struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PayrollRunID uuid.UUID `gorm:"type:uuid;not null;index:idx_run_failures_run_employee,unique"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;index:idx_run_failures_run_employee,unique"`
	Reason       string    `gorm:"type:varchar(40);not null"`
	Detail       string    `gorm:"type:text"`
	CreatedAt    time.Time
}

func (RunFailure) TableName() string {
	return "payroll_run_failures"
}
