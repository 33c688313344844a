package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"

	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"

	LeaveTypeAnnual = "ANNUAL"
	LeaveTypeSick   = "SICK"
	LeaveTypeUnpaid = "UNPAID"
)

type Attendance struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID     uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;index"`
	AttendanceDate time.Time      `gorm:"column:attendance_date;type:date;not null;index"`
	ClockIn        time.Time      `gorm:"column:clock_in;type:timestamptz;not null"`
	ClockOut       *time.Time     `gorm:"column:clock_out;type:timestamptz"`
	Status         string         `gorm:"column:status;type:varchar(20);not null;default:PRESENT"`
	Notes          *string        `gorm:"column:notes;type:text"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// OvertimeRecord only counts toward payroll once APPROVED.
type OvertimeRecord struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_overtime_company_status"`
	EmployeeID uuid.UUID  `gorm:"type:uuid;not null;index:idx_overtime_employee_date"`
	WorkDate   time.Time  `gorm:"type:date;not null;index:idx_overtime_employee_date"`
	Minutes    int        `gorm:"type:int;not null"`
	Status     string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_overtime_company_status"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (OvertimeRecord) TableName() string {
	return "overtime_records"
}

type LeaveRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_company_status"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_employee_dates"`

	LeaveType string    `gorm:"type:varchar(30);not null;default:'ANNUAL'"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	TotalDays int       `gorm:"type:int;not null;default:1"`

	Status     string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leaves_company_status"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveRecord) TableName() string {
	return "leave_records"
}
