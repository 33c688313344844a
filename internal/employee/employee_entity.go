package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EmploymentSalaried = "SALARIED"
	EmploymentHourly   = "HOURLY"
)

type Employee struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID `gorm:"type:uuid;not null;index"`
	FullName       string    `gorm:"type:varchar(120);not null"`
	Email          string    `gorm:"type:varchar(120);not null;uniqueIndex:uq_employee_email"`
	EmployeeNumber string    `gorm:"type:varchar(30);not null;uniqueIndex:uq_employee_number"`

	EmploymentType string `gorm:"type:varchar(20);not null;default:'SALARIED'"`

	// HourlyRate is in minor units per hour; only meaningful for hourly
	// staff.
	HourlyRate   int64   `gorm:"type:bigint;not null;default:0"`
	OtMultiplier float64 `gorm:"type:numeric(4,2);not null;default:1.5"`

	IsActive bool      `gorm:"not null;default:true;index"`
	HireDate time.Time `gorm:"type:date;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string {
	return "employees"
}
