package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// LeaveWindow is one approved unpaid leave clipped to the queried
// period, so a leave spanning a month boundary only charges the days
// inside it.
type LeaveWindow struct {
	StartDate time.Time
	EndDate   time.Time
}

// CompTerms is the compensation slice of the employee row plus the base
// pay of the assignment active on the resolution date. Everything the
// overtime rate derivation needs, fetched in one query.
type CompTerms struct {
	EmploymentType string
	HourlyRate     int64
	OtMultiplier   float64
	BasePay        int64
}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CountPresentDays(ctx context.Context, companyID, employeeID string, from, to time.Time) (int, error)
	SumApprovedOtMinutes(ctx context.Context, companyID, employeeID string, from, to time.Time) (int, error)
	ListUnpaidLeaveWindows(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]LeaveWindow, error)
	CompTermsOnDate(ctx context.Context, companyID, employeeID string, onDate time.Time) (*CompTerms, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

// CountPresentDays counts weekdays only, matching the Monday-Friday
// denomination of the monthly working-day count.
func (r *repository) CountPresentDays(ctx context.Context, companyID, employeeID string, from, to time.Time) (int, error) {
	var count int
	query := `
SELECT COUNT(DISTINCT attendance_date)
FROM attendances
WHERE company_id = ?
  AND employee_id = ?
  AND attendance_date BETWEEN ? AND ?
  AND status = ?
  AND EXTRACT(ISODOW FROM attendance_date) < 6
  AND deleted_at IS NULL
`
	err := r.db.WithContext(ctx).Raw(query, companyID, employeeID, from, to, StatusPresent).Scan(&count).Error
	return count, err
}

func (r *repository) SumApprovedOtMinutes(ctx context.Context, companyID, employeeID string, from, to time.Time) (int, error) {
	var minutes int
	query := `
SELECT COALESCE(SUM(minutes), 0)
FROM overtime_records
WHERE company_id = ?
  AND employee_id = ?
  AND work_date BETWEEN ? AND ?
  AND status = ?
`
	err := r.db.WithContext(ctx).Raw(query, companyID, employeeID, from, to, ApprovalApproved).Scan(&minutes).Error
	return minutes, err
}

func (r *repository) ListUnpaidLeaveWindows(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]LeaveWindow, error) {
	var windows []LeaveWindow
	query := `
SELECT
	GREATEST(start_date, ?::date) AS start_date,
	LEAST(end_date, ?::date) AS end_date
FROM leave_records
WHERE company_id = ?
  AND employee_id = ?
  AND leave_type = ?
  AND status = ?
  AND start_date <= ?
  AND end_date >= ?
`
	err := r.db.WithContext(ctx).
		Raw(query, from, to, companyID, employeeID, LeaveTypeUnpaid, ApprovalApproved, to, from).
		Scan(&windows).Error
	return windows, err
}

func (r *repository) CompTermsOnDate(ctx context.Context, companyID, employeeID string, onDate time.Time) (*CompTerms, error) {
	var terms CompTerms
	query := `
SELECT
	employees.employment_type,
	employees.hourly_rate,
	employees.ot_multiplier,
	COALESCE(employee_salaries.base_pay, 0) AS base_pay
FROM employees
LEFT JOIN employee_salaries
	ON employee_salaries.employee_id = employees.id
	AND employee_salaries.is_active = TRUE
	AND employee_salaries.effective_from <= ?
	AND (employee_salaries.effective_to IS NULL OR employee_salaries.effective_to >= ?)
WHERE employees.company_id = ?
  AND employees.id = ?
`
	result := r.db.WithContext(ctx).Raw(query, onDate, onDate, companyID, employeeID).Scan(&terms)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &terms, nil
}
