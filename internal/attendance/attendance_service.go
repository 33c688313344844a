package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/heyyrintu/hrms-sub003/internal/payrollrun"
	payrollrunerrors "github.com/heyyrintu/hrms-sub003/internal/payrollrun/errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	employmentHourly = "HOURLY"

	// standardMonthlyMinutes is the salaried-staff divisor for deriving
	// an hourly rate from monthly base pay (160 hours).
	standardMonthlyMinutes = 9600

	defaultOtMultiplier = 1.5
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	// MonthlyFacts and HourlyOtRate satisfy the payroll engine's
	// attendance boundary.
	MonthlyFacts(ctx context.Context, companyID, employeeID string, month, year int) (payrollrun.AttendanceFacts, error)
	HourlyOtRate(ctx context.Context, companyID, employeeID string, onDate time.Time) (decimal.Decimal, error)

	GetMonthlyFacts(ctx context.Context, companyID, employeeID string, month, year int) (MonthlyFactsResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

// weekdayCount is the number of Monday-Friday days in the month, the
// working-day convention for monthly payroll here.
func weekdayCount(month, year int) int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return weekdaySpan(first, first.AddDate(0, 1, -1))
}

// weekdaySpan counts the Monday-Friday days between from and to,
// inclusive.
func weekdaySpan(from, to time.Time) int {
	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}

func monthWindow(month, year int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	return from, to
}

func (s *service) MonthlyFacts(
	ctx context.Context,
	companyID, employeeID string,
	month, year int,
) (payrollrun.AttendanceFacts, error) {
	if month < 1 || month > 12 {
		return payrollrun.AttendanceFacts{}, payrollrunerrors.ErrInvalidFacts
	}

	from, to := monthWindow(month, year)

	presentDays, err := s.repo.CountPresentDays(ctx, companyID, employeeID, from, to)
	if err != nil {
		return payrollrun.AttendanceFacts{}, err
	}

	leaveWindows, err := s.repo.ListUnpaidLeaveWindows(ctx, companyID, employeeID, from, to)
	if err != nil {
		return payrollrun.AttendanceFacts{}, err
	}

	// Loss-of-pay days share the Monday-Friday denomination of the
	// working-day count: a leave covering a weekend only charges its
	// weekdays. Counts are reported as stored; the calculator rejects
	// inconsistent facts instead of this layer papering over them.
	lopDays := 0
	for _, w := range leaveWindows {
		lopDays += weekdaySpan(w.StartDate, w.EndDate)
	}

	otMinutes, err := s.repo.SumApprovedOtMinutes(ctx, companyID, employeeID, from, to)
	if err != nil {
		return payrollrun.AttendanceFacts{}, err
	}

	return payrollrun.AttendanceFacts{
		WorkingDays:       weekdayCount(month, year),
		PresentDays:       presentDays,
		LopDays:           lopDays,
		ApprovedOtMinutes: otMinutes,
	}, nil
}

// HourlyOtRate derives the overtime rate from the employee's
// compensation terms as of onDate: hourly staff use their hourly rate,
// salaried staff a rate implied by monthly base pay over standard
// hours, both scaled by the overtime multiplier. Resolving against the
// caller's date rather than the wall clock keeps reprocessing a past
// period deterministic after terms change.
func (s *service) HourlyOtRate(ctx context.Context, companyID, employeeID string, onDate time.Time) (decimal.Decimal, error) {
	terms, err := s.repo.CompTermsOnDate(ctx, companyID, employeeID, onDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, payrollrunerrors.ErrMissingOtRate
		}
		return decimal.Zero, err
	}

	multiplier := decimal.NewFromFloat(terms.OtMultiplier)
	if !multiplier.IsPositive() {
		multiplier = decimal.NewFromFloat(defaultOtMultiplier)
	}

	if terms.EmploymentType == employmentHourly {
		if terms.HourlyRate <= 0 {
			return decimal.Zero, payrollrunerrors.ErrMissingOtRate
		}
		return decimal.NewFromInt(terms.HourlyRate).Mul(multiplier), nil
	}

	if terms.BasePay <= 0 {
		return decimal.Zero, payrollrunerrors.ErrMissingOtRate
	}
	perMinute := decimal.NewFromInt(terms.BasePay).Div(decimal.NewFromInt(standardMonthlyMinutes))
	return perMinute.Mul(decimal.NewFromInt(60)).Mul(multiplier), nil
}

func (s *service) GetMonthlyFacts(
	ctx context.Context,
	companyID, employeeID string,
	month, year int,
) (MonthlyFactsResponse, error) {
	facts, err := s.MonthlyFacts(ctx, companyID, employeeID, month, year)
	if err != nil {
		return MonthlyFactsResponse{}, err
	}

	return MonthlyFactsResponse{
		EmployeeID:        employeeID,
		Month:             month,
		Year:              year,
		WorkingDays:       facts.WorkingDays,
		PresentDays:       facts.PresentDays,
		LopDays:           facts.LopDays,
		ApprovedOtMinutes: facts.ApprovedOtMinutes,
	}, nil
}
