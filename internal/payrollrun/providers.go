package payrollrun

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Collaborator boundaries. The orchestrator only sees these interfaces;
// the employeesalary and attendance packages provide the concrete
// implementations and are wired in the app registry.

//go:generate mockgen -source=providers.go -destination=mock/providers_mock.go -package=mock

// AssignmentResolver resolves the salary assignment active on the given
// date, with the structure components snapshotted.
type AssignmentResolver interface {
	ResolveActive(ctx context.Context, companyID, employeeID string, onDate time.Time) (*ResolvedAssignment, error)
}

// FactsProvider supplies a month's attendance facts for one employee.
type FactsProvider interface {
	MonthlyFacts(ctx context.Context, companyID, employeeID string, month, year int) (AttendanceFacts, error)
}

// OtRateProvider derives the hourly overtime rate (minor units per hour)
// from the employee's compensation terms as of onDate, so reprocessing
// a past period resolves the same terms the original run did.
type OtRateProvider interface {
	HourlyOtRate(ctx context.Context, companyID, employeeID string, onDate time.Time) (decimal.Decimal, error)
}

// EmployeeDirectory enumerates employees eligible for a run: active on
// the period end date with a covering salary assignment.
type EmployeeDirectory interface {
	ListEligible(ctx context.Context, companyID string, periodEnd time.Time) ([]string, error)
}

// PayslipNumberer issues the human-readable payslip sequence number.
type PayslipNumberer interface {
	NextPayslipNumber(ctx context.Context, companyID string) (string, error)
}
