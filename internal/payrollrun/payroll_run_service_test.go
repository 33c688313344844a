package payrollrun_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/heyyrintu/hrms-sub003/internal/payrollrun"
	payrollrunerrors "github.com/heyyrintu/hrms-sub003/internal/payrollrun/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRunRepository struct {
	mu sync.Mutex

	createRunFn              func(ctx context.Context, run *payrollrun.PayrollRun) error
	findAllByCompanyFn       func(ctx context.Context, companyID string) ([]payrollrun.PayrollRun, error)
	findByIDAndCompanyFn     func(ctx context.Context, companyID, id string) (*payrollrun.PayrollRun, error)
	deleteRunFn              func(ctx context.Context, companyID, id string) (bool, error)
	beginProcessingFn        func(ctx context.Context, companyID, runID string, staleBefore time.Time) (bool, error)
	transitionStatusFn       func(ctx context.Context, companyID, runID, from, to string, patch map[string]any) (bool, error)
	savePayslipFn            func(ctx context.Context, p *payrollrun.Payslip, lines []payrollrun.PayslipLine) error
	listPayslipsByRunFn      func(ctx context.Context, companyID, runID string) ([]payrollrun.Payslip, error)
	listPayslipsByEmployeeFn func(ctx context.Context, companyID, employeeID string) ([]payrollrun.Payslip, error)
	listPayslipEmployeeIDsFn func(ctx context.Context, runID string) ([]string, error)
	deletePayslipsByRunFn    func(ctx context.Context, companyID, runID string) error
	recordFailureFn          func(ctx context.Context, f *payrollrun.RunFailure) error
	clearFailuresFn          func(ctx context.Context, runID string) error
	listFailuresByRunFn      func(ctx context.Context, companyID, runID string) ([]payrollrun.RunFailure, error)

	savedPayslips    []payrollrun.Payslip
	recordedFailures []payrollrun.RunFailure
}

func (f *fakeRunRepository) WithTx(tx *sql.Tx) payrollrun.Repository { return f }

func (f *fakeRunRepository) CreateRun(ctx context.Context, run *payrollrun.PayrollRun) error {
	if f.createRunFn != nil {
		return f.createRunFn(ctx, run)
	}
	return nil
}

func (f *fakeRunRepository) FindAllByCompany(ctx context.Context, companyID string) ([]payrollrun.PayrollRun, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeRunRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*payrollrun.PayrollRun, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRunRepository) DeleteRun(ctx context.Context, companyID, id string) (bool, error) {
	if f.deleteRunFn != nil {
		return f.deleteRunFn(ctx, companyID, id)
	}
	return true, nil
}

func (f *fakeRunRepository) BeginProcessing(ctx context.Context, companyID, runID string, staleBefore time.Time) (bool, error) {
	if f.beginProcessingFn != nil {
		return f.beginProcessingFn(ctx, companyID, runID, staleBefore)
	}
	return true, nil
}

func (f *fakeRunRepository) TransitionStatus(ctx context.Context, companyID, runID, from, to string, patch map[string]any) (bool, error) {
	if f.transitionStatusFn != nil {
		return f.transitionStatusFn(ctx, companyID, runID, from, to, patch)
	}
	return true, nil
}

func (f *fakeRunRepository) SavePayslip(ctx context.Context, p *payrollrun.Payslip, lines []payrollrun.PayslipLine) error {
	if f.savePayslipFn != nil {
		return f.savePayslipFn(ctx, p, lines)
	}
	f.mu.Lock()
	f.savedPayslips = append(f.savedPayslips, *p)
	f.mu.Unlock()
	return nil
}

func (f *fakeRunRepository) ListPayslipsByRun(ctx context.Context, companyID, runID string) ([]payrollrun.Payslip, error) {
	if f.listPayslipsByRunFn != nil {
		return f.listPayslipsByRunFn(ctx, companyID, runID)
	}
	return nil, nil
}

func (f *fakeRunRepository) ListPayslipsByEmployee(ctx context.Context, companyID, employeeID string) ([]payrollrun.Payslip, error) {
	if f.listPayslipsByEmployeeFn != nil {
		return f.listPayslipsByEmployeeFn(ctx, companyID, employeeID)
	}
	return nil, nil
}

func (f *fakeRunRepository) ListPayslipEmployeeIDs(ctx context.Context, runID string) ([]string, error) {
	if f.listPayslipEmployeeIDsFn != nil {
		return f.listPayslipEmployeeIDsFn(ctx, runID)
	}
	return nil, nil
}

func (f *fakeRunRepository) DeletePayslipsByRun(ctx context.Context, companyID, runID string) error {
	if f.deletePayslipsByRunFn != nil {
		return f.deletePayslipsByRunFn(ctx, companyID, runID)
	}
	return nil
}

func (f *fakeRunRepository) RecordFailure(ctx context.Context, failure *payrollrun.RunFailure) error {
	if f.recordFailureFn != nil {
		return f.recordFailureFn(ctx, failure)
	}
	f.mu.Lock()
	f.recordedFailures = append(f.recordedFailures, *failure)
	f.mu.Unlock()
	return nil
}

func (f *fakeRunRepository) ClearFailures(ctx context.Context, runID string) error {
	if f.clearFailuresFn != nil {
		return f.clearFailuresFn(ctx, runID)
	}
	return nil
}

func (f *fakeRunRepository) ListFailuresByRun(ctx context.Context, companyID, runID string) ([]payrollrun.RunFailure, error) {
	if f.listFailuresByRunFn != nil {
		return f.listFailuresByRunFn(ctx, companyID, runID)
	}
	return nil, nil
}

type fakeAssignments struct {
	resolveActiveFn func(ctx context.Context, companyID, employeeID string, onDate time.Time) (*payrollrun.ResolvedAssignment, error)
}

func (f *fakeAssignments) ResolveActive(ctx context.Context, companyID, employeeID string, onDate time.Time) (*payrollrun.ResolvedAssignment, error) {
	if f.resolveActiveFn != nil {
		return f.resolveActiveFn(ctx, companyID, employeeID, onDate)
	}
	return nil, payrollrunerrors.ErrNoActiveAssignment
}

type fakeFacts struct {
	monthlyFactsFn func(ctx context.Context, companyID, employeeID string, month, year int) (payrollrun.AttendanceFacts, error)
}

func (f *fakeFacts) MonthlyFacts(ctx context.Context, companyID, employeeID string, month, year int) (payrollrun.AttendanceFacts, error) {
	if f.monthlyFactsFn != nil {
		return f.monthlyFactsFn(ctx, companyID, employeeID, month, year)
	}
	return payrollrun.AttendanceFacts{WorkingDays: 22, PresentDays: 22}, nil
}

type fakeOtRates struct {
	hourlyOtRateFn func(ctx context.Context, companyID, employeeID string, onDate time.Time) (decimal.Decimal, error)
}

func (f *fakeOtRates) HourlyOtRate(ctx context.Context, companyID, employeeID string, onDate time.Time) (decimal.Decimal, error) {
	if f.hourlyOtRateFn != nil {
		return f.hourlyOtRateFn(ctx, companyID, employeeID, onDate)
	}
	return decimal.NewFromInt(25000), nil
}

type fakeDirectory struct {
	listEligibleFn func(ctx context.Context, companyID string, periodEnd time.Time) ([]string, error)
}

func (f *fakeDirectory) ListEligible(ctx context.Context, companyID string, periodEnd time.Time) ([]string, error) {
	if f.listEligibleFn != nil {
		return f.listEligibleFn(ctx, companyID, periodEnd)
	}
	return nil, nil
}

type fakeNumbers struct {
	mu   sync.Mutex
	next int
}

func (f *fakeNumbers) NextPayslipNumber(ctx context.Context, companyID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return fmt.Sprintf("PAY-%06d", f.next), nil
}

type serviceDeps struct {
	db          *sql.DB
	sqlMock     sqlmock.Sqlmock
	repo        *fakeRunRepository
	assignments *fakeAssignments
	facts       *fakeFacts
	otRates     *fakeOtRates
	directory   *fakeDirectory
	service     payrollrun.Service
}

func setupServiceTest(t *testing.T) serviceDeps {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := &fakeRunRepository{}
	assignments := &fakeAssignments{}
	facts := &fakeFacts{}
	otRates := &fakeOtRates{}
	directory := &fakeDirectory{}

	svc := payrollrun.NewService(db, repo, payrollrun.Providers{
		Assignments: assignments,
		Facts:       facts,
		OtRates:     otRates,
		Directory:   directory,
		Numbers:     &fakeNumbers{},
	}, nil, payrollrun.Config{
		Concurrency: 2,
		FactTimeout: time.Second,
	}, zap.NewNop())

	return serviceDeps{
		db:          db,
		sqlMock:     mock,
		repo:        repo,
		assignments: assignments,
		facts:       facts,
		otRates:     otRates,
		directory:   directory,
		service:     svc,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func standardAssignment(employeeID string) *payrollrun.ResolvedAssignment {
	return &payrollrun.ResolvedAssignment{
		EmployeeID:    uuid.MustParse(employeeID),
		StructureID:   uuid.New(),
		StructureName: "Standard",
		BasePay:       5000000,
		Components: []payrollrun.ComponentSpec{
			{
				Name:          "HRA",
				ComponentType: payrollrun.ComponentEarning,
				CalcType:      payrollrun.CalcPercentage,
				Value:         decimal.NewFromInt(40),
			},
			{
				Name:          "PF",
				ComponentType: payrollrun.ComponentDeduction,
				CalcType:      payrollrun.CalcFixed,
				Value:         decimal.NewFromInt(180000),
			},
		},
	}
}

func TestService_Create(t *testing.T) {
	companyID := uuid.NewString()
	actorID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		deps.repo.createRunFn = func(ctx context.Context, run *payrollrun.PayrollRun) error {
			assert.Equal(t, companyID, run.CompanyID.String())
			assert.Equal(t, payrollrun.StatusDraft, run.Status)
			assert.Equal(t, 3, run.Month)
			assert.Equal(t, 2026, run.Year)
			return nil
		}

		resp, err := deps.service.Create(context.Background(), companyID, actorID, payrollrun.CreateRunRequest{
			Month: 3,
			Year:  2026,
		})

		assert.NoError(t, err)
		assert.Equal(t, payrollrun.StatusDraft, resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("duplicate period", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.createRunFn = func(ctx context.Context, run *payrollrun.PayrollRun) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_runs_company_period"}
		}

		_, err := deps.service.Create(context.Background(), companyID, actorID, payrollrun.CreateRunRequest{
			Month: 3,
			Year:  2026,
		})

		assert.ErrorIs(t, err, payrollrunerrors.ErrRunExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid period", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(context.Background(), companyID, actorID, payrollrun.CreateRunRequest{
			Month: 13,
			Year:  2026,
		})

		assert.ErrorIs(t, err, payrollrunerrors.ErrInvalidPeriod)
	})

	t.Run("invalid company id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(context.Background(), "not-a-uuid", actorID, payrollrun.CreateRunRequest{
			Month: 3,
			Year:  2026,
		})

		assert.ErrorIs(t, err, payrollrunerrors.ErrInvalidCompanyID)
	})
}

func TestService_Process(t *testing.T) {
	companyID := uuid.NewString()
	actorID := uuid.NewString()
	runID := uuid.NewString()

	draftRun := func() *payrollrun.PayrollRun {
		return &payrollrun.PayrollRun{
			ID:        uuid.MustParse(runID),
			CompanyID: uuid.MustParse(companyID),
			Month:     3,
			Year:      2026,
			Status:    payrollrun.StatusDraft,
			CreatedBy: uuid.MustParse(actorID),
		}
	}

	t.Run("partial failure isolation", func(t *testing.T) {
		deps := setupServiceTest(t)

		employees := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
		broken := employees[1]

		computed := false
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			run := draftRun()
			if computed {
				run.Status = payrollrun.StatusComputed
				run.ProcessedCount = 2
				run.ErrorCount = 1
			}
			return run, nil
		}
		deps.directory.listEligibleFn = func(ctx context.Context, gotCompany string, periodEnd time.Time) ([]string, error) {
			assert.Equal(t, 31, periodEnd.Day())
			return employees, nil
		}
		deps.assignments.resolveActiveFn = func(ctx context.Context, gotCompany, employeeID string, onDate time.Time) (*payrollrun.ResolvedAssignment, error) {
			if employeeID == broken {
				return nil, payrollrunerrors.ErrNoActiveAssignment
			}
			return standardAssignment(employeeID), nil
		}
		deps.repo.transitionStatusFn = func(ctx context.Context, gotCompany, gotRun, from, to string, patch map[string]any) (bool, error) {
			computed = true
			assert.Equal(t, payrollrun.StatusProcessing, from)
			assert.Equal(t, payrollrun.StatusComputed, to)
			assert.Equal(t, 2, patch["processed_count"])
			assert.Equal(t, 1, patch["error_count"])
			return true, nil
		}

		resp, err := deps.service.Process(context.Background(), companyID, actorID, runID, false)

		assert.NoError(t, err)
		assert.Equal(t, payrollrun.StatusComputed, resp.Status)
		assert.Equal(t, 2, resp.ProcessedCount)
		assert.Equal(t, 1, resp.ErrorCount)
		assert.Len(t, deps.repo.savedPayslips, 2)
		assert.Len(t, deps.repo.recordedFailures, 1)
		assert.Equal(t, broken, deps.repo.recordedFailures[0].EmployeeID.String())
		assert.Equal(t, "NO_ACTIVE_ASSIGNMENT", deps.repo.recordedFailures[0].Reason)
	})

	t.Run("reprocess skips employees with payslips", func(t *testing.T) {
		deps := setupServiceTest(t)

		done := uuid.NewString()
		pending := uuid.NewString()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			return draftRun(), nil
		}
		deps.repo.listPayslipsByRunFn = func(ctx context.Context, gotCompany, gotRun string) ([]payrollrun.Payslip, error) {
			return []payrollrun.Payslip{{
				EmployeeID:      uuid.MustParse(done),
				GrossPay:        6716667,
				TotalDeductions: 180000,
				NetPay:          6536667,
			}}, nil
		}
		deps.directory.listEligibleFn = func(ctx context.Context, gotCompany string, periodEnd time.Time) ([]string, error) {
			return []string{done, pending}, nil
		}
		deps.assignments.resolveActiveFn = func(ctx context.Context, gotCompany, employeeID string, onDate time.Time) (*payrollrun.ResolvedAssignment, error) {
			assert.NotEqual(t, done, employeeID, "existing payslip must not be recomputed")
			return standardAssignment(employeeID), nil
		}

		var patch map[string]any
		deps.repo.transitionStatusFn = func(ctx context.Context, gotCompany, gotRun, from, to string, got map[string]any) (bool, error) {
			patch = got
			return true, nil
		}

		_, err := deps.service.Process(context.Background(), companyID, actorID, runID, false)

		assert.NoError(t, err)
		assert.Len(t, deps.repo.savedPayslips, 1)
		assert.Equal(t, pending, deps.repo.savedPayslips[0].EmployeeID.String())
		// Totals carry the surviving payslip plus the new one.
		assert.Equal(t, 2, patch["processed_count"])
		assert.Equal(t, int64(6716667)+deps.repo.savedPayslips[0].GrossPay, patch["total_gross"])
	})

	t.Run("reset wipes payslips first", func(t *testing.T) {
		deps := setupServiceTest(t)

		employee := uuid.NewString()
		wiped := false

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			run := draftRun()
			run.Status = payrollrun.StatusComputed
			return run, nil
		}
		deps.repo.deletePayslipsByRunFn = func(ctx context.Context, gotCompany, gotRun string) error {
			wiped = true
			return nil
		}
		deps.repo.listPayslipsByRunFn = func(ctx context.Context, gotCompany, gotRun string) ([]payrollrun.Payslip, error) {
			t.Fatal("reset must not seed totals from old payslips")
			return nil, nil
		}
		deps.directory.listEligibleFn = func(ctx context.Context, gotCompany string, periodEnd time.Time) ([]string, error) {
			return []string{employee}, nil
		}
		deps.assignments.resolveActiveFn = func(ctx context.Context, gotCompany, employeeID string, onDate time.Time) (*payrollrun.ResolvedAssignment, error) {
			return standardAssignment(employeeID), nil
		}

		_, err := deps.service.Process(context.Background(), companyID, actorID, runID, true)

		assert.NoError(t, err)
		assert.True(t, wiped)
		assert.Len(t, deps.repo.savedPayslips, 1)
	})

	t.Run("stale processing run is reclaimed and resumed", func(t *testing.T) {
		deps := setupServiceTest(t)

		done := uuid.NewString()
		pending := uuid.NewString()

		started := time.Now().UTC().Add(-2 * time.Hour)
		computed := false
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			run := draftRun()
			if computed {
				run.Status = payrollrun.StatusComputed
				run.ProcessedCount = 2
				return run, nil
			}
			run.Status = payrollrun.StatusProcessing
			run.ProcessingStartedAt = &started
			return run, nil
		}
		deps.repo.beginProcessingFn = func(ctx context.Context, gotCompany, gotRun string, staleBefore time.Time) (bool, error) {
			// The claim allows taking over rows abandoned longer ago
			// than the stale threshold, 30 minutes by default.
			assert.WithinDuration(t, time.Now().UTC().Add(-30*time.Minute), staleBefore, 5*time.Second)
			assert.True(t, started.Before(staleBefore))
			return true, nil
		}
		deps.repo.listPayslipsByRunFn = func(ctx context.Context, gotCompany, gotRun string) ([]payrollrun.Payslip, error) {
			return []payrollrun.Payslip{{
				EmployeeID:      uuid.MustParse(done),
				GrossPay:        6716667,
				TotalDeductions: 180000,
				NetPay:          6536667,
			}}, nil
		}
		deps.directory.listEligibleFn = func(ctx context.Context, gotCompany string, periodEnd time.Time) ([]string, error) {
			return []string{done, pending}, nil
		}
		deps.assignments.resolveActiveFn = func(ctx context.Context, gotCompany, employeeID string, onDate time.Time) (*payrollrun.ResolvedAssignment, error) {
			assert.NotEqual(t, done, employeeID, "takeover must only resume the unfinished employees")
			return standardAssignment(employeeID), nil
		}
		deps.repo.transitionStatusFn = func(ctx context.Context, gotCompany, gotRun, from, to string, patch map[string]any) (bool, error) {
			computed = true
			assert.Equal(t, 2, patch["processed_count"])
			return true, nil
		}

		resp, err := deps.service.Process(context.Background(), companyID, actorID, runID, false)

		assert.NoError(t, err)
		assert.Equal(t, payrollrun.StatusComputed, resp.Status)
		assert.Len(t, deps.repo.savedPayslips, 1)
		assert.Equal(t, pending, deps.repo.savedPayslips[0].EmployeeID.String())
	})

	t.Run("overtime terms resolve on the period end", func(t *testing.T) {
		deps := setupServiceTest(t)

		employee := uuid.NewString()
		periodEnd := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			return draftRun(), nil
		}
		deps.directory.listEligibleFn = func(ctx context.Context, gotCompany string, gotEnd time.Time) ([]string, error) {
			return []string{employee}, nil
		}
		deps.assignments.resolveActiveFn = func(ctx context.Context, gotCompany, employeeID string, onDate time.Time) (*payrollrun.ResolvedAssignment, error) {
			return standardAssignment(employeeID), nil
		}
		deps.facts.monthlyFactsFn = func(ctx context.Context, gotCompany, gotEmployee string, month, year int) (payrollrun.AttendanceFacts, error) {
			return payrollrun.AttendanceFacts{WorkingDays: 22, PresentDays: 22, ApprovedOtMinutes: 120}, nil
		}
		resolved := false
		deps.otRates.hourlyOtRateFn = func(ctx context.Context, gotCompany, gotEmployee string, onDate time.Time) (decimal.Decimal, error) {
			resolved = true
			assert.Equal(t, periodEnd, onDate)
			return decimal.NewFromInt(25000), nil
		}
		deps.repo.transitionStatusFn = func(ctx context.Context, gotCompany, gotRun, from, to string, patch map[string]any) (bool, error) {
			return true, nil
		}

		_, err := deps.service.Process(context.Background(), companyID, actorID, runID, false)

		assert.NoError(t, err)
		assert.True(t, resolved)
	})

	t.Run("already processing", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			run := draftRun()
			run.Status = payrollrun.StatusProcessing
			return run, nil
		}
		deps.repo.beginProcessingFn = func(ctx context.Context, gotCompany, gotRun string, staleBefore time.Time) (bool, error) {
			return false, nil
		}

		_, err := deps.service.Process(context.Background(), companyID, actorID, runID, false)

		assert.ErrorIs(t, err, payrollrunerrors.ErrRunAlreadyProcessing)
	})

	t.Run("claim refused on terminal status", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			run := draftRun()
			run.Status = payrollrun.StatusPaid
			return run, nil
		}
		deps.repo.beginProcessingFn = func(ctx context.Context, gotCompany, gotRun string, staleBefore time.Time) (bool, error) {
			return false, nil
		}

		_, err := deps.service.Process(context.Background(), companyID, actorID, runID, false)

		assert.ErrorIs(t, err, payrollrunerrors.ErrInvalidStatusTransition)
	})

	t.Run("facts provider failures are per-employee", func(t *testing.T) {
		deps := setupServiceTest(t)

		employee := uuid.NewString()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			return draftRun(), nil
		}
		deps.directory.listEligibleFn = func(ctx context.Context, gotCompany string, periodEnd time.Time) ([]string, error) {
			return []string{employee}, nil
		}
		deps.assignments.resolveActiveFn = func(ctx context.Context, gotCompany, employeeID string, onDate time.Time) (*payrollrun.ResolvedAssignment, error) {
			return standardAssignment(employeeID), nil
		}
		deps.facts.monthlyFactsFn = func(ctx context.Context, gotCompany, employeeID string, month, year int) (payrollrun.AttendanceFacts, error) {
			return payrollrun.AttendanceFacts{}, errors.New("attendance source down")
		}
		deps.repo.transitionStatusFn = func(ctx context.Context, gotCompany, gotRun, from, to string, patch map[string]any) (bool, error) {
			assert.Equal(t, 0, patch["processed_count"])
			assert.Equal(t, 1, patch["error_count"])
			return true, nil
		}

		_, err := deps.service.Process(context.Background(), companyID, actorID, runID, false)

		assert.NoError(t, err)
		assert.Len(t, deps.repo.recordedFailures, 1)
		assert.Equal(t, "FACTS_UNAVAILABLE", deps.repo.recordedFailures[0].Reason)
	})

	t.Run("unknown run id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Process(context.Background(), companyID, actorID, "not-a-uuid", false)

		assert.ErrorIs(t, err, payrollrunerrors.ErrRunNotFound)
	})
}

func TestService_Approve(t *testing.T) {
	companyID := uuid.NewString()
	actorID := uuid.NewString()
	runID := uuid.NewString()

	computedRun := func(errorCount int) *payrollrun.PayrollRun {
		return &payrollrun.PayrollRun{
			ID:             uuid.MustParse(runID),
			CompanyID:      uuid.MustParse(companyID),
			Month:          3,
			Year:           2026,
			Status:         payrollrun.StatusComputed,
			ProcessedCount: 5,
			ErrorCount:     errorCount,
			CreatedBy:      uuid.MustParse(actorID),
		}
	}

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			return computedRun(0), nil
		}
		deps.repo.transitionStatusFn = func(ctx context.Context, gotCompany, gotRun, from, to string, patch map[string]any) (bool, error) {
			assert.Equal(t, payrollrun.StatusComputed, from)
			assert.Equal(t, payrollrun.StatusApproved, to)
			assert.Equal(t, uuid.MustParse(actorID), patch["approved_by"])
			assert.NotNil(t, patch["approved_at"])
			return true, nil
		}

		_, err := deps.service.Approve(context.Background(), companyID, actorID, runID, payrollrun.ApproveRunRequest{})

		assert.NoError(t, err)
	})

	t.Run("blocked by unresolved errors", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			return computedRun(2), nil
		}

		_, err := deps.service.Approve(context.Background(), companyID, actorID, runID, payrollrun.ApproveRunRequest{})

		assert.ErrorIs(t, err, payrollrunerrors.ErrRunHasErrors)
	})

	t.Run("override stamps remarks", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			return computedRun(2), nil
		}
		deps.repo.transitionStatusFn = func(ctx context.Context, gotCompany, gotRun, from, to string, patch map[string]any) (bool, error) {
			remarks, ok := patch["remarks"].(string)
			assert.True(t, ok)
			assert.True(t, strings.Contains(remarks, "2 unresolved employee errors"))
			return true, nil
		}

		_, err := deps.service.Approve(context.Background(), companyID, actorID, runID, payrollrun.ApproveRunRequest{Override: true})

		assert.NoError(t, err)
	})

	t.Run("wrong status", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			run := computedRun(0)
			run.Status = payrollrun.StatusDraft
			return run, nil
		}

		_, err := deps.service.Approve(context.Background(), companyID, actorID, runID, payrollrun.ApproveRunRequest{})

		assert.ErrorIs(t, err, payrollrunerrors.ErrInvalidStatusTransition)
	})
}

func TestService_MarkPaid(t *testing.T) {
	companyID := uuid.NewString()
	actorID := uuid.NewString()
	runID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			return &payrollrun.PayrollRun{
				ID:        uuid.MustParse(runID),
				CompanyID: uuid.MustParse(companyID),
				Status:    payrollrun.StatusApproved,
				CreatedBy: uuid.MustParse(actorID),
			}, nil
		}
		deps.repo.transitionStatusFn = func(ctx context.Context, gotCompany, gotRun, from, to string, patch map[string]any) (bool, error) {
			assert.Equal(t, payrollrun.StatusApproved, from)
			assert.Equal(t, payrollrun.StatusPaid, to)
			assert.Equal(t, uuid.MustParse(actorID), patch["paid_by"])
			return true, nil
		}

		_, err := deps.service.MarkPaid(context.Background(), companyID, actorID, runID)

		assert.NoError(t, err)
	})

	t.Run("not approved yet", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			return &payrollrun.PayrollRun{
				ID:        uuid.MustParse(runID),
				CompanyID: uuid.MustParse(companyID),
				Status:    payrollrun.StatusComputed,
				CreatedBy: uuid.MustParse(actorID),
			}, nil
		}

		_, err := deps.service.MarkPaid(context.Background(), companyID, actorID, runID)

		assert.ErrorIs(t, err, payrollrunerrors.ErrInvalidStatusTransition)
	})
}

func TestService_Delete(t *testing.T) {
	companyID := uuid.NewString()
	runID := uuid.NewString()

	t.Run("draft deletes", func(t *testing.T) {
		deps := setupServiceTest(t)

		deleted := false
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			return &payrollrun.PayrollRun{
				ID:        uuid.MustParse(runID),
				CompanyID: uuid.MustParse(companyID),
				Status:    payrollrun.StatusDraft,
				CreatedBy: uuid.New(),
			}, nil
		}
		deps.repo.deleteRunFn = func(ctx context.Context, gotCompany, gotID string) (bool, error) {
			deleted = true
			return true, nil
		}

		err := deps.service.Delete(context.Background(), companyID, runID)

		assert.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("non-draft refused", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			return &payrollrun.PayrollRun{
				ID:        uuid.MustParse(runID),
				CompanyID: uuid.MustParse(companyID),
				Status:    payrollrun.StatusComputed,
				CreatedBy: uuid.New(),
			}, nil
		}

		err := deps.service.Delete(context.Background(), companyID, runID)

		assert.ErrorIs(t, err, payrollrunerrors.ErrDeleteOnlyDraft)
	})

	t.Run("refused when a concurrent claim wins", func(t *testing.T) {
		deps := setupServiceTest(t)

		// The run reads as DRAFT, but by the time the guarded delete
		// runs another worker has claimed it and no row matches.
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			return &payrollrun.PayrollRun{
				ID:        uuid.MustParse(runID),
				CompanyID: uuid.MustParse(companyID),
				Status:    payrollrun.StatusDraft,
				CreatedBy: uuid.New(),
			}, nil
		}
		deps.repo.deleteRunFn = func(ctx context.Context, gotCompany, gotID string) (bool, error) {
			return false, nil
		}

		err := deps.service.Delete(context.Background(), companyID, runID)

		assert.ErrorIs(t, err, payrollrunerrors.ErrDeleteOnlyDraft)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)

		err := deps.service.Delete(context.Background(), companyID, runID)

		assert.ErrorIs(t, err, payrollrunerrors.ErrRunNotFound)
	})
}

func TestService_GetByID(t *testing.T) {
	companyID := uuid.NewString()
	runID := uuid.NewString()
	employeeID := uuid.New()

	t.Run("includes failures when present", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*payrollrun.PayrollRun, error) {
			return &payrollrun.PayrollRun{
				ID:         uuid.MustParse(runID),
				CompanyID:  uuid.MustParse(companyID),
				Status:     payrollrun.StatusComputed,
				ErrorCount: 1,
				CreatedBy:  uuid.New(),
			}, nil
		}
		deps.repo.listFailuresByRunFn = func(ctx context.Context, gotCompany, gotRun string) ([]payrollrun.RunFailure, error) {
			return []payrollrun.RunFailure{{
				EmployeeID: employeeID,
				Reason:     "NO_ACTIVE_ASSIGNMENT",
				Detail:     "no active salary assignment covers the period",
			}}, nil
		}

		summary, err := deps.service.GetByID(context.Background(), companyID, runID)

		assert.NoError(t, err)
		assert.Len(t, summary.Failures, 1)
		assert.Equal(t, employeeID.String(), summary.Failures[0].EmployeeID)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByID(context.Background(), companyID, runID)

		assert.ErrorIs(t, err, payrollrunerrors.ErrRunNotFound)
	})
}

func TestService_GetEmployeePayslips(t *testing.T) {
	companyID := uuid.NewString()
	employeeID := uuid.New()

	t.Run("maps lines into earnings and deductions", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.listPayslipsByEmployeeFn = func(ctx context.Context, gotCompany, gotEmployee string) ([]payrollrun.Payslip, error) {
			assert.Equal(t, employeeID.String(), gotEmployee)
			return []payrollrun.Payslip{{
				ID:         uuid.New(),
				EmployeeID: employeeID,
				GrossPay:   6716667,
				NetPay:     6536667,
				Lines: []payrollrun.PayslipLine{
					{Name: "HRA", ComponentType: payrollrun.ComponentEarning, CalcType: payrollrun.CalcPercentage, Amount: 2000000},
					{Name: "PF", ComponentType: payrollrun.ComponentDeduction, CalcType: payrollrun.CalcFixed, Amount: 180000},
				},
			}}, nil
		}

		payslips, err := deps.service.GetEmployeePayslips(context.Background(), companyID, employeeID.String())

		assert.NoError(t, err)
		assert.Len(t, payslips, 1)
		assert.Len(t, payslips[0].Earnings, 1)
		assert.Len(t, payslips[0].Deductions, 1)
		assert.Equal(t, "PF", payslips[0].Deductions[0].Name)
	})

	t.Run("invalid employee id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetEmployeePayslips(context.Background(), companyID, "nope")

		assert.ErrorIs(t, err, payrollrunerrors.ErrInvalidEmployeeID)
	})
}

func TestService_GetEmployeePayslips_Cache(t *testing.T) {
	companyID := uuid.NewString()
	employeeID := uuid.NewString()
	cacheKey := payrollrun.EmployeePayslipsKeyPrefix + companyID + ":" + employeeID

	newCachedService := func(t *testing.T, repo *fakeRunRepository) (payrollrun.Service, redismock.ClientMock) {
		t.Helper()

		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		rdb, redisMock := redismock.NewClientMock()
		svc := payrollrun.NewService(db, repo, payrollrun.Providers{
			Assignments: &fakeAssignments{},
			Facts:       &fakeFacts{},
			OtRates:     &fakeOtRates{},
			Directory:   &fakeDirectory{},
			Numbers:     &fakeNumbers{},
		}, rdb, payrollrun.Config{}, zap.NewNop())
		return svc, redisMock
	}

	t.Run("cache hit skips the repository", func(t *testing.T) {
		repo := &fakeRunRepository{
			listPayslipsByEmployeeFn: func(ctx context.Context, gotCompany, gotEmployee string) ([]payrollrun.Payslip, error) {
				t.Fatal("repository must not be hit on a cache hit")
				return nil, nil
			},
		}
		svc, redisMock := newCachedService(t, repo)

		cached := []payrollrun.PayslipResponse{{ID: uuid.NewString(), PayslipNumber: "PAY-000001"}}
		payload, err := json.Marshal(cached)
		assert.NoError(t, err)
		redisMock.ExpectGet(cacheKey).SetVal(string(payload))

		resp, err := svc.GetEmployeePayslips(context.Background(), companyID, employeeID)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "PAY-000001", resp[0].PayslipNumber)
	})

	t.Run("cache miss populates the cache", func(t *testing.T) {
		repo := &fakeRunRepository{
			listPayslipsByEmployeeFn: func(ctx context.Context, gotCompany, gotEmployee string) ([]payrollrun.Payslip, error) {
				return []payrollrun.Payslip{{
					ID:            uuid.New(),
					EmployeeID:    uuid.MustParse(employeeID),
					PayslipNumber: "PAY-000002",
				}}, nil
			},
		}
		svc, redisMock := newCachedService(t, repo)

		redisMock.ExpectGet(cacheKey).RedisNil()
		redisMock.Regexp().ExpectSet(cacheKey, `.*PAY-000002.*`, 5*time.Minute).SetVal("OK")

		resp, err := svc.GetEmployeePayslips(context.Background(), companyID, employeeID)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "PAY-000002", resp[0].PayslipNumber)
	})
}
