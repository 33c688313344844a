package employeesalary_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/heyyrintu/hrms-sub003/internal/employeesalary"
	employeesalaryerrors "github.com/heyyrintu/hrms-sub003/internal/employeesalary/errors"
	"github.com/heyyrintu/hrms-sub003/internal/payrollrun"
	payrollrunerrors "github.com/heyyrintu/hrms-sub003/internal/payrollrun/errors"
	"github.com/heyyrintu/hrms-sub003/internal/salarystructure"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeSalaryRepository struct {
	createFn               func(ctx context.Context, assignment *employeesalary.EmployeeSalary) error
	updateFn               func(ctx context.Context, assignment *employeesalary.EmployeeSalary) error
	findAllByCompanyFn     func(ctx context.Context, companyID string) ([]employeesalary.EmployeeSalary, error)
	findAllByEmployeeFn    func(ctx context.Context, companyID, employeeID string) ([]employeesalary.EmployeeSalary, error)
	findByIDAndCompanyFn   func(ctx context.Context, companyID, id string) (*employeesalary.EmployeeSalary, error)
	findActiveOnDateFn     func(ctx context.Context, companyID, employeeID string, onDate time.Time) (*employeesalary.EmployeeSalary, error)
	hasOverlappingPeriodFn func(ctx context.Context, companyID, employeeID string, from time.Time, to *time.Time, excludeID *string) (bool, error)
	deactivateFn           func(ctx context.Context, companyID, id string) error
	deleteFn               func(ctx context.Context, companyID, id string) error
}

func (f *fakeSalaryRepository) WithTx(tx *sql.Tx) employeesalary.Repository { return f }

func (f *fakeSalaryRepository) Create(ctx context.Context, assignment *employeesalary.EmployeeSalary) error {
	if f.createFn != nil {
		return f.createFn(ctx, assignment)
	}
	return nil
}

func (f *fakeSalaryRepository) Update(ctx context.Context, assignment *employeesalary.EmployeeSalary) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, assignment)
	}
	return nil
}

func (f *fakeSalaryRepository) FindAllByCompany(ctx context.Context, companyID string) ([]employeesalary.EmployeeSalary, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeSalaryRepository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]employeesalary.EmployeeSalary, error) {
	if f.findAllByEmployeeFn != nil {
		return f.findAllByEmployeeFn(ctx, companyID, employeeID)
	}
	return nil, nil
}

func (f *fakeSalaryRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*employeesalary.EmployeeSalary, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSalaryRepository) FindActiveOnDate(ctx context.Context, companyID, employeeID string, onDate time.Time) (*employeesalary.EmployeeSalary, error) {
	if f.findActiveOnDateFn != nil {
		return f.findActiveOnDateFn(ctx, companyID, employeeID, onDate)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSalaryRepository) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, from time.Time, to *time.Time, excludeID *string) (bool, error) {
	if f.hasOverlappingPeriodFn != nil {
		return f.hasOverlappingPeriodFn(ctx, companyID, employeeID, from, to, excludeID)
	}
	return false, nil
}

func (f *fakeSalaryRepository) Deactivate(ctx context.Context, companyID, id string) error {
	if f.deactivateFn != nil {
		return f.deactivateFn(ctx, companyID, id)
	}
	return nil
}

func (f *fakeSalaryRepository) Delete(ctx context.Context, companyID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, companyID, id)
	}
	return nil
}

type fakeStructureRepository struct {
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*salarystructure.SalaryStructure, error)
}

func (f *fakeStructureRepository) WithTx(tx *sql.Tx) salarystructure.Repository { return f }

func (f *fakeStructureRepository) Create(ctx context.Context, structure *salarystructure.SalaryStructure) error {
	return nil
}

func (f *fakeStructureRepository) FindAllByCompany(ctx context.Context, companyID string) ([]salarystructure.SalaryStructure, error) {
	return nil, nil
}

func (f *fakeStructureRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*salarystructure.SalaryStructure, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStructureRepository) ReplaceComponents(ctx context.Context, structure *salarystructure.SalaryStructure, components []salarystructure.StructureComponent) error {
	return nil
}

func (f *fakeStructureRepository) SetActive(ctx context.Context, companyID, id string, active bool) error {
	return nil
}

func (f *fakeStructureRepository) Delete(ctx context.Context, companyID, id string) error {
	return nil
}

func (f *fakeStructureRepository) ActiveAssignmentCount(ctx context.Context, companyID, structureID string) (int64, error) {
	return 0, nil
}

type serviceDeps struct {
	db         *sql.DB
	sqlMock    sqlmock.Sqlmock
	repo       *fakeSalaryRepository
	structures *fakeStructureRepository
	service    employeesalary.Service
}

func setupServiceTest(t *testing.T) serviceDeps {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := &fakeSalaryRepository{}
	structures := &fakeStructureRepository{}
	return serviceDeps{
		db:         db,
		sqlMock:    mock,
		repo:       repo,
		structures: structures,
		service:    employeesalary.NewService(db, repo, structures),
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

func activeStructure(id uuid.UUID, companyID uuid.UUID) *salarystructure.SalaryStructure {
	return &salarystructure.SalaryStructure{
		ID:        id,
		CompanyID: companyID,
		Name:      "Standard",
		IsActive:  true,
		Components: []salarystructure.StructureComponent{
			{
				Name:          "HRA",
				ComponentType: salarystructure.ComponentEarning,
				CalcType:      salarystructure.CalcPercentage,
				Value:         decimal.NewFromInt(40),
				Position:      0,
			},
			{
				Name:          "PF",
				ComponentType: salarystructure.ComponentDeduction,
				CalcType:      salarystructure.CalcFixed,
				Value:         decimal.NewFromInt(180000),
				Position:      1,
			},
		},
	}
}

func TestEmployeeSalaryService_Create(t *testing.T) {
	companyID := uuid.New()
	employeeID := uuid.New()
	structureID := uuid.New()

	validRequest := func() employeesalary.CreateEmployeeSalaryRequest {
		return employeesalary.CreateEmployeeSalaryRequest{
			EmployeeID:        employeeID.String(),
			SalaryStructureID: structureID.String(),
			BasePay:           5000000,
			EffectiveFrom:     "2026-01-01",
		}
	}

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		deps.structures.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*salarystructure.SalaryStructure, error) {
			return activeStructure(structureID, companyID), nil
		}
		deps.repo.createFn = func(ctx context.Context, assignment *employeesalary.EmployeeSalary) error {
			assert.Equal(t, employeeID, assignment.EmployeeID)
			assert.Equal(t, structureID, assignment.SalaryStructureID)
			assert.True(t, assignment.IsActive)
			assert.Nil(t, assignment.EffectiveTo)
			return nil
		}

		resp, err := deps.service.Create(context.Background(), companyID.String(), validRequest())

		assert.NoError(t, err)
		assert.Equal(t, "Standard", resp.StructureName)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("overlapping period", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.structures.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*salarystructure.SalaryStructure, error) {
			return activeStructure(structureID, companyID), nil
		}
		deps.repo.hasOverlappingPeriodFn = func(ctx context.Context, gotCompany, gotEmployee string, from time.Time, to *time.Time, excludeID *string) (bool, error) {
			return true, nil
		}

		_, err := deps.service.Create(context.Background(), companyID.String(), validRequest())

		assert.ErrorIs(t, err, employeesalaryerrors.ErrOverlappingAssignment)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("effective_to before effective_from", func(t *testing.T) {
		deps := setupServiceTest(t)

		req := validRequest()
		to := "2025-12-01"
		req.EffectiveTo = &to

		_, err := deps.service.Create(context.Background(), companyID.String(), req)

		assert.ErrorIs(t, err, employeesalaryerrors.ErrInvalidEffectivePeriod)
	})

	t.Run("inactive structure", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.structures.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*salarystructure.SalaryStructure, error) {
			structure := activeStructure(structureID, companyID)
			structure.IsActive = false
			return structure, nil
		}

		_, err := deps.service.Create(context.Background(), companyID.String(), validRequest())

		assert.ErrorIs(t, err, employeesalaryerrors.ErrStructureNotUsable)
	})

	t.Run("unknown structure", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(context.Background(), companyID.String(), validRequest())

		assert.ErrorIs(t, err, employeesalaryerrors.ErrStructureNotUsable)
	})
}

func TestEmployeeSalaryService_ResolveActive(t *testing.T) {
	companyID := uuid.New()
	employeeID := uuid.New()
	structureID := uuid.New()
	onDate := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("snapshots structure components", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.findActiveOnDateFn = func(ctx context.Context, gotCompany, gotEmployee string, gotDate time.Time) (*employeesalary.EmployeeSalary, error) {
			assert.Equal(t, employeeID.String(), gotEmployee)
			assert.Equal(t, onDate, gotDate)
			return &employeesalary.EmployeeSalary{
				ID:                uuid.New(),
				CompanyID:         companyID,
				EmployeeID:        employeeID,
				SalaryStructureID: structureID,
				BasePay:           5000000,
				EffectiveFrom:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				IsActive:          true,
			}, nil
		}
		deps.structures.findByIDAndCompanyFn = func(ctx context.Context, gotCompany, gotID string) (*salarystructure.SalaryStructure, error) {
			assert.Equal(t, structureID.String(), gotID)
			return activeStructure(structureID, companyID), nil
		}

		resolved, err := deps.service.ResolveActive(context.Background(), companyID.String(), employeeID.String(), onDate)

		assert.NoError(t, err)
		assert.Equal(t, employeeID, resolved.EmployeeID)
		assert.Equal(t, int64(5000000), resolved.BasePay)
		assert.Len(t, resolved.Components, 2)
		assert.Equal(t, payrollrun.ComponentEarning, resolved.Components[0].ComponentType)
		assert.Equal(t, payrollrun.ComponentDeduction, resolved.Components[1].ComponentType)
	})

	t.Run("no active assignment", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.ResolveActive(context.Background(), companyID.String(), employeeID.String(), onDate)

		assert.ErrorIs(t, err, payrollrunerrors.ErrNoActiveAssignment)
	})

	t.Run("assignment points at vanished structure", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.findActiveOnDateFn = func(ctx context.Context, gotCompany, gotEmployee string, gotDate time.Time) (*employeesalary.EmployeeSalary, error) {
			return &employeesalary.EmployeeSalary{
				ID:                uuid.New(),
				CompanyID:         companyID,
				EmployeeID:        employeeID,
				SalaryStructureID: structureID,
				BasePay:           5000000,
				EffectiveFrom:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				IsActive:          true,
			}, nil
		}

		_, err := deps.service.ResolveActive(context.Background(), companyID.String(), employeeID.String(), onDate)

		assert.ErrorIs(t, err, payrollrunerrors.ErrNoActiveAssignment)
	})
}

func TestEmployeeSalaryService_GetAllByEmployee(t *testing.T) {
	companyID := uuid.New()
	employeeID := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.findAllByEmployeeFn = func(ctx context.Context, gotCompany, gotEmployee string) ([]employeesalary.EmployeeSalary, error) {
			return []employeesalary.EmployeeSalary{{
				ID:                uuid.New(),
				CompanyID:         companyID,
				EmployeeID:        employeeID,
				SalaryStructureID: uuid.New(),
				BasePay:           4200000,
				EffectiveFrom:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				IsActive:          true,
			}}, nil
		}

		resp, err := deps.service.GetAllByEmployee(context.Background(), companyID.String(), employeeID.String())

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "2026-01-01", resp[0].EffectiveFrom)
	})

	t.Run("invalid employee id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetAllByEmployee(context.Background(), companyID.String(), "nope")

		assert.ErrorIs(t, err, employeesalaryerrors.ErrAssignmentNotFound)
	})
}
