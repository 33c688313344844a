package employeesalary

import (
	"context"
	"database/sql"
	"errors"
	"time"

	employeesalaryerrors "github.com/heyyrintu/hrms-sub003/internal/employeesalary/errors"
	"github.com/heyyrintu/hrms-sub003/internal/payrollrun"
	payrollrunerrors "github.com/heyyrintu/hrms-sub003/internal/payrollrun/errors"
	"github.com/heyyrintu/hrms-sub003/internal/salarystructure"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=employee_salary_service.go -destination=mock/employee_salary_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateEmployeeSalaryRequest) (EmployeeSalaryResponse, error)
	GetAll(ctx context.Context, companyID string) ([]EmployeeSalaryResponse, error)
	GetAllByEmployee(ctx context.Context, companyID, employeeID string) ([]EmployeeSalaryResponse, error)
	GetByID(ctx context.Context, companyID, id string) (EmployeeSalaryResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateEmployeeSalaryRequest) (EmployeeSalaryResponse, error)
	Deactivate(ctx context.Context, companyID, id string) error
	Delete(ctx context.Context, companyID, id string) error

	// ResolveActive satisfies the payroll engine's assignment boundary.
	ResolveActive(ctx context.Context, companyID, employeeID string, onDate time.Time) (*payrollrun.ResolvedAssignment, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	structures salarystructure.Repository
}

func NewService(db *sql.DB, repo Repository, structures salarystructure.Repository) Service {
	return &service{db: db, repo: repo, structures: structures}
}

func parseEffectivePeriod(fromStr string, toStr *string) (time.Time, *time.Time, error) {
	from, err := time.Parse(dateLayout, fromStr)
	if err != nil {
		return time.Time{}, nil, employeesalaryerrors.ErrInvalidEffectivePeriod
	}

	var to *time.Time
	if toStr != nil && *toStr != "" {
		parsed, err := time.Parse(dateLayout, *toStr)
		if err != nil {
			return time.Time{}, nil, employeesalaryerrors.ErrInvalidEffectivePeriod
		}
		if parsed.Before(from) {
			return time.Time{}, nil, employeesalaryerrors.ErrInvalidEffectivePeriod
		}
		to = &parsed
	}

	return from, to, nil
}

func (s *service) usableStructure(ctx context.Context, companyID, structureID string) (*salarystructure.SalaryStructure, error) {
	structure, err := s.structures.FindByIDAndCompany(ctx, companyID, structureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeesalaryerrors.ErrStructureNotUsable
		}
		return nil, err
	}
	if !structure.IsActive {
		return nil, employeesalaryerrors.ErrStructureNotUsable
	}
	return structure, nil
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateEmployeeSalaryRequest,
) (EmployeeSalaryResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}

	from, to, err := parseEffectivePeriod(req.EffectiveFrom, req.EffectiveTo)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}

	structure, err := s.usableStructure(ctx, companyID, req.SalaryStructureID)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, companyID, req.EmployeeID, from, to, nil)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}
	if overlap {
		return EmployeeSalaryResponse{}, employeesalaryerrors.ErrOverlappingAssignment
	}

	assignment := &EmployeeSalary{
		ID:                uuid.New(),
		CompanyID:         companyUUID,
		EmployeeID:        employeeUUID,
		SalaryStructureID: structure.ID,
		BasePay:           req.BasePay,
		EffectiveFrom:     from,
		EffectiveTo:       to,
		IsActive:          true,
	}

	if err := qtx.Create(ctx, assignment); err != nil {
		return EmployeeSalaryResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return EmployeeSalaryResponse{}, err
	}

	assignment.StructureName = structure.Name
	return mapToResponse(*assignment), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
) ([]EmployeeSalaryResponse, error) {
	assignments, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(assignments), nil
}

func (s *service) GetAllByEmployee(
	ctx context.Context,
	companyID, employeeID string,
) ([]EmployeeSalaryResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, employeesalaryerrors.ErrAssignmentNotFound
	}

	assignments, err := s.repo.FindAllByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(assignments), nil
}

func (s *service) GetByID(
	ctx context.Context,
	companyID, id string,
) (EmployeeSalaryResponse, error) {
	assignment, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeSalaryResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*assignment), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateEmployeeSalaryRequest,
) (EmployeeSalaryResponse, error) {
	from, to, err := parseEffectivePeriod(req.EffectiveFrom, req.EffectiveTo)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}

	assignment, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeSalaryResponse{}, mapRepositoryError(err)
	}

	structure, err := s.usableStructure(ctx, companyID, req.SalaryStructureID)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, companyID, assignment.EmployeeID.String(), from, to, &id)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}
	if overlap {
		return EmployeeSalaryResponse{}, employeesalaryerrors.ErrOverlappingAssignment
	}

	assignment.SalaryStructureID = structure.ID
	assignment.BasePay = req.BasePay
	assignment.EffectiveFrom = from
	assignment.EffectiveTo = to

	if err := qtx.Update(ctx, assignment); err != nil {
		return EmployeeSalaryResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return EmployeeSalaryResponse{}, err
	}

	assignment.StructureName = structure.Name
	return mapToResponse(*assignment), nil
}

func (s *service) Deactivate(ctx context.Context, companyID, id string) error {
	if err := s.repo.Deactivate(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}
	return nil
}

// ResolveActive snapshots the assignment and its structure components
// for the payroll engine. The returned value is never re-dereferenced
// against the live structure, so later edits cannot leak into a run.
func (s *service) ResolveActive(
	ctx context.Context,
	companyID, employeeID string,
	onDate time.Time,
) (*payrollrun.ResolvedAssignment, error) {
	assignment, err := s.repo.FindActiveOnDate(ctx, companyID, employeeID, onDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollrunerrors.ErrNoActiveAssignment
		}
		return nil, err
	}

	structure, err := s.structures.FindByIDAndCompany(ctx, companyID, assignment.SalaryStructureID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollrunerrors.ErrNoActiveAssignment
		}
		return nil, err
	}

	components := make([]payrollrun.ComponentSpec, 0, len(structure.Components))
	for _, c := range structure.Components {
		components = append(components, payrollrun.ComponentSpec{
			Name:          c.Name,
			ComponentType: c.ComponentType,
			CalcType:      c.CalcType,
			Value:         c.Value,
		})
	}

	return &payrollrun.ResolvedAssignment{
		EmployeeID:    assignment.EmployeeID,
		StructureID:   structure.ID,
		StructureName: structure.Name,
		BasePay:       assignment.BasePay,
		Components:    components,
	}, nil
}

func mapToResponse(assignment EmployeeSalary) EmployeeSalaryResponse {
	resp := EmployeeSalaryResponse{
		ID:                assignment.ID.String(),
		EmployeeID:        assignment.EmployeeID.String(),
		EmployeeName:      assignment.EmployeeName,
		SalaryStructureID: assignment.SalaryStructureID.String(),
		StructureName:     assignment.StructureName,
		BasePay:           assignment.BasePay,
		EffectiveFrom:     assignment.EffectiveFrom.Format(dateLayout),
		IsActive:          assignment.IsActive,
	}
	if assignment.EffectiveTo != nil {
		v := assignment.EffectiveTo.Format(dateLayout)
		resp.EffectiveTo = &v
	}
	return resp
}

func mapToListResponse(assignments []EmployeeSalary) []EmployeeSalaryResponse {
	res := make([]EmployeeSalaryResponse, len(assignments))
	for i, assignment := range assignments {
		res[i] = mapToResponse(assignment)
	}
	return res
}
