package salarystructure

import (
	"context"
	"database/sql"
	"fmt"

	salarystructureerrors "github.com/heyyrintu/hrms-sub003/internal/salarystructure/errors"
	"github.com/heyyrintu/hrms-sub003/internal/shared/apperror"

	"github.com/google/uuid"
)

//go:generate mockgen -source=salary_structure_service.go -destination=mock/salary_structure_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateSalaryStructureRequest) (SalaryStructureResponse, error)
	GetAll(ctx context.Context, companyID string) ([]SalaryStructureResponse, error)
	GetByID(ctx context.Context, companyID, id string) (SalaryStructureResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateSalaryStructureRequest) (SalaryStructureResponse, error)
	Deactivate(ctx context.Context, companyID, id string) error
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db   *sql.DB
	repo Repository
}

func NewService(db *sql.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

// validateComponents re-checks the closed unions the binding layer
// already constrained, so callers that bypass HTTP get the same
// guarantees.
func validateComponents(components []ComponentRequest) error {
	for _, c := range components {
		if c.ComponentType != ComponentEarning && c.ComponentType != ComponentDeduction {
			return apperror.Wrap(
				fmt.Errorf("component %q type %q", c.Name, c.ComponentType),
				salarystructureerrors.ErrInvalidComponent.Code,
				salarystructureerrors.ErrInvalidComponent.Message,
				salarystructureerrors.ErrInvalidComponent.HTTPStatus,
			)
		}
		if c.CalcType != CalcPercentage && c.CalcType != CalcFixed {
			return apperror.Wrap(
				fmt.Errorf("component %q calc type %q", c.Name, c.CalcType),
				salarystructureerrors.ErrInvalidComponent.Code,
				salarystructureerrors.ErrInvalidComponent.Message,
				salarystructureerrors.ErrInvalidComponent.HTTPStatus,
			)
		}
		if c.Value.IsNegative() {
			return apperror.Wrap(
				fmt.Errorf("component %q has negative value", c.Name),
				salarystructureerrors.ErrInvalidComponent.Code,
				salarystructureerrors.ErrInvalidComponent.Message,
				salarystructureerrors.ErrInvalidComponent.HTTPStatus,
			)
		}
	}
	return nil
}

func buildComponents(companyID, structureID uuid.UUID, reqs []ComponentRequest) []StructureComponent {
	components := make([]StructureComponent, 0, len(reqs))
	for i, c := range reqs {
		components = append(components, StructureComponent{
			ID:                uuid.New(),
			SalaryStructureID: structureID,
			CompanyID:         companyID,
			Name:              c.Name,
			ComponentType:     c.ComponentType,
			CalcType:          c.CalcType,
			Value:             c.Value,
			Position:          i,
		})
	}
	return components
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateSalaryStructureRequest,
) (SalaryStructureResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return SalaryStructureResponse{}, err
	}
	if err := validateComponents(req.Components); err != nil {
		return SalaryStructureResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryStructureResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	structure := &SalaryStructure{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		Name:      req.Name,
		IsActive:  true,
	}
	structure.Components = buildComponents(companyUUID, structure.ID, req.Components)

	if err := qtx.Create(ctx, structure); err != nil {
		return SalaryStructureResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return SalaryStructureResponse{}, err
	}

	return mapToResponse(*structure), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
) ([]SalaryStructureResponse, error) {
	structures, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(structures), nil
}

func (s *service) GetByID(
	ctx context.Context,
	companyID, id string,
) (SalaryStructureResponse, error) {
	structure, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return SalaryStructureResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*structure), nil
}

// Update replaces the component list wholesale. Runs already computed
// are unaffected: payslips carry their own component snapshots.
func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateSalaryStructureRequest,
) (SalaryStructureResponse, error) {
	if err := validateComponents(req.Components); err != nil {
		return SalaryStructureResponse{}, err
	}

	structure, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return SalaryStructureResponse{}, mapRepositoryError(err)
	}

	structure.Name = req.Name
	components := buildComponents(structure.CompanyID, structure.ID, req.Components)
	if err := s.repo.ReplaceComponents(ctx, structure, components); err != nil {
		return SalaryStructureResponse{}, mapRepositoryError(err)
	}

	structure.Components = components
	return mapToResponse(*structure), nil
}

func (s *service) Deactivate(ctx context.Context, companyID, id string) error {
	if err := s.repo.SetActive(ctx, companyID, id, false); err != nil {
		return mapRepositoryError(err)
	}
	return nil
}

// Delete is refused while any active assignment references the
// structure; such structures can only be deactivated.
func (s *service) Delete(ctx context.Context, companyID, id string) error {
	count, err := s.repo.ActiveAssignmentCount(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if count > 0 {
		return salarystructureerrors.ErrStructureInUse
	}

	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}
	return nil
}

func mapToResponse(structure SalaryStructure) SalaryStructureResponse {
	components := make([]ComponentResponse, 0, len(structure.Components))
	for _, c := range structure.Components {
		components = append(components, ComponentResponse{
			Name:          c.Name,
			ComponentType: c.ComponentType,
			CalcType:      c.CalcType,
			Value:         c.Value.String(),
		})
	}
	return SalaryStructureResponse{
		ID:         structure.ID.String(),
		Name:       structure.Name,
		IsActive:   structure.IsActive,
		Components: components,
	}
}

func mapToListResponse(structures []SalaryStructure) []SalaryStructureResponse {
	res := make([]SalaryStructureResponse, len(structures))
	for i, structure := range structures {
		res[i] = mapToResponse(structure)
	}
	return res
}
