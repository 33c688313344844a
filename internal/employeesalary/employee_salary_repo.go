package employeesalary

import (
	"context"
	"database/sql"
	"time"

	"github.com/heyyrintu/hrms-sub003/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_salary_repo.go -destination=mock/employee_salary_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, assignment *EmployeeSalary) error
	Update(ctx context.Context, assignment *EmployeeSalary) error
	FindAllByCompany(ctx context.Context, companyID string) ([]EmployeeSalary, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]EmployeeSalary, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*EmployeeSalary, error)
	FindActiveOnDate(ctx context.Context, companyID, employeeID string, onDate time.Time) (*EmployeeSalary, error)
	HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, from time.Time, to *time.Time, excludeID *string) (bool, error)
	Deactivate(ctx context.Context, companyID, id string) error
	Delete(ctx context.Context, companyID string, id string) error
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

func (r *repository) Create(ctx context.Context, assignment *EmployeeSalary) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *repository) Update(ctx context.Context, assignment *EmployeeSalary) error {
	return r.db.WithContext(ctx).
		Model(&EmployeeSalary{}).
		Where("id = ? AND company_id = ?", assignment.ID, assignment.CompanyID).
		Updates(map[string]any{
			"salary_structure_id": assignment.SalaryStructureID,
			"base_pay":            assignment.BasePay,
			"effective_from":      assignment.EffectiveFrom,
			"effective_to":        assignment.EffectiveTo,
			"is_active":           assignment.IsActive,
		}).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]EmployeeSalary, error) {
	var assignments []EmployeeSalary
	query := `
SELECT
	employee_salaries.*,
	employees.full_name AS employee_name,
	salary_structures.name AS structure_name
FROM employee_salaries
JOIN employees ON employees.id = employee_salaries.employee_id
JOIN salary_structures ON salary_structures.id = employee_salaries.salary_structure_id
WHERE employee_salaries.company_id = ?
ORDER BY
	employees.full_name ASC,
	employee_salaries.effective_from DESC
`

	err := r.db.WithContext(ctx).Raw(query, companyID).Scan(&assignments).Error
	return assignments, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]EmployeeSalary, error) {
	var assignments []EmployeeSalary
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("effective_from DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*EmployeeSalary, error) {
	var assignment EmployeeSalary
	err := r.db.WithContext(ctx).
		Table("employee_salaries").
		Select("employee_salaries.*, salary_structures.name AS structure_name").
		Joins("JOIN salary_structures ON salary_structures.id = employee_salaries.salary_structure_id").
		Where("employee_salaries.id = ?", id).
		Where("employee_salaries.company_id = ?", companyID).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindActiveOnDate resolves the single active assignment covering the
// date. The overlap invariant makes "most recent effective_from wins"
// and "the only covering row" the same row.
func (r *repository) FindActiveOnDate(ctx context.Context, companyID, employeeID string, onDate time.Time) (*EmployeeSalary, error) {
	var assignment EmployeeSalary
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("is_active = TRUE").
		Where("effective_from <= ?", onDate).
		Where("effective_to IS NULL OR effective_to >= ?", onDate).
		Order("effective_from DESC").
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) HasOverlappingPeriod(
	ctx context.Context,
	companyID, employeeID string,
	from time.Time,
	to *time.Time,
	excludeID *string,
) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&EmployeeSalary{}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("is_active = TRUE")

	if to != nil {
		db = db.Where("NOT (effective_from > ? OR (effective_to IS NOT NULL AND effective_to < ?))", *to, from)
	} else {
		// Open-ended candidate overlaps everything from its start onward.
		db = db.Where("effective_to IS NULL OR effective_to >= ?", from)
	}

	if excludeID != nil {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Deactivate(ctx context.Context, companyID, id string) error {
	result := r.db.WithContext(ctx).
		Model(&EmployeeSalary{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Delete(&EmployeeSalary{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
