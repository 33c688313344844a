package employee

import (
	"context"
	"database/sql"
	"time"

	"github.com/heyyrintu/hrms-sub003/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error)
	ListEligibleIDs(ctx context.Context, companyID string, periodEnd time.Time) ([]string, error)
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

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("full_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		First(&empl).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

// ListEligibleIDs enumerates employees a payroll run will attempt:
// active on the period end date and holding a salary assignment that
// covers it.
func (r *repository) ListEligibleIDs(ctx context.Context, companyID string, periodEnd time.Time) ([]string, error) {
	var ids []string
	query := `
SELECT employees.id::text
FROM employees
WHERE employees.company_id = ?
  AND employees.is_active = TRUE
  AND employees.deleted_at IS NULL
  AND employees.hire_date <= ?
  AND EXISTS (
	SELECT 1
	FROM employee_salaries
	WHERE employee_salaries.employee_id = employees.id
	  AND employee_salaries.is_active = TRUE
	  AND employee_salaries.effective_from <= ?
	  AND (employee_salaries.effective_to IS NULL OR employee_salaries.effective_to >= ?)
  )
ORDER BY employees.id
`
	err := r.db.WithContext(ctx).Raw(query, companyID, periodEnd, periodEnd, periodEnd).Scan(&ids).Error
	return ids, err
}
