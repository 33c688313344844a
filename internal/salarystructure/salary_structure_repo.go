package salarystructure

import (
	"context"
	"database/sql"

	"github.com/heyyrintu/hrms-sub003/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=salary_structure_repo.go -destination=mock/salary_structure_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, structure *SalaryStructure) error
	FindAllByCompany(ctx context.Context, companyID string) ([]SalaryStructure, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*SalaryStructure, error)
	ReplaceComponents(ctx context.Context, structure *SalaryStructure, components []StructureComponent) error
	SetActive(ctx context.Context, companyID, id string, active bool) error
	Delete(ctx context.Context, companyID string, id string) error
	ActiveAssignmentCount(ctx context.Context, companyID, structureID string) (int64, error)
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

func (r *repository) Create(ctx context.Context, structure *SalaryStructure) error {
	return r.db.WithContext(ctx).Create(structure).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]SalaryStructure, error) {
	var structures []SalaryStructure
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Components", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("name ASC").
		Find(&structures).Error
	return structures, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*SalaryStructure, error) {
	var structure SalaryStructure
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Components", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&structure).Error
	if err != nil {
		return nil, err
	}
	return &structure, nil
}

func (r *repository) ReplaceComponents(ctx context.Context, structure *SalaryStructure, components []StructureComponent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&SalaryStructure{}).
			Where("id = ? AND company_id = ?", structure.ID, structure.CompanyID).
			Updates(map[string]any{"name": structure.Name}).Error; err != nil {
			return err
		}
		if err := tx.Where("salary_structure_id = ?", structure.ID).
			Delete(&StructureComponent{}).Error; err != nil {
			return err
		}
		if len(components) == 0 {
			return nil
		}
		return tx.Create(&components).Error
	})
}

func (r *repository) SetActive(ctx context.Context, companyID, id string, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&SalaryStructure{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("salary_structure_id = ? AND company_id = ?", id, companyID).
			Delete(&StructureComponent{}).Error; err != nil {
			return err
		}
		result := tx.Scopes(tenant.Scope(companyID)).
			Where("id = ?", id).
			Delete(&SalaryStructure{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *repository) ActiveAssignmentCount(ctx context.Context, companyID, structureID string) (int64, error) {
	var count int64
	query := `
SELECT COUNT(*)
FROM employee_salaries
WHERE company_id = ?
  AND salary_structure_id = ?
  AND is_active = TRUE
`
	err := r.db.WithContext(ctx).Raw(query, companyID, structureID).Scan(&count).Error
	return count, err
}
