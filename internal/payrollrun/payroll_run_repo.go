package payrollrun

import (
	"context"
	"database/sql"
	"time"

	"github.com/heyyrintu/hrms-sub003/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=payroll_run_repo.go -destination=mock/payroll_run_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateRun(ctx context.Context, run *PayrollRun) error
	FindAllByCompany(ctx context.Context, companyID string) ([]PayrollRun, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollRun, error)
	DeleteRun(ctx context.Context, companyID string, id string) (bool, error)

	// BeginProcessing is the compare-and-swap entry into PROCESSING: it
	// succeeds from DRAFT and COMPUTED, and from a PROCESSING row whose
	// processing_started_at is older than staleBefore (crash recovery).
	BeginProcessing(ctx context.Context, companyID, runID string, staleBefore time.Time) (bool, error)

	// TransitionStatus flips status only when the current status matches
	// from (conditional UPDATE, no in-memory lock). Extra column patches
	// ride along in the same statement.
	TransitionStatus(ctx context.Context, companyID, runID, from, to string, patch map[string]any) (bool, error)

	SavePayslip(ctx context.Context, p *Payslip, lines []PayslipLine) error
	ListPayslipsByRun(ctx context.Context, companyID, runID string) ([]Payslip, error)
	ListPayslipsByEmployee(ctx context.Context, companyID, employeeID string) ([]Payslip, error)
	ListPayslipEmployeeIDs(ctx context.Context, runID string) ([]string, error)
	DeletePayslipsByRun(ctx context.Context, companyID, runID string) error

	RecordFailure(ctx context.Context, f *RunFailure) error
	ClearFailures(ctx context.Context, runID string) error
	ListFailuresByRun(ctx context.Context, companyID, runID string) ([]RunFailure, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) CreateRun(ctx context.Context, run *PayrollRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]PayrollRun, error) {
	var runs []PayrollRun
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("year DESC, month DESC").
		Find(&runs).Error
	return runs, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollRun, error) {
	var run PayrollRun
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&run, "id = ?", id).Error
	return &run, err
}

// DeleteRun removes the run only while it is still DRAFT; the status
// guard sits in the delete itself so a concurrent claim cannot slip in
// between a status check and the delete. Returns whether a row was
// removed.
func (r *repository) DeleteRun(ctx context.Context, companyID string, id string) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Scopes(tenant.Scope(companyID)).
			Where("status = ?", StatusDraft).
			Delete(&PayrollRun{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true

		// A draft has no payslips yet; clean up anyway so the cascade
		// holds even if rows were written out of band.
		if err := tx.
			Where("payslip_id IN (?)",
				tx.Model(&Payslip{}).Select("id").Where("payroll_run_id = ?", id),
			).
			Delete(&PayslipLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("payroll_run_id = ?", id).Delete(&Payslip{}).Error; err != nil {
			return err
		}
		return tx.Where("payroll_run_id = ?", id).Delete(&RunFailure{}).Error
	})
	return deleted, err
}

func (r *repository) BeginProcessing(ctx context.Context, companyID, runID string, staleBefore time.Time) (bool, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&PayrollRun{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", runID).
		Where(
			"(status IN ? OR (status = ? AND processing_started_at < ?))",
			[]string{StatusDraft, StatusComputed}, StatusProcessing, staleBefore,
		).
		Updates(map[string]any{
			"status":                StatusProcessing,
			"processing_started_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) TransitionStatus(ctx context.Context, companyID, runID, from, to string, patch map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range patch {
		updates[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&PayrollRun{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", runID).
		Where("status = ?", from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SavePayslip upserts on (payroll_run_id, employee_id) so reprocessing
// replaces an employee's payslip instead of duplicating it. Line
// snapshots are replaced wholesale with the payslip.
func (r *repository) SavePayslip(ctx context.Context, p *Payslip, lines []PayslipLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "payroll_run_id"}, {Name: "employee_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"payslip_number", "base_pay", "pro_rated_base",
					"working_days", "present_days", "lop_days",
					"ot_minutes", "ot_pay",
					"gross_pay", "total_deductions", "net_pay", "net_shortfall",
					"updated_at",
				}),
			}).
			Create(p).Error; err != nil {
			return err
		}

		// The upsert keeps the original row id on conflict; fetch it so
		// the lines attach to the surviving payslip.
		var saved Payslip
		if err := tx.
			Where("payroll_run_id = ? AND employee_id = ?", p.PayrollRunID, p.EmployeeID).
			First(&saved).Error; err != nil {
			return err
		}
		p.ID = saved.ID

		if err := tx.Where("payslip_id = ?", saved.ID).Delete(&PayslipLine{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].ID = uuid.New()
			lines[i].PayslipID = saved.ID
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
}

func (r *repository) ListPayslipsByRun(ctx context.Context, companyID, runID string) ([]Payslip, error) {
	var payslips []Payslip
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("payroll_run_id = ?", runID).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at ASC").
		Find(&payslips).Error
	return payslips, err
}

func (r *repository) ListPayslipsByEmployee(ctx context.Context, companyID, employeeID string) ([]Payslip, error) {
	var payslips []Payslip
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at DESC").
		Find(&payslips).Error
	return payslips, err
}

func (r *repository) ListPayslipEmployeeIDs(ctx context.Context, runID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&Payslip{}).
		Where("payroll_run_id = ?", runID).
		Pluck("employee_id", &ids).Error
	return ids, err
}

func (r *repository) DeletePayslipsByRun(ctx context.Context, companyID, runID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("payslip_id IN (?)",
				tx.Model(&Payslip{}).Select("id").Where("payroll_run_id = ?", runID),
			).
			Delete(&PayslipLine{}).Error; err != nil {
			return err
		}
		return tx.
			Scopes(tenant.Scope(companyID)).
			Where("payroll_run_id = ?", runID).
			Delete(&Payslip{}).Error
	})
}

func (r *repository) RecordFailure(ctx context.Context, f *RunFailure) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "payroll_run_id"}, {Name: "employee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"reason", "detail"}),
		}).
		Create(f).Error
}

func (r *repository) ClearFailures(ctx context.Context, runID string) error {
	return r.db.WithContext(ctx).
		Where("payroll_run_id = ?", runID).
		Delete(&RunFailure{}).Error
}

func (r *repository) ListFailuresByRun(ctx context.Context, companyID, runID string) ([]RunFailure, error) {
	var failures []RunFailure
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("payroll_run_id = ?", runID).
		Order("created_at ASC").
		Find(&failures).Error
	return failures, err
}
