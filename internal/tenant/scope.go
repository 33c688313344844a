package tenant

import "gorm.io/gorm"

// Scope restricts a query to one company. Every payroll table carries a
// company_id column; repositories apply this scope on every read so a
// tenant can never see another tenant's runs or payslips.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}
