package employee

import (
	"context"
	"time"
)

// Directory satisfies the payroll engine's employee enumeration
// boundary.
type Directory struct {
	repo Repository
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

func (d *Directory) ListEligible(ctx context.Context, companyID string, periodEnd time.Time) ([]string, error) {
	return d.repo.ListEligibleIDs(ctx, companyID, periodEnd)
}
