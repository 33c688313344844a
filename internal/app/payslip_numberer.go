package app

import (
	"context"

	"github.com/heyyrintu/hrms-sub003/internal/shared/counter"
)

// counterPayslipNumberer issues payslip numbers from the per-company
// atomic counter.
type counterPayslipNumberer struct {
	counters counter.Repository
}

func (n *counterPayslipNumberer) NextPayslipNumber(ctx context.Context, companyID string) (string, error) {
	next, err := n.counters.GetNextValue(ctx, companyID, counter.TypePayslipNumber)
	if err != nil {
		return "", err
	}
	return counter.FormatPayslipNumber(next), nil
}
