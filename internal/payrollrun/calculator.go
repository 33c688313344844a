package payrollrun

import (
	"fmt"

	payrollrunerrors "github.com/heyyrintu/hrms-sub003/internal/payrollrun/errors"
	"github.com/heyyrintu/hrms-sub003/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ComponentEarning   = "EARNING"
	ComponentDeduction = "DEDUCTION"

	CalcPercentage = "PERCENTAGE"
	CalcFixed      = "FIXED"
)

// ComponentSpec is one line of a salary structure as resolved for a run:
// an immutable snapshot, decoupled from the live structure row.
type ComponentSpec struct {
	Name          string
	ComponentType string
	CalcType      string
	Value         decimal.Decimal
}

// ResolvedAssignment is the salary assignment in force for an employee
// on the resolution date, with the structure's components snapshotted.
type ResolvedAssignment struct {
	EmployeeID    uuid.UUID
	StructureID   uuid.UUID
	StructureName string
	BasePay       int64 // minor units
	Components    []ComponentSpec
}

// AttendanceFacts is the per-employee monthly input owned by the
// attendance module.
type AttendanceFacts struct {
	WorkingDays       int
	PresentDays       int
	LopDays           int
	ApprovedOtMinutes int
}

type Period struct {
	Month int
	Year  int
}

type ComputeInput struct {
	Assignment ResolvedAssignment
	Facts      AttendanceFacts
	Period     Period
	// OtRate is the resolved hourly overtime rate in minor units per
	// hour. Only consulted when ApprovedOtMinutes > 0.
	OtRate decimal.Decimal
}

type LineResult struct {
	Spec   ComponentSpec
	Amount int64
}

type ComputeResult struct {
	BasePay         int64
	ProRatedBase    int64
	WorkingDays     int
	PresentDays     int
	LopDays         int
	OtMinutes       int
	OtPay           int64
	Earnings        []LineResult
	Deductions      []LineResult
	GrossPay        int64
	TotalDeductions int64
	NetPay          int64
	NetShortfall    int64
}

var (
	hundred        = decimal.NewFromInt(100)
	minutesPerHour = decimal.NewFromInt(60)
)

// Compute turns an assignment plus attendance facts into payslip values.
// It is pure: no I/O, no clock, no randomness, so reprocessing with the
// same inputs yields identical results.
//
// Intermediate arithmetic stays at full precision; each monetary result
// is rounded half-to-even to the minor unit only when materialized, and
// the aggregates are sums of the materialized values so the stored
// payslip is internally consistent to the cent.
func Compute(in ComputeInput) (*ComputeResult, error) {
	facts := in.Facts

	if facts.WorkingDays <= 0 {
		return nil, apperror.Wrap(
			fmt.Errorf("working days %d", facts.WorkingDays),
			payrollrunerrors.ErrInvalidFacts.Code,
			payrollrunerrors.ErrInvalidFacts.Message,
			payrollrunerrors.ErrInvalidFacts.HTTPStatus,
		)
	}
	if facts.LopDays < 0 || facts.LopDays > facts.WorkingDays {
		return nil, apperror.Wrap(
			fmt.Errorf("lop days %d of %d working days", facts.LopDays, facts.WorkingDays),
			payrollrunerrors.ErrInvalidFacts.Code,
			payrollrunerrors.ErrInvalidFacts.Message,
			payrollrunerrors.ErrInvalidFacts.HTTPStatus,
		)
	}
	if facts.PresentDays < 0 || facts.PresentDays > facts.WorkingDays {
		return nil, apperror.Wrap(
			fmt.Errorf("present days %d of %d working days", facts.PresentDays, facts.WorkingDays),
			payrollrunerrors.ErrInvalidFacts.Code,
			payrollrunerrors.ErrInvalidFacts.Message,
			payrollrunerrors.ErrInvalidFacts.HTTPStatus,
		)
	}
	if facts.ApprovedOtMinutes < 0 {
		return nil, apperror.Wrap(
			fmt.Errorf("approved ot minutes %d", facts.ApprovedOtMinutes),
			payrollrunerrors.ErrInvalidFacts.Code,
			payrollrunerrors.ErrInvalidFacts.Message,
			payrollrunerrors.ErrInvalidFacts.HTTPStatus,
		)
	}
	if in.Assignment.BasePay < 0 {
		return nil, payrollrunerrors.ErrInvalidFacts
	}
	if facts.ApprovedOtMinutes > 0 && !in.OtRate.IsPositive() {
		return nil, payrollrunerrors.ErrMissingOtRate
	}

	basePay := decimal.NewFromInt(in.Assignment.BasePay)

	// Pro-ration applies to the base pay line only. Fixed allowances are
	// not time-prorated; percentage components express "as-if-full-month"
	// ratios and are evaluated against the un-prorated base.
	payableDays := decimal.NewFromInt(int64(facts.WorkingDays - facts.LopDays))
	workingDays := decimal.NewFromInt(int64(facts.WorkingDays))
	proRatedBase := basePay.Mul(payableDays).Div(workingDays).RoundBank(0)

	var earnings, deductions []LineResult
	for _, spec := range in.Assignment.Components {
		if spec.Value.IsNegative() {
			return nil, apperror.Wrap(
				fmt.Errorf("component %q has negative value", spec.Name),
				payrollrunerrors.ErrUnknownComponent.Code,
				payrollrunerrors.ErrUnknownComponent.Message,
				payrollrunerrors.ErrUnknownComponent.HTTPStatus,
			)
		}

		var amount decimal.Decimal
		switch spec.CalcType {
		case CalcPercentage:
			amount = basePay.Mul(spec.Value).Div(hundred)
		case CalcFixed:
			amount = spec.Value
		default:
			return nil, apperror.Wrap(
				fmt.Errorf("component %q calc type %q", spec.Name, spec.CalcType),
				payrollrunerrors.ErrUnknownComponent.Code,
				payrollrunerrors.ErrUnknownComponent.Message,
				payrollrunerrors.ErrUnknownComponent.HTTPStatus,
			)
		}

		line := LineResult{Spec: spec, Amount: amount.RoundBank(0).IntPart()}

		switch spec.ComponentType {
		case ComponentEarning:
			earnings = append(earnings, line)
		case ComponentDeduction:
			deductions = append(deductions, line)
		default:
			return nil, apperror.Wrap(
				fmt.Errorf("component %q type %q", spec.Name, spec.ComponentType),
				payrollrunerrors.ErrUnknownComponent.Code,
				payrollrunerrors.ErrUnknownComponent.Message,
				payrollrunerrors.ErrUnknownComponent.HTTPStatus,
			)
		}
	}

	var otPay int64
	if facts.ApprovedOtMinutes > 0 {
		otHours := decimal.NewFromInt(int64(facts.ApprovedOtMinutes)).Div(minutesPerHour)
		otPay = otHours.Mul(in.OtRate).RoundBank(0).IntPart()
	}

	gross := proRatedBase.IntPart() + otPay
	for _, e := range earnings {
		gross += e.Amount
	}

	var totalDeductions int64
	for _, d := range deductions {
		totalDeductions += d.Amount
	}

	net := gross - totalDeductions
	var shortfall int64
	if net < 0 {
		// Never force a negative payout. The shortfall stays visible on
		// the payslip for HR to review.
		shortfall = -net
		net = 0
	}

	return &ComputeResult{
		BasePay:         in.Assignment.BasePay,
		ProRatedBase:    proRatedBase.IntPart(),
		WorkingDays:     facts.WorkingDays,
		PresentDays:     facts.PresentDays,
		LopDays:         facts.LopDays,
		OtMinutes:       facts.ApprovedOtMinutes,
		OtPay:           otPay,
		Earnings:        earnings,
		Deductions:      deductions,
		GrossPay:        gross,
		TotalDeductions: totalDeductions,
		NetPay:          net,
		NetShortfall:    shortfall,
	}, nil
}
