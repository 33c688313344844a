package payrollrunerrors

import (
	"net/http"

	"github.com/heyyrintu/hrms-sub003/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"month must be 1-12 and year must be a four digit year",
		http.StatusBadRequest,
	)
	ErrRunExists = apperror.New(
		apperror.CodeConflict,
		"a payroll run already exists for this period",
		http.StatusConflict,
	)
	ErrRunNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll run not found",
		http.StatusNotFound,
	)
	ErrPayslipNotFound = apperror.New(
		apperror.CodeNotFound,
		"payslip not found",
		http.StatusNotFound,
	)
	ErrRunAlreadyProcessing = apperror.New(
		apperror.CodeConflict,
		"payroll run is already being processed",
		http.StatusConflict,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid payroll run status transition",
		http.StatusBadRequest,
	)
	ErrRunHasErrors = apperror.New(
		apperror.CodeInvalidState,
		"payroll run has unresolved employee errors; reprocess or approve with override",
		http.StatusBadRequest,
	)
	ErrDeleteOnlyDraft = apperror.New(
		apperror.CodeInvalidState,
		"payroll run can only be deleted while status is DRAFT",
		http.StatusBadRequest,
	)

	// Per-employee calculation errors. These are recorded on the run and
	// never abort processing.
	ErrInvalidFacts = apperror.New(
		apperror.CodeInvalidInput,
		"attendance facts are invalid for this period",
		http.StatusBadRequest,
	)
	ErrNoActiveAssignment = apperror.New(
		apperror.CodeNotFound,
		"employee has no active salary assignment covering the period",
		http.StatusNotFound,
	)
	ErrMissingOtRate = apperror.New(
		apperror.CodeInvalidInput,
		"overtime was approved but no overtime rate is resolvable",
		http.StatusBadRequest,
	)
	ErrUnknownComponent = apperror.New(
		apperror.CodeInvalidInput,
		"salary structure component has an unknown type",
		http.StatusBadRequest,
	)
	ErrFactsUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"attendance facts could not be fetched",
		http.StatusServiceUnavailable,
	)
)
