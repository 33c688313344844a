package employeesalaryerrors

import (
	"net/http"

	"github.com/heyyrintu/hrms-sub003/internal/shared/apperror"
)

var (
	ErrAssignmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"salary assignment not found",
		http.StatusNotFound,
	)
	ErrAssignmentAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"a salary assignment for this employee and effective date already exists",
		http.StatusConflict,
	)
	ErrOverlappingAssignment = apperror.New(
		apperror.CodeConflict,
		"the effective period overlaps an existing active assignment",
		http.StatusConflict,
	)
	ErrInvalidEffectivePeriod = apperror.New(
		apperror.CodeInvalidInput,
		"effective_to must be on or after effective_from",
		http.StatusBadRequest,
	)
	ErrStructureNotUsable = apperror.New(
		apperror.CodeInvalidInput,
		"salary structure does not exist or is not active",
		http.StatusBadRequest,
	)
)
