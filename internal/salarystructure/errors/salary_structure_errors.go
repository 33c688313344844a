package salarystructureerrors

import (
	"net/http"

	"github.com/heyyrintu/hrms-sub003/internal/shared/apperror"
)

var (
	ErrStructureNotFound = apperror.New(
		apperror.CodeNotFound,
		"salary structure not found",
		http.StatusNotFound,
	)
	ErrStructureNameExists = apperror.New(
		apperror.CodeConflict,
		"a salary structure with this name already exists",
		http.StatusConflict,
	)
	ErrStructureInUse = apperror.New(
		apperror.CodeInvalidState,
		"salary structure is referenced by active salary assignments; deactivate it instead",
		http.StatusBadRequest,
	)
	ErrInvalidComponent = apperror.New(
		apperror.CodeInvalidInput,
		"salary structure component is invalid",
		http.StatusBadRequest,
	)
)
