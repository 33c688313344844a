package apperror

// Stable machine-readable codes carried in every error response. The
// HTTP status lives on the sentinel; handlers never pick one ad hoc.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"

	// CodeInvalidState marks lifecycle violations, e.g. approving a run
	// that is not COMPUTED or deleting one past DRAFT.
	CodeInvalidState = "INVALID_STATE"

	CodeInternalError = "INTERNAL_ERROR"

	// CodeServiceUnavailable marks a degraded upstream, e.g. the
	// attendance facts source timing out during a run.
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
