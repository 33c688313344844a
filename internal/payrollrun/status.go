package payrollrun

const (
	StatusDraft      = "DRAFT"
	StatusProcessing = "PROCESSING"
	StatusComputed   = "COMPUTED"
	StatusApproved   = "APPROVED"
	StatusPaid       = "PAID"
)

// allowedTransitions is the whole lifecycle. PAID is terminal; DRAFT is
// additionally deletable, which is not a transition and is guarded in
// the service.
var allowedTransitions = map[string][]string{
	StatusDraft:      {StatusProcessing},
	StatusProcessing: {StatusComputed},
	StatusComputed:   {StatusProcessing, StatusApproved},
	StatusApproved:   {StatusPaid},
	StatusPaid:       {},
}

func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
