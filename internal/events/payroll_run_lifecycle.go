package events

import "time"

const PayrollRunLifecycleTopic = "hr.payroll.run.lifecycle.v1"

const (
	PayrollRunComputed = "payroll_run.computed"
	PayrollRunApproved = "payroll_run.approved"
	PayrollRunPaid     = "payroll_run.paid"
)

type PayrollRunLifecycleEvent struct {
	EventType       string    `json:"event_type"`
	RunID           string    `json:"run_id"`
	CompanyID       string    `json:"company_id"`
	Month           int       `json:"month"`
	Year            int       `json:"year"`
	ProcessedCount  int       `json:"processed_count"`
	ErrorCount      int       `json:"error_count"`
	TotalGross      int64     `json:"total_gross"`
	TotalDeductions int64     `json:"total_deductions"`
	TotalNet        int64     `json:"total_net"`
	ActorID         string    `json:"actor_id"`
	OccurredAt      time.Time `json:"occurred_at"`
}
