package events

import "time"

// EmployeeCreatedTopic carries employee lifecycle events published by
// the core HR service. The consumer here seeds new hires with the
// company's default salary assignment.
const EmployeeCreatedTopic = "hr.employee.lifecycle.v1"

type EmployeeCreatedEvent struct {
	EventType  string    `json:"event_type"`
	EmployeeID string    `json:"employee_id"`
	CompanyID  string    `json:"company_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
