package events

import "time"

const RequestDecidedTopic = "spa.request.decided.v1"

// RequestDecidedEvent is published when a pending leave or overtime request
// reaches its final status. Kind is "Leave" or "Overtime".
type RequestDecidedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id"`
	RecordID     string    `json:"record_id"`
	Kind         string    `json:"kind"`
	EmployeeCode string    `json:"employee_code"`
	Department   string    `json:"department"`
	Status       string    `json:"status"`
	DecidedBy    string    `json:"decided_by"`
	OccurredAt   time.Time `json:"occurred_at"`
}
