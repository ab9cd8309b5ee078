package dto

// Event types published to the time log topic.
const (
	EventTimeLogCreated  = "timelog.created"
	EventTimeLogClosed   = "timelog.closed"
	EventTimeLogApproved = "timelog.approved"
)

type TimeLogEvent struct {
	Type        string  `json:"type"`
	TimeLogID   uint    `json:"time_log_id"`
	OrderID     uint    `json:"order_id"`
	UserID      uint    `json:"user_id"`
	TotalAmount float64 `json:"total_amount"`
	OccurredAt  string  `json:"occurred_at"`
}
