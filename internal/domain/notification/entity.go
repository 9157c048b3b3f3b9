package notification

import (
	"time"
)

// Notification is the persisted message shown to an employee about one of their leave requests.
// Only the read flag changes after creation.
type Notification struct {
	ID             string
	LeaveRequestID string
	RecipientID    string
	Title          string
	Message        string
	IsRead         bool
	ReadAt         *time.Time
	SentAt         time.Time
}
