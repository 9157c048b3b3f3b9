package employee

import (
	"time"
)

type Employee struct {
	ID           string
	UserID       *string
	EmployeeCode string
	FullName     string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Status is the employment state maintained by the HR directory
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusOnLeave   Status = "on_leave"
)

// CanScan reports whether the employee may record badge events.
// An employee on leave can still badge in, which ends the leave day early.
func (e Employee) CanScan() bool {
	return e.Status == StatusActive || e.Status == StatusOnLeave
}
