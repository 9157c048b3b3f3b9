package leave

import (
	"time"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

// IsDecision reports whether the status is an audited admin decision
func (s LeaveRequestStatus) IsDecision() bool {
	return s == LeaveRequestStatusApproved || s == LeaveRequestStatusRejected
}

// LeaveRequest entity
type LeaveRequest struct {
	ID          string
	EmployeeID  string
	LeaveType   string
	StartDate   time.Time
	EndDate     time.Time
	Description string
	Status      LeaveRequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relationships (for responses)
	EmployeeName *string
}

// FieldUpdates holds the optional non-status changes carried by a transition
type FieldUpdates struct {
	LeaveType   *string
	StartDate   *time.Time
	EndDate     *time.Time
	Description *string
}

func (u FieldUpdates) IsEmpty() bool {
	return u.LeaveType == nil && u.StartDate == nil && u.EndDate == nil && u.Description == nil
}

// Apply writes the updates onto r. The resulting date range must stay ordered.
func (r *LeaveRequest) Apply(u FieldUpdates) error {
	next := *r
	if u.LeaveType != nil {
		next.LeaveType = *u.LeaveType
	}
	if u.StartDate != nil {
		next.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		next.EndDate = *u.EndDate
	}
	if u.Description != nil {
		next.Description = *u.Description
	}
	if next.EndDate.Before(next.StartDate) {
		return ErrInvalidDateRange
	}
	*r = next
	return nil
}

// Covers reports whether day falls inside the request's inclusive date range
func (r LeaveRequest) Covers(day time.Time) bool {
	d := day.Format("2006-01-02")
	return d >= r.StartDate.Format("2006-01-02") && d <= r.EndDate.Format("2006-01-02")
}

type AuditAction string

const (
	AuditActionApproved AuditAction = "approved"
	AuditActionRejected AuditAction = "rejected"
	AuditActionModified AuditAction = "modified"
)

// Audit is the immutable record of an admin decision on a leave request
type Audit struct {
	ID             string
	LeaveRequestID string
	AdminID        *string
	Action         AuditAction
	Reason         *string
	CreatedAt      time.Time
}
