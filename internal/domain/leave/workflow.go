package leave

import "fmt"

// Effects lists the durable side effects of moving a request from one status to another.
type Effects struct {
	StatusChanged bool
	Audit         *AuditAction
	Notify        bool
}

// EffectsOf decides what a transition writes.
// Same status: field updates only. Approve or reject: audit (when an admin acted) plus a notification.
// Any other status passes through with a notification and no audit.
func EffectsOf(current, next LeaveRequestStatus, hasAdmin bool) Effects {
	if current == next {
		return Effects{}
	}

	e := Effects{StatusChanged: true, Notify: true}
	if next.IsDecision() && hasAdmin {
		action := AuditAction(next)
		e.Audit = &action
	}
	return e
}

// NotificationContent builds the requester-facing title and message for r's new status.
func NotificationContent(r LeaveRequest, reason *string) (title, message string) {
	period := fmt.Sprintf("from %s to %s", r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"))

	switch r.Status {
	case LeaveRequestStatusApproved:
		return "leave approved", fmt.Sprintf("Your leave request %s has been approved.", period)
	case LeaveRequestStatusRejected:
		message = fmt.Sprintf("Your leave request %s has been rejected.", period)
		if reason != nil && *reason != "" {
			message += " Reason: " + *reason
		}
		return "leave rejected", message
	default:
		return "leave " + string(r.Status), fmt.Sprintf("Your leave request %s is now %s.", period, r.Status)
	}
}
