package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrSequenceViolation):
		SequenceViolation(w, err.Error())
	case errors.Is(err, attendance.ErrInvalidEventType):
		ValidationError(w, map[string]string{"event_type": err.Error()})
	case errors.Is(err, attendance.ErrCredentialNotFound):
		NotFound(w, "Badge credential not found")
	case errors.Is(err, attendance.ErrPresenceNotFound):
		NotFound(w, "Presence record not found")
	case errors.Is(err, attendance.ErrForbiddenScan),
		errors.Is(err, attendance.ErrEmployeeInactive):
		Forbidden(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrInvalidDateRange):
		ValidationError(w, map[string]string{"end_date": err.Error()})
	case errors.Is(err, leave.ErrUnauthorized):
		Forbidden(w, err.Error())

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	case errors.Is(err, user.ErrEmployeeProfileRequired):
		Forbidden(w, err.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
