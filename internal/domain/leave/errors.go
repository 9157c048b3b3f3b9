package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrInvalidDateRange     = errors.New("end_date must not be before start_date")
	ErrUnauthorized         = errors.New("unauthorized to access this leave request")
)
