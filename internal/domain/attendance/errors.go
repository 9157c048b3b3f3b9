package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Sequence errors. All of them wrap ErrSequenceViolation.
	ErrSequenceViolation  = errors.New("scan rejected")
	ErrDuplicateArrival   = fmt.Errorf("%w: arrival already recorded today", ErrSequenceViolation)
	ErrDuplicateDeparture = fmt.Errorf("%w: departure already recorded today", ErrSequenceViolation)
	ErrDayClosed          = fmt.Errorf("%w: departure already recorded, the day is closed", ErrSequenceViolation)
	ErrNotArrived         = fmt.Errorf("%w: no arrival recorded today", ErrSequenceViolation)
	ErrPauseInProgress    = fmt.Errorf("%w: a pause is still open", ErrSequenceViolation)
	ErrNoOpenPause        = fmt.Errorf("%w: no open pause to close", ErrSequenceViolation)

	// Scan errors
	ErrInvalidEventType   = errors.New("invalid event type")
	ErrCredentialNotFound = errors.New("badge credential not found")
	ErrForbiddenScan      = errors.New("not allowed to scan for another employee")
	ErrEmployeeInactive   = errors.New("employee is not active")

	ErrPresenceNotFound = errors.New("presence record not found")
)
