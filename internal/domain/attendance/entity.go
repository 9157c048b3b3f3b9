package attendance

import (
	"time"
)

type EventType string

const (
	EventArrival    EventType = "arrival"
	EventPauseStart EventType = "pause_start"
	EventPauseEnd   EventType = "pause_end"
	EventDeparture  EventType = "departure"
)

// AllEventTypes returns every scan action a badge reader may submit
func AllEventTypes() []EventType {
	return []EventType{EventArrival, EventPauseStart, EventPauseEnd, EventDeparture}
}

func (t EventType) IsValid() bool {
	switch t {
	case EventArrival, EventPauseStart, EventPauseEnd, EventDeparture:
		return true
	}
	return false
}

// BadgeEvent is one accepted scan. The ledger never updates or deletes rows.
type BadgeEvent struct {
	ID         string
	EmployeeID string
	WorkDate   time.Time
	Type       EventType
	ScannedAt  time.Time
	Latitude   *float64
	Longitude  *float64
	DeviceTag  *string
	CreatedAt  time.Time
}

// BadgeCredential binds an opaque badge token to an employee. Only the token hash is stored.
type BadgeCredential struct {
	ID         string
	EmployeeID string
	TokenHash  string
	IsActive   bool
	CreatedAt  time.Time
	RetiredAt  *time.Time
}

type PresenceStatus string

const (
	StatusAbsent  PresenceStatus = "absent"
	StatusPresent PresenceStatus = "present"
	StatusLate    PresenceStatus = "late"
	StatusOnLeave PresenceStatus = "on_leave"
	StatusRestDay PresenceStatus = "rest_day"
)

func AllPresenceStatuses() []string {
	return []string{
		string(StatusAbsent),
		string(StatusPresent),
		string(StatusLate),
		string(StatusOnLeave),
		string(StatusRestDay),
	}
}

// PresenceRecord is the daily summary derived from the badge ledger.
// One row per (employee, work date).
type PresenceRecord struct {
	ID            string
	EmployeeID    string
	WorkDate      time.Time
	Status        PresenceStatus
	ArrivalTime   *time.Time
	DepartureTime *time.Time
	WorkedMinutes int
	PauseCount    int
	PauseMinutes  int
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// DTO
	EmployeeName *string
}

// NewPresenceRecord returns the default record for a day with no accepted events.
func NewPresenceRecord(employeeID string, workDate time.Time) PresenceRecord {
	return PresenceRecord{
		EmployeeID: employeeID,
		WorkDate:   workDate,
		Status:     StatusAbsent,
	}
}
