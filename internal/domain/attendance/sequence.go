package attendance

// DayState summarises the accepted events of one employee on one day.
type DayState struct {
	HasArrival      bool
	HasDeparture    bool
	PauseStartCount int
	PauseEndCount   int
}

func (s DayState) PauseInProgress() bool {
	return s.PauseStartCount > s.PauseEndCount
}

func StateOf(events []BadgeEvent) DayState {
	var s DayState
	for _, e := range events {
		switch e.Type {
		case EventArrival:
			s.HasArrival = true
		case EventDeparture:
			s.HasDeparture = true
		case EventPauseStart:
			s.PauseStartCount++
		case EventPauseEnd:
			s.PauseEndCount++
		}
	}
	return s
}

// ValidateSequence decides whether proposed may follow the day's accepted events.
// A nil return means accept. Rejections wrap ErrSequenceViolation.
func ValidateSequence(todays []BadgeEvent, proposed EventType) error {
	s := StateOf(todays)

	switch proposed {
	case EventArrival:
		if s.HasDeparture {
			return ErrDayClosed
		}
		if s.HasArrival {
			return ErrDuplicateArrival
		}
	case EventPauseStart:
		if !s.HasArrival {
			return ErrNotArrived
		}
		if s.HasDeparture {
			return ErrDayClosed
		}
		if s.PauseInProgress() {
			return ErrPauseInProgress
		}
	case EventPauseEnd:
		if !s.HasArrival {
			return ErrNotArrived
		}
		if s.HasDeparture {
			return ErrDayClosed
		}
		if !s.PauseInProgress() {
			return ErrNoOpenPause
		}
	case EventDeparture:
		if !s.HasArrival {
			return ErrNotArrived
		}
		if s.HasDeparture {
			return ErrDuplicateDeparture
		}
		if s.PauseInProgress() {
			return ErrPauseInProgress
		}
	default:
		return ErrInvalidEventType
	}

	return nil
}
