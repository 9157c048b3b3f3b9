package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func eventsOf(types ...EventType) []BadgeEvent {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	events := make([]BadgeEvent, 0, len(types))
	for i, t := range types {
		events = append(events, BadgeEvent{Type: t, ScannedAt: base.Add(time.Duration(i) * time.Hour)})
	}
	return events
}

func TestValidateSequence(t *testing.T) {
	tests := []struct {
		name     string
		todays   []BadgeEvent
		proposed EventType
		wantErr  error
	}{
		{"first arrival", nil, EventArrival, nil},
		{"second arrival", eventsOf(EventArrival), EventArrival, ErrDuplicateArrival},
		{"arrival after departure", eventsOf(EventArrival, EventDeparture), EventArrival, ErrDayClosed},

		{"pause before arrival", nil, EventPauseStart, ErrNotArrived},
		{"pause after arrival", eventsOf(EventArrival), EventPauseStart, nil},
		{"pause while paused", eventsOf(EventArrival, EventPauseStart), EventPauseStart, ErrPauseInProgress},
		{"second pause", eventsOf(EventArrival, EventPauseStart, EventPauseEnd), EventPauseStart, nil},
		{"pause after departure", eventsOf(EventArrival, EventDeparture), EventPauseStart, ErrDayClosed},

		{"resume before arrival", nil, EventPauseEnd, ErrNotArrived},
		{"resume without pause", eventsOf(EventArrival), EventPauseEnd, ErrNoOpenPause},
		{"resume open pause", eventsOf(EventArrival, EventPauseStart), EventPauseEnd, nil},
		{"resume twice", eventsOf(EventArrival, EventPauseStart, EventPauseEnd), EventPauseEnd, ErrNoOpenPause},

		{"departure before arrival", nil, EventDeparture, ErrNotArrived},
		{"departure after arrival", eventsOf(EventArrival), EventDeparture, nil},
		{"departure while paused", eventsOf(EventArrival, EventPauseStart), EventDeparture, ErrPauseInProgress},
		{"departure after pause", eventsOf(EventArrival, EventPauseStart, EventPauseEnd), EventDeparture, nil},
		{"second departure", eventsOf(EventArrival, EventDeparture), EventDeparture, ErrDuplicateDeparture},

		{"unknown type", eventsOf(EventArrival), EventType("lunch"), ErrInvalidEventType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSequence(tt.todays, tt.proposed)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateSequence_RejectionsAreSequenceViolations(t *testing.T) {
	rejections := []error{
		ErrDuplicateArrival,
		ErrDuplicateDeparture,
		ErrDayClosed,
		ErrNotArrived,
		ErrPauseInProgress,
		ErrNoOpenPause,
	}
	for _, err := range rejections {
		assert.True(t, errors.Is(err, ErrSequenceViolation), err.Error())
	}
	assert.False(t, errors.Is(ErrInvalidEventType, ErrSequenceViolation))
}

// Every prefix of an accepted sequence keeps arrival first and at most one of each bound.
func TestValidateSequence_AcceptedDayInvariants(t *testing.T) {
	attempts := []EventType{
		EventPauseStart, EventArrival, EventArrival, EventPauseEnd, EventPauseStart,
		EventDeparture, EventPauseEnd, EventPauseStart, EventPauseEnd, EventDeparture, EventArrival,
	}

	var accepted []BadgeEvent
	for _, proposed := range attempts {
		if ValidateSequence(accepted, proposed) == nil {
			accepted = append(accepted, BadgeEvent{Type: proposed})
		}
	}

	if assert.NotEmpty(t, accepted) {
		assert.Equal(t, EventArrival, accepted[0].Type)
	}
	s := StateOf(accepted)
	assert.True(t, s.HasArrival)
	assert.True(t, s.HasDeparture)
	assert.False(t, s.PauseInProgress())
	assert.Equal(t, EventDeparture, accepted[len(accepted)-1].Type)

	counts := map[EventType]int{}
	for _, e := range accepted {
		counts[e.Type]++
	}
	assert.Equal(t, 1, counts[EventArrival])
	assert.Equal(t, 1, counts[EventDeparture])
	assert.Equal(t, counts[EventPauseStart], counts[EventPauseEnd])
}
