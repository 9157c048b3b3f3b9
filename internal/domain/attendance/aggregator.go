package attendance

import "time"

// Apply folds one accepted event into the day's presence record and returns the result.
// dayEvents are the events already accepted for the same employee and day.
func Apply(record PresenceRecord, event BadgeEvent, dayEvents []BadgeEvent) PresenceRecord {
	if record.Status == "" {
		record.Status = StatusAbsent
	}

	switch event.Type {
	case EventArrival:
		if record.ArrivalTime == nil {
			at := event.ScannedAt
			record.ArrivalTime = &at
		}
		record.Status = StatusPresent

	case EventPauseStart:
		record.PauseCount++

	case EventPauseEnd:
		if start, ok := lastPauseStart(dayEvents, event.ScannedAt); ok {
			record.PauseMinutes += wholeMinutes(event.ScannedAt.Sub(start))
		}

	case EventDeparture:
		dt := event.ScannedAt
		record.DepartureTime = &dt
		if record.ArrivalTime != nil {
			total := wholeMinutes(dt.Sub(*record.ArrivalTime))
			record.WorkedMinutes = max(0, total-record.PauseMinutes)
		}
		record.Status = StatusPresent
	}

	return record
}

// lastPauseStart finds the latest pause_start scanned at or before ts.
func lastPauseStart(events []BadgeEvent, ts time.Time) (time.Time, bool) {
	var (
		found  bool
		latest time.Time
	)
	for _, e := range events {
		if e.Type != EventPauseStart || e.ScannedAt.After(ts) {
			continue
		}
		if !found || !e.ScannedAt.Before(latest) {
			latest = e.ScannedAt
			found = true
		}
	}
	return latest, found
}

// wholeMinutes floors d to minutes, clamped at zero.
func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
