// Package schedule decides which event a screen should display right now.
//
// Resolution is a pure function of a fetched snapshot and an instant, so the
// same logic serves the online path after a fetch, the 30-second tick driver,
// and offline re-resolution from a persisted bundle.
package schedule

import (
	"time"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
)

// ResolveActive returns the first event in snapshot order whose effective
// window contains now, or nil when nothing is active. A nil result is the
// deliberate idle state that sends the player to its screensaver.
//
// One-shot events match when effectiveStart <= now <= effectiveEnd, bounds
// inclusive. Recurring events must additionally contain now's time of day
// between the window's start and end times of day; a recurring window that
// crosses midnight never matches.
func ResolveActive(events []v1alpha1.ScheduledEvent, now time.Time) *v1alpha1.ScheduledEvent {
	for i := range events {
		if isActive(&events[i], now) {
			return &events[i]
		}
	}
	return nil
}

func isActive(e *v1alpha1.ScheduledEvent, now time.Time) bool {
	start, end := e.EffectiveWindow()

	// Inverted windows are bad data, not an error condition
	if end.Before(start) {
		return false
	}
	if now.Before(start) || now.After(end) {
		return false
	}

	if !e.Recurring {
		return true
	}

	// All three instants must be read in one location; the device clock may
	// carry a different zone than the wire timestamps
	loc := start.Location()
	startTOD := timeOfDay(start)
	endTOD := timeOfDay(end.In(loc))
	nowTOD := timeOfDay(now.In(loc))

	// Midnight-crossing daily windows are unsupported
	if startTOD > endTOD {
		return false
	}
	return startTOD <= nowTOD && nowTOD <= endTOD
}

// timeOfDay returns the wall-clock time since midnight
func timeOfDay(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}
