// Package clock corrects the player's local clock against the provider's.
//
// Player devices drift and often have no NTP access behind venue networks, so
// every screen fetch yields a fresh offset from the provider's server_time.
// The arithmetic is pure; persistence of the offset lives in the store.
package clock

import "time"

// ComputeOffset returns the signed difference between the provider clock and
// the local clock, measured at receipt of a screen response. A nil server
// timestamp yields a zero offset rather than an error so an older provider
// simply leaves the player unsynchronized for that cycle.
func ComputeOffset(serverTime *time.Time, receivedAt time.Time) time.Duration {
	if serverTime == nil {
		return 0
	}
	return serverTime.Sub(receivedAt)
}

// Corrector applies a fixed offset to local time readings
type Corrector struct {
	offset time.Duration
	now    func() time.Time
}

// NewCorrector creates a corrector with the given offset
func NewCorrector(offset time.Duration) Corrector {
	return Corrector{offset: offset, now: time.Now}
}

// NewCorrectorAt creates a corrector with a custom time source, for tests and
// deterministic resolution
func NewCorrectorAt(offset time.Duration, now func() time.Time) Corrector {
	return Corrector{offset: offset, now: now}
}

// Offset returns the corrector's offset
func (c Corrector) Offset() time.Duration {
	return c.offset
}

// Now returns the corrected current instant
func (c Corrector) Now() time.Time {
	return c.now().Add(c.offset)
}

// Correct applies the offset to an arbitrary local instant
func (c Corrector) Correct(local time.Time) time.Time {
	return local.Add(c.offset)
}
