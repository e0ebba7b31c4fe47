package domain

import "github.com/jonboulle/clockwork"

// clock is the package time source behind GeneratedAt stamps. Production
// code keeps the real clock; tests inject a fake for deterministic records.
var clock = clockwork.NewRealClock()

// SetClock swaps the record time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
