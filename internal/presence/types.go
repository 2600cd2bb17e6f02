// Package presence contains pure business logic for faculty presence tracking.
// This package has NO external dependencies (no BLE, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package presence

import "time"

// State represents the debounced presence state of the faculty member.
type State string

const (
	StatePresent State = "PRESENT"
	StateAbsent  State = "ABSENT"
)

// Reason records what drove a state change.
type Reason string

const (
	// ReasonDebounce means the configured run of consistent scans was reached.
	ReasonDebounce Reason = "DEBOUNCE"
	// ReasonSilence means no observation arrived within the silence timeout.
	ReasonSilence Reason = "SILENCE"
)

// Observation is a single timestamped radio-proximity reading.
// IdentityMatch reports whether the advertisement came from one of the
// faculty member's registered beacons; RSSI is in dBm (negative, higher
// is closer).
type Observation struct {
	IdentityMatch bool
	RSSI          int
	Time          time.Time
}

// Event represents a presence state change to be published.
type Event struct {
	Timestamp time.Time
	State     State
	Reason    Reason
}

// Counts tracks the number of each transition since startup.
type Counts struct {
	Present      int // transitions to PRESENT
	Absent       int // transitions to ABSENT (debounced)
	SilenceDrops int // transitions to ABSENT forced by the silence timeout
}

// Config holds the tuning values for the state machine. All values are
// fixed for the process lifetime.
type Config struct {
	// DebounceCount is the number of consecutive consistent scans required
	// before the stable state flips.
	DebounceCount int
	// SilenceTimeout forces ABSENT when no observation has arrived for this long.
	SilenceTimeout time.Duration
	// RSSIThreshold is the weakest signal (dBm) still counted as detected.
	RSSIThreshold int
}
