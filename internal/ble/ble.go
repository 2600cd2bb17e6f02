// Package ble provides the radio observation source with hardware
// abstraction. The real implementation scans for the faculty member's
// beacon advertisements over Bluetooth Low Energy; the fake allows
// testing without a radio.
package ble

import (
	"time"

	"github.com/consultease/desk-unit/internal/presence"
)

// NoSignalRSSI is reported when a scan window sees no advertisement at
// all. Well below any realistic reading, so it always classifies as
// not-detected regardless of the configured threshold.
const NoSignalRSSI = -127

// Scanner produces one observation per scan window.
type Scanner interface {
	// Scan runs one scan window and returns the resulting observation:
	// the strongest advertisement from a registered beacon when one was
	// seen, otherwise a not-detected reading. The observation carries
	// the given timestamp. Blocks for at most the window duration.
	Scan(window time.Duration, now time.Time) (presence.Observation, error)

	// Close releases radio resources.
	Close() error
}
