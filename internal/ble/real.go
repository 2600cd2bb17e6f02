//go:build linux

package ble

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/consultease/desk-unit/internal/presence"
)

// RealScanner scans for beacon advertisements using the system Bluetooth
// adapter (BlueZ over D-Bus).
type RealScanner struct {
	adapter *bluetooth.Adapter
	macs    map[string]bool // registered beacon MACs, uppercased
}

// NewRealScanner enables the default adapter and registers the faculty
// member's beacon MAC addresses.
func NewRealScanner(macs []string) (*RealScanner, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enable bluetooth adapter: %w", err)
	}

	set := make(map[string]bool, len(macs))
	for _, m := range macs {
		set[strings.ToUpper(m)] = true
	}
	return &RealScanner{adapter: adapter, macs: set}, nil
}

// Scan runs one scan window and reduces everything heard to a single
// observation: the strongest advertisement from a registered beacon if
// any was seen, else a not-detected reading. Blocks until the window
// elapses.
func (s *RealScanner) Scan(window time.Duration, now time.Time) (presence.Observation, error) {
	var mu sync.Mutex
	best := presence.Observation{IdentityMatch: false, RSSI: NoSignalRSSI, Time: now}

	stop := time.AfterFunc(window, func() {
		// StopScan unblocks the Scan call below.
		s.adapter.StopScan()
	})
	defer stop.Stop()

	err := s.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		match := s.macs[strings.ToUpper(result.Address.String())]
		rssi := int(result.RSSI)

		mu.Lock()
		defer mu.Unlock()
		if match && !best.IdentityMatch {
			// A registered beacon always beats any stranger.
			best = presence.Observation{IdentityMatch: true, RSSI: rssi, Time: now}
			return
		}
		if match == best.IdentityMatch && rssi > best.RSSI {
			best.RSSI = rssi
		}
	})
	if err != nil {
		return presence.Observation{IdentityMatch: false, RSSI: NoSignalRSSI, Time: now},
			fmt.Errorf("ble scan: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	return best, nil
}

// Close stops any in-flight scan. The adapter itself is shared system
// state and stays enabled.
func (s *RealScanner) Close() error {
	s.adapter.StopScan()
	return nil
}
