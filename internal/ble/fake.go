package ble

import (
	"errors"
	"time"

	"github.com/consultease/desk-unit/internal/presence"
)

// FakeScanner is a test double that returns scripted observations.
type FakeScanner struct {
	// Samples contains scripted observations to return. Each call to
	// Scan consumes the next sample; once exhausted the last sample is
	// returned repeatedly. The Time field of each sample is overwritten
	// with the caller's timestamp.
	Samples []presence.Observation

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ScanError, if set, will be returned by Scan
	ScanError error

	// FailFrom delays ScanError until that many scans have succeeded.
	// Zero means ScanError applies from the first scan.
	FailFrom int

	// calls counts Scan invocations
	calls int
}

// NewFakeScanner creates a FakeScanner with the given samples.
func NewFakeScanner(samples []presence.Observation) *FakeScanner {
	return &FakeScanner{Samples: samples}
}

// Scan returns the next scripted observation.
func (f *FakeScanner) Scan(window time.Duration, now time.Time) (presence.Observation, error) {
	if f.ScanError != nil && f.calls >= f.FailFrom {
		return presence.Observation{}, f.ScanError
	}
	f.calls++
	if len(f.Samples) == 0 {
		return presence.Observation{}, errors.New("no samples configured")
	}

	obs := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	obs.Time = now
	return obs, nil
}

// Close marks the scanner as closed.
func (f *FakeScanner) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the scanner to the beginning of samples.
func (f *FakeScanner) Reset() {
	f.index = 0
	f.calls = 0
	f.Closed = false
}
