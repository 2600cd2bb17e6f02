//go:build !linux

package ble

import (
	"errors"
	"time"

	"github.com/consultease/desk-unit/internal/presence"
)

// RealScanner is not available on non-Linux platforms.
type RealScanner struct{}

// NewRealScanner returns an error on non-Linux platforms.
func NewRealScanner(macs []string) (*RealScanner, error) {
	return nil, errors.New("ble: not supported on this platform (requires Linux/BlueZ)")
}

// Scan is not implemented on non-Linux platforms.
func (s *RealScanner) Scan(window time.Duration, now time.Time) (presence.Observation, error) {
	return presence.Observation{}, errors.New("ble: not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *RealScanner) Close() error {
	return nil
}
