package ble

import (
	"errors"
	"testing"
	"time"

	"github.com/consultease/desk-unit/internal/presence"
)

func TestFakeScannerReturnsSamplesInOrder(t *testing.T) {
	samples := []presence.Observation{
		{IdentityMatch: true, RSSI: -60},
		{IdentityMatch: false, RSSI: -90},
	}
	f := NewFakeScanner(samples)
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	obs, err := f.Scan(3*time.Second, now)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if !obs.IdentityMatch || obs.RSSI != -60 {
		t.Errorf("first sample: got %+v", obs)
	}
	if !obs.Time.Equal(now) {
		t.Errorf("timestamp not stamped: got %v, want %v", obs.Time, now)
	}

	obs, err = f.Scan(3*time.Second, now.Add(5*time.Second))
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if obs.IdentityMatch || obs.RSSI != -90 {
		t.Errorf("second sample: got %+v", obs)
	}
}

func TestFakeScannerRepeatsLastSample(t *testing.T) {
	f := NewFakeScanner([]presence.Observation{{IdentityMatch: true, RSSI: -70}})
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		obs, err := f.Scan(3*time.Second, now)
		if err != nil {
			t.Fatalf("scan %d error: %v", i, err)
		}
		if !obs.IdentityMatch || obs.RSSI != -70 {
			t.Errorf("scan %d: got %+v", i, obs)
		}
	}
}

func TestFakeScannerNoSamples(t *testing.T) {
	f := NewFakeScanner(nil)
	if _, err := f.Scan(3*time.Second, time.Now()); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeScannerError(t *testing.T) {
	f := NewFakeScanner([]presence.Observation{{IdentityMatch: true, RSSI: -70}})
	f.ScanError = errors.New("radio fault")
	if _, err := f.Scan(3*time.Second, time.Now()); err == nil {
		t.Error("expected scripted error")
	}
}

func TestFakeScannerFailFrom(t *testing.T) {
	f := NewFakeScanner([]presence.Observation{{IdentityMatch: true, RSSI: -70}})
	f.ScanError = errors.New("radio fault")
	f.FailFrom = 2
	now := time.Now()

	for i := 0; i < 2; i++ {
		if _, err := f.Scan(time.Second, now); err != nil {
			t.Fatalf("scan %d error: %v", i, err)
		}
	}
	if _, err := f.Scan(time.Second, now); err == nil {
		t.Error("expected error after FailFrom scans")
	}
}

func TestFakeScannerReset(t *testing.T) {
	f := NewFakeScanner([]presence.Observation{
		{RSSI: -60},
		{RSSI: -70},
	})
	now := time.Now()
	f.Scan(time.Second, now)
	f.Scan(time.Second, now)
	f.Close()

	f.Reset()
	if f.Closed {
		t.Error("reset must clear Closed")
	}
	obs, _ := f.Scan(time.Second, now)
	if obs.RSSI != -60 {
		t.Errorf("after reset: got RSSI %d, want -60", obs.RSSI)
	}
}
