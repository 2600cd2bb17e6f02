package presence

import (
	"testing"
	"time"
)

var testConfig = Config{
	DebounceCount:  3,
	SilenceTimeout: 30 * time.Second,
	RSSIThreshold:  -80,
}

func detected(t time.Time) Observation {
	return Observation{IdentityMatch: true, RSSI: -60, Time: t}
}

func notDetected(t time.Time) Observation {
	return Observation{IdentityMatch: false, RSSI: -60, Time: t}
}

// feed pushes observations at a 5-second cadence starting at start and
// returns all emitted events.
func feed(m *Machine, start time.Time, obs ...Observation) []*Event {
	var events []*Event
	for _, o := range obs {
		if ev := m.Observe(o); ev != nil {
			events = append(events, ev)
		}
	}
	_ = start
	return events
}

func TestNewMachineStartsAbsent(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	m := NewMachine(testConfig, start)
	if m.Current() != StateAbsent {
		t.Errorf("initial state: got %s, want %s", m.Current(), StateAbsent)
	}
	if !m.LastObservation().Equal(start) {
		t.Errorf("lastObservation: got %v, want %v", m.LastObservation(), start)
	}
}

func TestFlipsToPresentOnNthScan(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	m := NewMachine(testConfig, start)

	var events []*Event
	for i := 0; i < testConfig.DebounceCount; i++ {
		ts := start.Add(time.Duration(i) * 5 * time.Second)
		ev := m.Observe(detected(ts))
		if ev != nil {
			events = append(events, ev)
		}
		wantState := StateAbsent
		if i == testConfig.DebounceCount-1 {
			wantState = StatePresent
		}
		if m.Current() != wantState {
			t.Errorf("scan %d: state got %s, want %s", i, m.Current(), wantState)
		}
	}

	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(events))
	}
	if events[0].State != StatePresent {
		t.Errorf("event state: got %s, want %s", events[0].State, StatePresent)
	}
	if events[0].Reason != ReasonDebounce {
		t.Errorf("event reason: got %s, want %s", events[0].Reason, ReasonDebounce)
	}
	if m.StreakCount() != 0 {
		t.Errorf("streak count after flip: got %d, want 0", m.StreakCount())
	}
}

func TestContraryScanResetsStreak(t *testing.T) {
	// detected, detected, not-detected, detected from ABSENT: still ABSENT;
	// two more detected scans are needed to flip.
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	m := NewMachine(testConfig, start)

	ts := func(i int) time.Time { return start.Add(time.Duration(i) * 5 * time.Second) }

	events := feed(m, start,
		detected(ts(0)),
		detected(ts(1)),
		notDetected(ts(2)),
		detected(ts(3)),
	)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
	if m.Current() != StateAbsent {
		t.Errorf("state: got %s, want %s", m.Current(), StateAbsent)
	}
	if m.StreakCount() != 1 {
		t.Errorf("streak count: got %d, want 1", m.StreakCount())
	}

	events = feed(m, start, detected(ts(4)), detected(ts(5)))
	if len(events) != 1 {
		t.Fatalf("expected 1 event after streak rebuilt, got %d", len(events))
	}
	if m.Current() != StatePresent {
		t.Errorf("state: got %s, want %s", m.Current(), StatePresent)
	}
}

func TestWeakSignalCountsAsNotDetected(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	m := NewMachine(testConfig, start)

	// Identity matches but the beacon is too far away.
	weak := Observation{IdentityMatch: true, RSSI: -90, Time: start}
	for i := 0; i < 10; i++ {
		weak.Time = start.Add(time.Duration(i) * 5 * time.Second)
		if ev := m.Observe(weak); ev != nil {
			t.Fatalf("scan %d: unexpected event %+v", i, ev)
		}
	}
	if m.Current() != StateAbsent {
		t.Errorf("state: got %s, want %s", m.Current(), StateAbsent)
	}
}

func TestThresholdBoundaryIsDetected(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	m := NewMachine(testConfig, start)

	// RSSI exactly at the threshold counts as detected.
	at := Observation{IdentityMatch: true, RSSI: testConfig.RSSIThreshold, Time: start}
	m.Observe(at)
	if m.StreakCount() != 1 {
		t.Errorf("streak count: got %d, want 1", m.StreakCount())
	}
}

func TestDebounceBackToAbsent(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	m := NewMachine(testConfig, start)
	ts := func(i int) time.Time { return start.Add(time.Duration(i) * 5 * time.Second) }

	feed(m, start, detected(ts(0)), detected(ts(1)), detected(ts(2)))
	if m.Current() != StatePresent {
		t.Fatalf("setup: expected PRESENT, got %s", m.Current())
	}

	events := feed(m, start, notDetected(ts(3)), notDetected(ts(4)), notDetected(ts(5)))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].State != StateAbsent {
		t.Errorf("event state: got %s, want %s", events[0].State, StateAbsent)
	}

	counts := m.CountsSnapshot()
	if counts.Present != 1 || counts.Absent != 1 {
		t.Errorf("counts: got %+v, want Present=1 Absent=1", counts)
	}
}

func TestSilenceForcesAbsent(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	m := NewMachine(testConfig, start)
	ts := func(i int) time.Time { return start.Add(time.Duration(i) * 5 * time.Second) }

	feed(m, start, detected(ts(0)), detected(ts(1)), detected(ts(2)))
	if m.Current() != StatePresent {
		t.Fatalf("setup: expected PRESENT, got %s", m.Current())
	}

	// Just inside the timeout: nothing happens.
	if ev := m.CheckSilence(ts(2).Add(testConfig.SilenceTimeout)); ev != nil {
		t.Fatalf("unexpected event at timeout boundary: %+v", ev)
	}
	if m.Current() != StatePresent {
		t.Errorf("state at boundary: got %s, want %s", m.Current(), StatePresent)
	}

	// Past the timeout: forced ABSENT with zero not-detected samples seen.
	ev := m.CheckSilence(ts(2).Add(testConfig.SilenceTimeout + time.Second))
	if ev == nil {
		t.Fatal("expected silence event, got nil")
	}
	if ev.State != StateAbsent {
		t.Errorf("event state: got %s, want %s", ev.State, StateAbsent)
	}
	if ev.Reason != ReasonSilence {
		t.Errorf("event reason: got %s, want %s", ev.Reason, ReasonSilence)
	}

	counts := m.CountsSnapshot()
	if counts.SilenceDrops != 1 {
		t.Errorf("silence drops: got %d, want 1", counts.SilenceDrops)
	}
}

func TestSilenceWhileAbsentEmitsNothingButClearsStreak(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	m := NewMachine(testConfig, start)
	ts := func(i int) time.Time { return start.Add(time.Duration(i) * 5 * time.Second) }

	// Partial streak toward PRESENT.
	feed(m, start, detected(ts(0)), detected(ts(1)))
	if m.StreakCount() != 2 {
		t.Fatalf("setup: streak got %d, want 2", m.StreakCount())
	}

	ev := m.CheckSilence(ts(1).Add(testConfig.SilenceTimeout + time.Second))
	if ev != nil {
		t.Errorf("expected no event while already ABSENT, got %+v", ev)
	}
	if m.StreakCount() != 0 {
		t.Errorf("streak should be cleared by silence, got %d", m.StreakCount())
	}

	// The earlier partial streak must not count toward the next flip.
	events := feed(m, start, detected(ts(10)))
	if len(events) != 0 {
		t.Errorf("expected no event after one scan, got %d", len(events))
	}
}

func TestSilenceDisabledWhenTimeoutZero(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	cfg := testConfig
	cfg.SilenceTimeout = 0
	m := NewMachine(cfg, start)

	if ev := m.CheckSilence(start.Add(24 * time.Hour)); ev != nil {
		t.Errorf("expected silence disabled, got %+v", ev)
	}
}

func TestEveryObservationUpdatesLastObservation(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	m := NewMachine(testConfig, start)

	// A not-detected sample still counts as contact with the scanner.
	ts := start.Add(5 * time.Second)
	m.Observe(notDetected(ts))
	if !m.LastObservation().Equal(ts) {
		t.Errorf("lastObservation: got %v, want %v", m.LastObservation(), ts)
	}

	if ev := m.CheckSilence(ts.Add(testConfig.SilenceTimeout - time.Second)); ev != nil {
		t.Errorf("silence should be measured from the last observation, got %+v", ev)
	}
}

func TestNoFlapOnAlternatingScans(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	m := NewMachine(testConfig, start)

	for i := 0; i < 20; i++ {
		ts := start.Add(time.Duration(i) * 5 * time.Second)
		var ev *Event
		if i%2 == 0 {
			ev = m.Observe(detected(ts))
		} else {
			ev = m.Observe(notDetected(ts))
		}
		if ev != nil {
			t.Fatalf("scan %d: alternating scans must never flip state, got %+v", i, ev)
		}
	}
	if m.Current() != StateAbsent {
		t.Errorf("state: got %s, want %s", m.Current(), StateAbsent)
	}
}
