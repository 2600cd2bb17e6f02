package presence

import "time"

// Machine turns noisy per-scan observations into a stable presence state.
// It starts ABSENT and requires DebounceCount consecutive consistent scans
// before flipping, except that silence (no observations at all) forces
// ABSENT immediately.
type Machine struct {
	cfg             Config
	current         State
	streak          State // classification of the running streak; "" when none
	streakCount     int
	lastObservation time.Time
	counts          Counts
}

// NewMachine creates a presence state machine. The startTime seeds the
// silence clock so a unit that never sees a beacon still times out.
func NewMachine(cfg Config, startTime time.Time) *Machine {
	return &Machine{
		cfg:             cfg,
		current:         StateAbsent,
		lastObservation: startTime,
	}
}

// Observe applies one observation and returns a state-change event if the
// debounce threshold was reached, nil otherwise.
func (m *Machine) Observe(obs Observation) *Event {
	m.lastObservation = obs.Time

	classified := StateAbsent
	if obs.IdentityMatch && obs.RSSI >= m.cfg.RSSIThreshold {
		classified = StatePresent
	}

	if classified == m.current {
		// Consistent with the stable state: any pending streak was noise.
		m.streak = ""
		m.streakCount = 0
		return nil
	}

	if classified != m.streak {
		// Contrary sample restarts the streak from scratch. A single
		// inconsistent scan resets progress entirely rather than decaying;
		// scan cycles arrive at a fixed cadence so counting them is
		// equivalent to a rolling time window.
		m.streak = classified
		m.streakCount = 1
	} else {
		m.streakCount++
	}

	if m.streakCount < m.cfg.DebounceCount {
		return nil
	}

	m.current = classified
	m.streak = ""
	m.streakCount = 0
	if classified == StatePresent {
		m.counts.Present++
	} else {
		m.counts.Absent++
	}
	return &Event{Timestamp: obs.Time, State: classified, Reason: ReasonDebounce}
}

// CheckSilence forces ABSENT when no observation has arrived within the
// silence timeout. A missing signal cannot be told apart from "moved away"
// and "radio fault", so silence outranks any pending streak. Returns an
// event only if the stable state actually changed.
func (m *Machine) CheckSilence(now time.Time) *Event {
	if m.cfg.SilenceTimeout <= 0 {
		return nil
	}
	if now.Sub(m.lastObservation) <= m.cfg.SilenceTimeout {
		return nil
	}

	m.streak = ""
	m.streakCount = 0

	if m.current == StateAbsent {
		return nil
	}
	m.current = StateAbsent
	m.counts.Absent++
	m.counts.SilenceDrops++
	return &Event{Timestamp: now, State: StateAbsent, Reason: ReasonSilence}
}

// Current returns the current stable state.
func (m *Machine) Current() State {
	return m.current
}

// StreakCount returns the length of the running contrary streak.
func (m *Machine) StreakCount() int {
	return m.streakCount
}

// LastObservation returns the time of the most recent observation.
func (m *Machine) LastObservation() time.Time {
	return m.lastObservation
}

// CountsSnapshot returns a copy of the transition counters.
func (m *Machine) CountsSnapshot() Counts {
	return m.counts
}
