// Package status provides a thread-safe status tracker for the desk-unit
// daemon. It is read by the HTTP handlers and serialized into system
// event payloads.
package status

import (
	"sync"
	"time"

	"github.com/consultease/desk-unit/internal/presence"
)

// Config contains daemon configuration for display.
type Config struct {
	FacultyID        int
	FacultyName      string
	ScanIntervalMs   int64
	ScanWindowMs     int64
	DebounceCount    int
	SilenceTimeoutMs int64
	RSSIThreshold    int
	HeartbeatMs      int64
	Broker           string
	HTTPAddr         string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Presence        presence.State
	StreakCount     int
	LastObservation time.Time
	Counts          presence.Counts

	HeapFree uint64
	HeapMin  uint64

	MessagesProcessed int
	MessagesDropped   int
	LastMessage       string

	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Presence:  presence.StateAbsent,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// UpdatePresence sets the presence state, streak, counters, and last
// observation time. Called from the control loop on every tick.
func (t *Tracker) UpdatePresence(state presence.State, streak int, counts presence.Counts, lastObs time.Time) {
	t.mu.Lock()
	t.snap.Presence = state
	t.snap.StreakCount = streak
	t.snap.Counts = counts
	t.snap.LastObservation = lastObs
	t.mu.Unlock()
}

// UpdateHeap sets the heap statistics.
func (t *Tracker) UpdateHeap(free, min uint64) {
	t.mu.Lock()
	t.snap.HeapFree = free
	t.snap.HeapMin = min
	t.mu.Unlock()
}

// MessageProcessed records a successfully rendered inbound message.
func (t *Tracker) MessageProcessed(rendered string) {
	t.mu.Lock()
	t.snap.MessagesProcessed++
	t.snap.LastMessage = rendered
	t.mu.Unlock()
}

// MessageDropped records an inbound message refused under heap pressure.
func (t *Tracker) MessageDropped() {
	t.mu.Lock()
	t.snap.MessagesDropped++
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
