// Package heapwatch samples free heap memory, tracks the historical
// minimum, and drives best-effort reclamation when pressure thresholds
// are crossed. The message pipeline consults it before doing work.
package heapwatch

import (
	"log"
	"runtime"
	"runtime/debug"
	"time"
)

// FreeFunc reports currently free heap bytes. Injectable so tests can
// script pressure scenarios.
type FreeFunc func() uint64

// RuntimeFree derives free heap bytes from the Go runtime: memory the
// runtime holds but is not using. The closest analogue to a free-heap
// counter on a machine without one.
func RuntimeFree() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapIdle - ms.HeapReleased
}

// Config holds the watchdog thresholds, fixed for the process lifetime.
type Config struct {
	// LowWater marks heap pressure; below it the unit should avoid
	// optional work.
	LowWater uint64
	// CriticalWater marks critical pressure; below it a reclaim attempt
	// is mandatory before any further allocation-heavy work.
	CriticalWater uint64
	// LogInterval bounds how often Sample emits a diagnostic line.
	LogInterval time.Duration
}

// Watchdog tracks heap statistics for the process. Not safe for
// concurrent use; the control loop is the only caller.
type Watchdog struct {
	cfg     Config
	free    FreeFunc
	minFree uint64
	sampled bool
	lastLog time.Time
}

// New creates a watchdog reading free memory through free. Pass
// RuntimeFree in production.
func New(cfg Config, free FreeFunc) *Watchdog {
	return &Watchdog{cfg: cfg, free: free}
}

// Sample reads free heap, updates the historical minimum, and logs
// {free, min} at most once per LogInterval. Returns the current free
// value. Never fails: persistent pressure is the failure signal.
func (w *Watchdog) Sample(now time.Time) uint64 {
	free := w.free()
	if !w.sampled || free < w.minFree {
		w.minFree = free
		w.sampled = true
	}
	if now.Sub(w.lastLog) >= w.cfg.LogInterval {
		log.Printf("heap: free=%d min=%d", free, w.minFree)
		w.lastLog = now
	}
	return free
}

// UnderPressure reports whether free is below the low-water mark.
func (w *Watchdog) UnderPressure(free uint64) bool {
	return free < w.cfg.LowWater
}

// Critical reports whether free is below the critical mark. When true
// the caller must attempt reclamation before proceeding.
func (w *Watchdog) Critical(free uint64) bool {
	return free < w.cfg.CriticalWater
}

// AttemptReclaim runs a bounded-cost reclamation cycle and reports the
// before/after free values. Best-effort only: callers must re-check
// Critical afterward and degrade rather than retry indefinitely.
func (w *Watchdog) AttemptReclaim() (before, after uint64) {
	before = w.free()
	w.reclaim()
	after = w.free()
	log.Printf("heap: reclaim %d -> %d bytes", before, after)
	return before, after
}

// reclaim is split out so tests can run the accounting without forcing a
// real GC cycle.
var reclaimHook func()

func (w *Watchdog) reclaim() {
	if reclaimHook != nil {
		reclaimHook()
		return
	}
	debug.FreeOSMemory()
}

// MinFree returns the lowest free value ever sampled, or 0 before the
// first sample.
func (w *Watchdog) MinFree() uint64 {
	if !w.sampled {
		return 0
	}
	return w.minFree
}

// Allow implements the pipeline's gate. Healthy heap passes straight
// through; critical pressure triggers one reclaim attempt, and the
// message is refused only if pressure remains critical afterward.
func (w *Watchdog) Allow() bool {
	free := w.free()
	if !w.Critical(free) {
		return true
	}
	_, after := w.AttemptReclaim()
	if w.Critical(after) {
		log.Printf("heap: still critical after reclaim (%d bytes), dropping work", after)
		return false
	}
	return true
}
