package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event             string     `json:"event,omitempty"`
	Reason            string     `json:"reason,omitempty"`
	FacultyID         int        `json:"faculty_id"`
	FacultyName       string     `json:"faculty_name"`
	Presence          string     `json:"presence"`
	StreakCount       int        `json:"streak_count"`
	LastObservation   string     `json:"last_observation,omitempty"`
	UptimeSeconds     int64      `json:"uptime_seconds"`
	StartTime         string     `json:"start_time"`
	Timestamp         string     `json:"timestamp"`
	MQTT              MQTTStatus `json:"mqtt"`
	Heap              HeapJSON   `json:"heap"`
	Counts            CountsJSON `json:"transition_counts"`
	MessagesProcessed int        `json:"messages_processed"`
	MessagesDropped   int        `json:"messages_dropped"`
	LastMessage       string     `json:"last_message,omitempty"`
	Config            ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// HeapJSON is the JSON representation of heap statistics.
type HeapJSON struct {
	FreeBytes    uint64 `json:"free_bytes"`
	MinFreeBytes uint64 `json:"min_free_bytes"`
}

// CountsJSON is the JSON representation of transition counts.
type CountsJSON struct {
	Present      int `json:"present"`
	Absent       int `json:"absent"`
	SilenceDrops int `json:"silence_drops"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	ScanIntervalMs   int64  `json:"scan_interval_ms"`
	ScanWindowMs     int64  `json:"scan_window_ms"`
	DebounceCount    int    `json:"debounce_count"`
	SilenceTimeoutMs int64  `json:"silence_timeout_ms"`
	RSSIThreshold    int    `json:"rssi_threshold"`
	HeartbeatMs      int64  `json:"heartbeat_ms"`
	Broker           string `json:"broker"`
	HTTPAddr         string `json:"http_addr,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	p := string(snap.Presence)
	if p == "" {
		p = "UNKNOWN"
	}

	lastObs := ""
	if !snap.LastObservation.IsZero() {
		lastObs = snap.LastObservation.UTC().Format(time.RFC3339)
	}

	return StatusInner{
		FacultyID:       snap.Config.FacultyID,
		FacultyName:     snap.Config.FacultyName,
		Presence:        p,
		StreakCount:     snap.StreakCount,
		LastObservation: lastObs,
		UptimeSeconds:   int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:       snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:       snap.Now.UTC().Format(time.RFC3339),
		MQTT:            MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Heap:            HeapJSON{FreeBytes: snap.HeapFree, MinFreeBytes: snap.HeapMin},
		Counts: CountsJSON{
			Present:      snap.Counts.Present,
			Absent:       snap.Counts.Absent,
			SilenceDrops: snap.Counts.SilenceDrops,
		},
		MessagesProcessed: snap.MessagesProcessed,
		MessagesDropped:   snap.MessagesDropped,
		LastMessage:       snap.LastMessage,
		Config: ConfigJSON{
			ScanIntervalMs:   snap.Config.ScanIntervalMs,
			ScanWindowMs:     snap.Config.ScanWindowMs,
			DebounceCount:    snap.Config.DebounceCount,
			SilenceTimeoutMs: snap.Config.SilenceTimeoutMs,
			RSSIThreshold:    snap.Config.RSSIThreshold,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
		},
	}
}

// FormatStatusEvent serializes a snapshot as a system event payload with
// the given event name and optional reason.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

// FormatJSON serializes a snapshot for the HTTP status endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}
