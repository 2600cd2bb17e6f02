package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/consultease/desk-unit/internal/presence"
	"github.com/consultease/desk-unit/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	cfg := status.Config{
		FacultyID:        3,
		FacultyName:      "Jeysibn",
		ScanIntervalMs:   5000,
		ScanWindowMs:     3000,
		DebounceCount:    3,
		SilenceTimeoutMs: 30000,
		RSSIThreshold:    -80,
		HeartbeatMs:      900000,
		Broker:           "tcp://172.20.10.8:1883",
		HTTPAddr:         ":8080",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.UpdatePresence(presence.StatePresent, 0, presence.Counts{Present: 2, Absent: 1}, time.Now())
	tr.UpdateHeap(18000, 12000)
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.Presence != "PRESENT" {
		t.Errorf("presence: got %q, want PRESENT", sj.Status.Presence)
	}
	if sj.Status.Counts.Present != 2 {
		t.Errorf("present count: got %d, want 2", sj.Status.Counts.Present)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("mqtt: expected connected")
	}
	if sj.Status.Heap.FreeBytes != 18000 {
		t.Errorf("heap free: got %d, want 18000", sj.Status.Heap.FreeBytes)
	}
}

func TestIndexPage(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.UpdatePresence(presence.StateAbsent, 1, presence.Counts{}, time.Now())
	tr.MessageProcessed("Student: Alice\nCourse: CS101\n")

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	html := string(body)

	for _, want := range []string{"Jeysibn", "ABSENT", "Student: Alice", "tcp://172.20.10.8:1883"} {
		if !strings.Contains(html, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestUnknownPathIs404(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestIndexPageEscapesMessage(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.MessageProcessed("<script>alert(1)</script>")

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(body), "<script>alert(1)</script>") {
		t.Error("message content must be HTML-escaped")
	}
}
