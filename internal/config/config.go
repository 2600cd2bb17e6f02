// Package config loads and validates the desk unit configuration. All
// values are fixed for the process lifetime once loaded.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Faculty FacultyConfig `yaml:"faculty"`
	BLE     BLEConfig     `yaml:"ble"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Display DisplayConfig `yaml:"display"`
	Heap    HeapConfig    `yaml:"heap"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// ---- FACULTY ----

type FacultyConfig struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
	// BeaconMACs lists the faculty member's registered beacon addresses,
	// "XX:XX:XX:XX:XX:XX", case insensitive.
	BeaconMACs []string `yaml:"beacon_macs"`
}

// ---- BLE / PRESENCE ----

type BLEConfig struct {
	ScanIntervalMs int `yaml:"scan_interval_ms"`
	ScanWindowMs   int `yaml:"scan_window_ms"`
	// RSSIThreshold is the weakest signal (dBm) still counted as
	// detected; higher values require closer proximity.
	RSSIThreshold int `yaml:"rssi_threshold"`
	// DebounceCount is the number of consecutive consistent scans
	// required to confirm presence or absence.
	DebounceCount    int `yaml:"debounce_count"`
	SilenceTimeoutMs int `yaml:"silence_timeout_ms"`
}

// ---- MQTT ----

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	HeartbeatMs int    `yaml:"heartbeat_ms"` // 0 disables
}

// ---- DISPLAY ----

type DisplayConfig struct {
	// BufferBytes is the capacity of the message accumulator and of the
	// display output buffer.
	BufferBytes int `yaml:"buffer_bytes"`
	// LineWidth is the word-wrap column for the attached screen.
	LineWidth int `yaml:"line_width"`
	// LEDPin is the BCM pin of the presence indicator LED; -1 disables.
	LEDPin int `yaml:"led_pin"`
}

// ---- HEAP ----

type HeapConfig struct {
	LowWaterBytes      int `yaml:"low_water_bytes"`
	CriticalWaterBytes int `yaml:"critical_water_bytes"`
	LogIntervalMs      int `yaml:"log_interval_ms"`
}

// ---- HTTP ----

type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables the status server
}

// Load reads and parses the YAML file at path, applies defaults, and
// validates. An empty path yields the defaults alone (still validated,
// so a faculty id must come from flags in that case).
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	Normalize(cfg)
	return cfg, nil
}
