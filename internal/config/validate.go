package config

import "fmt"

// maxBeaconMACs bounds the registered beacon list; the scanner compares
// every advertisement against it on every scan.
const maxBeaconMACs = 5

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.Faculty.ID <= 0 {
		return fmt.Errorf("faculty: id must be positive, got %d", cfg.Faculty.ID)
	}
	if cfg.Faculty.Name == "" {
		return fmt.Errorf("faculty: name is required")
	}

	if len(cfg.Faculty.BeaconMACs) == 0 {
		return fmt.Errorf("faculty: at least one beacon MAC is required")
	}
	if len(cfg.Faculty.BeaconMACs) > maxBeaconMACs {
		return fmt.Errorf("faculty: at most %d beacon MACs, got %d",
			maxBeaconMACs, len(cfg.Faculty.BeaconMACs))
	}
	for _, mac := range cfg.Faculty.BeaconMACs {
		if !validMAC(mac) {
			return fmt.Errorf("faculty: malformed beacon MAC %q", mac)
		}
	}

	if cfg.BLE.ScanIntervalMs <= 0 {
		return fmt.Errorf("ble: scan_interval_ms must be positive")
	}
	if cfg.BLE.ScanWindowMs <= 0 {
		return fmt.Errorf("ble: scan_window_ms must be positive")
	}
	if cfg.BLE.ScanWindowMs > cfg.BLE.ScanIntervalMs {
		return fmt.Errorf("ble: scan_window_ms (%d) exceeds scan_interval_ms (%d)",
			cfg.BLE.ScanWindowMs, cfg.BLE.ScanIntervalMs)
	}
	if cfg.BLE.RSSIThreshold >= 0 {
		return fmt.Errorf("ble: rssi_threshold must be negative dBm, got %d",
			cfg.BLE.RSSIThreshold)
	}
	if cfg.BLE.DebounceCount < 1 {
		return fmt.Errorf("ble: debounce_count must be at least 1")
	}
	if cfg.BLE.SilenceTimeoutMs < 0 {
		return fmt.Errorf("ble: silence_timeout_ms must not be negative")
	}

	if cfg.MQTT.Broker == "" {
		return fmt.Errorf("mqtt: broker is required")
	}

	if cfg.Display.BufferBytes < 16 {
		return fmt.Errorf("display: buffer_bytes must be at least 16, got %d",
			cfg.Display.BufferBytes)
	}
	if cfg.Display.LineWidth < 1 {
		return fmt.Errorf("display: line_width must be positive")
	}

	if cfg.Heap.CriticalWaterBytes <= 0 {
		return fmt.Errorf("heap: critical_water_bytes must be positive")
	}
	if cfg.Heap.CriticalWaterBytes >= cfg.Heap.LowWaterBytes {
		return fmt.Errorf("heap: critical_water_bytes (%d) must be below low_water_bytes (%d)",
			cfg.Heap.CriticalWaterBytes, cfg.Heap.LowWaterBytes)
	}

	return nil
}

// validMAC accepts "XX:XX:XX:XX:XX:XX", case insensitive.
func validMAC(mac string) bool {
	if len(mac) != 17 {
		return false
	}
	for i := 0; i < len(mac); i++ {
		if (i+1)%3 == 0 {
			if mac[i] != ':' {
				return false
			}
			continue
		}
		if !isHexDigit(mac[i]) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}
