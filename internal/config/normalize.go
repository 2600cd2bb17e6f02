package config

// Defaults match the values the unit shipped with: a 3-second scan every
// 5 seconds, -80 dBm proximity cutoff, 3-scan debounce, 30-second
// absence timeout.
const (
	DefaultScanIntervalMs   = 5000
	DefaultScanWindowMs     = 3000
	DefaultRSSIThreshold    = -80
	DefaultDebounceCount    = 3
	DefaultSilenceTimeoutMs = 30000

	DefaultHeartbeatMs = 900000 // 15 minutes

	DefaultBufferBytes = 512
	DefaultLineWidth   = 35

	DefaultHeapLowWaterBytes      = 10000
	DefaultHeapCriticalWaterBytes = 5000
	DefaultHeapLogIntervalMs      = 30000
)

// Normalize fills zero values with defaults. It never overrides a value
// the file actually set, with one exception: RSSIThreshold of 0 is
// meaningless for RSSI (a beacon cannot be that loud) and is treated as
// unset.
func Normalize(cfg *Config) {
	if cfg.BLE.ScanIntervalMs == 0 {
		cfg.BLE.ScanIntervalMs = DefaultScanIntervalMs
	}
	if cfg.BLE.ScanWindowMs == 0 {
		cfg.BLE.ScanWindowMs = DefaultScanWindowMs
	}
	if cfg.BLE.RSSIThreshold == 0 {
		cfg.BLE.RSSIThreshold = DefaultRSSIThreshold
	}
	if cfg.BLE.DebounceCount == 0 {
		cfg.BLE.DebounceCount = DefaultDebounceCount
	}
	if cfg.BLE.SilenceTimeoutMs == 0 {
		cfg.BLE.SilenceTimeoutMs = DefaultSilenceTimeoutMs
	}

	if cfg.MQTT.HeartbeatMs == 0 {
		cfg.MQTT.HeartbeatMs = DefaultHeartbeatMs
	}

	if cfg.Display.BufferBytes == 0 {
		cfg.Display.BufferBytes = DefaultBufferBytes
	}
	if cfg.Display.LineWidth == 0 {
		cfg.Display.LineWidth = DefaultLineWidth
	}
	if cfg.Display.LEDPin == 0 {
		cfg.Display.LEDPin = -1
	}

	if cfg.Heap.LowWaterBytes == 0 {
		cfg.Heap.LowWaterBytes = DefaultHeapLowWaterBytes
	}
	if cfg.Heap.CriticalWaterBytes == 0 {
		cfg.Heap.CriticalWaterBytes = DefaultHeapCriticalWaterBytes
	}
	if cfg.Heap.LogIntervalMs == 0 {
		cfg.Heap.LogIntervalMs = DefaultHeapLogIntervalMs
	}
}
