// Command desk-unit scans for the faculty member's BLE beacon, debounces
// the noisy scans into a stable presence state, and relays that state —
// plus inbound consultation messages rendered for the desk display — to
// the central system over MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/consultease/desk-unit/internal/ble"
	"github.com/consultease/desk-unit/internal/config"
	"github.com/consultease/desk-unit/internal/heapwatch"
	"github.com/consultease/desk-unit/internal/led"
	"github.com/consultease/desk-unit/internal/mqtt"
	"github.com/consultease/desk-unit/internal/presence"
	"github.com/consultease/desk-unit/internal/status"
	"github.com/consultease/desk-unit/internal/textproc"
	"github.com/consultease/desk-unit/internal/web"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", `HTTP status address (overrides config, "off" disables)`)
	scanOnce := flag.Bool("scan-once", false, "Run a single scan window, print the observation, and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if *broker != "" {
		cfg.MQTT.Broker = *broker
	}
	switch *httpAddr {
	case "":
	case "off":
		cfg.HTTP.Addr = ""
	default:
		cfg.HTTP.Addr = *httpAddr
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("fatal: invalid config: %v", err)
	}

	if err := run(cfg, *scanOnce); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg *config.Config, scanOnce bool) error {
	scanWindow := time.Duration(cfg.BLE.ScanWindowMs) * time.Millisecond

	// Initialize the radio
	scanner, err := ble.NewRealScanner(cfg.Faculty.BeaconMACs)
	if err != nil {
		return fmt.Errorf("init ble: %w", err)
	}
	defer scanner.Close()

	// Scan-once mode
	if scanOnce {
		obs, err := scanner.Scan(scanWindow, time.Now())
		if err != nil {
			return fmt.Errorf("ble scan: %w", err)
		}
		fmt.Printf("match: %v, rssi: %d dBm\n", obs.IdentityMatch, obs.RSSI)
		return nil
	}

	// Initialize the presence LED (optional)
	var indicator led.Driver
	if cfg.Display.LEDPin >= 0 {
		d, err := led.NewRealDriver(cfg.Display.LEDPin)
		if err != nil {
			log.Printf("led disabled: %v", err)
		} else {
			indicator = d
			defer d.Close()
		}
	}

	// Initialize MQTT
	client, err := mqtt.NewRealClient(cfg.MQTT.Broker, cfg.Faculty.ID, cfg.Faculty.Name)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer client.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		FacultyID:        cfg.Faculty.ID,
		FacultyName:      cfg.Faculty.Name,
		ScanIntervalMs:   int64(cfg.BLE.ScanIntervalMs),
		ScanWindowMs:     int64(cfg.BLE.ScanWindowMs),
		DebounceCount:    cfg.BLE.DebounceCount,
		SilenceTimeoutMs: int64(cfg.BLE.SilenceTimeoutMs),
		RSSIThreshold:    cfg.BLE.RSSIThreshold,
		HeartbeatMs:      int64(cfg.MQTT.HeartbeatMs),
		Broker:           cfg.MQTT.Broker,
		HTTPAddr:         cfg.HTTP.Addr,
	})

	watchdog := heapwatch.New(heapwatch.Config{
		LowWater:      uint64(cfg.Heap.LowWaterBytes),
		CriticalWater: uint64(cfg.Heap.CriticalWaterBytes),
		LogInterval:   time.Duration(cfg.Heap.LogIntervalMs) * time.Millisecond,
	}, heapwatch.RuntimeFree)

	acc := textproc.NewAccumulator(cfg.Display.BufferBytes)
	pipe := textproc.NewPipeline(acc, watchdog)

	// Publish startup event with full status snapshot
	tracker.SetMQTTConnected(client.IsConnected())
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := client.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: faculty=%d scan=%dms/%dms debounce=%d broker=%s",
		cfg.Faculty.ID, cfg.BLE.ScanIntervalMs, cfg.BLE.ScanWindowMs,
		cfg.BLE.DebounceCount, cfg.MQTT.Broker)

	ticker := time.NewTicker(time.Duration(cfg.BLE.ScanIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	u := &unit{
		scanner:    scanner,
		publisher:  client,
		connStatus: client,
		inbound:    client.Inbound(),
		indicator:  indicator,
		tracker:    tracker,
		machine: presence.NewMachine(presence.Config{
			DebounceCount:  cfg.BLE.DebounceCount,
			SilenceTimeout: time.Duration(cfg.BLE.SilenceTimeoutMs) * time.Millisecond,
			RSSIThreshold:  cfg.BLE.RSSIThreshold,
		}, time.Now()),
		pipe:     pipe,
		acc:      acc,
		watchdog: watchdog,
		cfg:      cfg,
		out:      make([]byte, cfg.Display.BufferBytes),
	}
	return runLoop(u, time.Now, ticker.C, sigCh)
}

// unit bundles the collaborators the control loop drives. The loop is
// single-threaded: every step below must return quickly so the radio
// and the broker keep-alives are serviced on time.
type unit struct {
	scanner    ble.Scanner
	publisher  mqtt.Publisher
	connStatus mqtt.ConnectionStatus
	inbound    <-chan mqtt.InboundMessage
	indicator  led.Driver // nil when no LED is configured
	tracker    *status.Tracker
	machine    *presence.Machine
	pipe       *textproc.Pipeline
	acc        *textproc.Accumulator
	watchdog   *heapwatch.Watchdog
	cfg        *config.Config
	out        []byte // display output buffer, reused across messages
}

func runLoop(u *unit, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	heartbeat := time.Duration(u.cfg.MQTT.HeartbeatMs) * time.Millisecond
	scanWindow := time.Duration(u.cfg.BLE.ScanWindowMs) * time.Millisecond
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if u.tracker != nil {
				if u.connStatus != nil {
					u.tracker.SetMQTTConnected(u.connStatus.IsConnected())
				}
				snap := u.tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := u.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			if u.indicator != nil {
				u.indicator.Set(false)
			}
			return nil

		case <-tick:
			t := now()

			obs, err := u.scanner.Scan(scanWindow, t)
			if err != nil {
				log.Printf("ble scan error: %v", err)
			} else if ev := u.machine.Observe(obs); ev != nil {
				u.handleTransition(ev)
			}

			// Silence outranks whatever the scan said: a dead radio and
			// a departed beacon look identical from here.
			if ev := u.machine.CheckSilence(t); ev != nil {
				u.handleTransition(ev)
			}

			// Drain whatever the broker delivered since the last tick.
			for drained := false; !drained; {
				select {
				case msg := <-u.inbound:
					u.handleInbound(msg)
				default:
					drained = true
				}
			}

			free := u.watchdog.Sample(t)
			u.tracker.UpdateHeap(free, u.watchdog.MinFree())
			u.tracker.UpdatePresence(u.machine.Current(), u.machine.StreakCount(),
				u.machine.CountsSnapshot(), u.machine.LastObservation())
			if u.connStatus != nil {
				u.tracker.SetMQTTConnected(u.connStatus.IsConnected())
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				snap := u.tracker.Snapshot()
				log.Printf("heartbeat: uptime=%v presence=%s heap_free=%d heap_min=%d",
					snap.Uptime().Truncate(time.Second), snap.Presence, snap.HeapFree, snap.HeapMin)
				hbEvent := mqtt.SystemEvent{
					Timestamp:  t,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := u.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// handleTransition publishes a debounced presence change and mirrors it
// on the LED.
func (u *unit) handleTransition(ev *presence.Event) {
	log.Printf("presence: %s (%s)", ev.State, ev.Reason)

	update := mqtt.StatusUpdate{
		FacultyID:   u.cfg.Faculty.ID,
		FacultyName: u.cfg.Faculty.Name,
		State:       ev.State,
		Reason:      ev.Reason,
		Timestamp:   ev.Timestamp,
	}
	if err := u.publisher.PublishStatus(update); err != nil {
		log.Printf("publish status error: %v", err)
		// Don't crash on publish failure
	}

	if u.indicator != nil {
		if err := u.indicator.Set(ev.State == presence.StatePresent); err != nil {
			log.Printf("led error: %v", err)
		}
	}
}

// handleInbound renders one consultation payload for the display. Under
// persistent heap pressure the message is dropped, not queued: the
// central system re-sends anything that matters.
func (u *unit) handleInbound(msg mqtt.InboundMessage) {
	n, ok := u.pipe.Process(msg.Payload, u.out)
	if !ok {
		log.Printf("message dropped under heap pressure (topic %s)", msg.Topic)
		u.tracker.MessageDropped()
		return
	}

	if !textproc.WrapText(u.acc, u.out[:n], u.cfg.Display.LineWidth) {
		log.Printf("message truncated during wrap (topic %s)", msg.Topic)
	}
	rendered := u.acc.String()
	log.Printf("message for display (%d bytes)", len(rendered))
	u.tracker.MessageProcessed(rendered)
}
