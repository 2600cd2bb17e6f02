package mqtt

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// offlineBufferCap bounds how many presence/system payloads are held
// while the broker is unreachable.
const offlineBufferCap = 32

// inboundQueueCap bounds how many inbound payloads can wait for the
// control loop between ticks.
const inboundQueueCap = 8

// RealClient talks to an actual MQTT broker.
type RealClient struct {
	client paho.Client
	topics Topics

	facultyID   int
	facultyName string

	mu      sync.Mutex
	offline *ringBuffer

	inbound chan InboundMessage
}

// NewRealClient connects to the broker, subscribes to the unit's
// messages and requests topics, and starts buffering outbound events
// across link outages. The client id carries a random suffix so two
// units configured with the same faculty id never evict each other from
// the broker.
func NewRealClient(broker string, facultyID int, facultyName string) (*RealClient, error) {
	c := &RealClient{
		topics:      TopicsFor(facultyID),
		facultyID:   facultyID,
		facultyName: facultyName,
		offline:     newRingBuffer(offlineBufferCap),
		inbound:     make(chan InboundMessage, inboundQueueCap),
	}

	clientID := fmt.Sprintf("desk-unit-%d-%s", facultyID, strings.Split(uuid.NewString(), "-")[0])
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

// onConnect runs on every (re)connection: re-establish subscriptions and
// replay anything buffered while offline.
func (c *RealClient) onConnect(client paho.Client) {
	for _, topic := range []string{c.topics.Messages, c.topics.Requests} {
		token := client.Subscribe(topic, 1, c.handleInbound)
		if err := waitToken(token, 5*time.Second); err != nil {
			log.Printf("mqtt: subscribe %s: %v", topic, err)
		}
	}

	c.mu.Lock()
	pending, dropped := c.offline.drainAll()
	c.mu.Unlock()
	if len(pending) == 0 {
		return
	}
	if dropped > 0 {
		log.Printf("mqtt: replaying %d buffered messages (%d dropped while offline)", len(pending), dropped)
	} else {
		log.Printf("mqtt: replaying %d buffered messages", len(pending))
	}
	for _, msg := range pending {
		if err := c.publish(msg.topic, msg.payload, msg.qos, msg.retained); err != nil {
			log.Printf("mqtt: replay to %s: %v", msg.topic, err)
		}
	}
}

// handleInbound runs on paho's callback goroutine; the payload is copied
// and queued for the control loop. A full queue drops the message — the
// loop is the single consumer and must never be blocked from here.
func (c *RealClient) handleInbound(_ paho.Client, m paho.Message) {
	payload := make([]byte, len(m.Payload()))
	copy(payload, m.Payload())

	select {
	case c.inbound <- InboundMessage{Topic: m.Topic(), Payload: payload}:
	default:
		log.Printf("mqtt: inbound queue full, dropping message from %s", m.Topic())
	}
}

// Inbound returns the channel of received messages. The control loop
// drains it once per tick.
func (c *RealClient) Inbound() <-chan InboundMessage {
	return c.inbound
}

// PublishStatus sends a presence update, retained so the central system
// sees the latest state immediately after its own restarts. While the
// link is down the update is buffered for replay.
func (c *RealClient) PublishStatus(update StatusUpdate) error {
	payload, err := FormatStatusPayload(update)
	if err != nil {
		return fmt.Errorf("format status payload: %w", err)
	}
	return c.publishOrBuffer(c.topics.Status, payload, 1, true)
}

// PublishSystem sends a system lifecycle event.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return c.publishOrBuffer(c.topics.System, payload, 1, event.Retained)
}

func (c *RealClient) publishOrBuffer(topic string, payload []byte, qos byte, retained bool) error {
	if !c.client.IsConnected() {
		c.mu.Lock()
		c.offline.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		n := c.offline.len()
		c.mu.Unlock()
		log.Printf("mqtt: broker unreachable, buffered message for %s (%d pending)", topic, n)
		return nil
	}
	return c.publish(topic, payload, qos, retained)
}

func (c *RealClient) publish(topic string, payload []byte, qos byte, retained bool) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if err := waitToken(token, 5*time.Second); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// waitToken resolves a paho operation, treating a timeout the same as a
// broker-reported error.
func waitToken(token paho.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("timeout after %v", timeout)
	}
	return token.Error()
}

// IsConnected reports whether the broker link is up.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
