package mqtt

// FakeClient records published events for test assertions and lets tests
// inject inbound messages.
type FakeClient struct {
	// StatusUpdates contains all presence updates that were published.
	StatusUpdates []StatusUpdate

	// StatusPayloads contains the JSON payloads for presence updates.
	StatusPayloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishStatusError, if set, will be returned by PublishStatus.
	PublishStatusError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	// InboundCh delivers messages pushed via PushInbound.
	InboundCh chan InboundMessage
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{InboundCh: make(chan InboundMessage, 16)}
}

// PublishStatus records the presence update.
func (f *FakeClient) PublishStatus(update StatusUpdate) error {
	if f.PublishStatusError != nil {
		return f.PublishStatusError
	}

	f.StatusUpdates = append(f.StatusUpdates, update)

	payload, err := FormatStatusPayload(update)
	if err != nil {
		return err
	}
	f.StatusPayloads = append(f.StatusPayloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakeClient) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Inbound returns the test-controlled inbound channel.
func (f *FakeClient) Inbound() <-chan InboundMessage {
	return f.InboundCh
}

// PushInbound queues a message as if it arrived from the broker.
func (f *FakeClient) PushInbound(topic string, payload []byte) {
	f.InboundCh <- InboundMessage{Topic: topic, Payload: payload}
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded events.
func (f *FakeClient) Reset() {
	f.StatusUpdates = nil
	f.StatusPayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishStatusError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
