package led

// FakeDriver records LED states for test assertions.
type FakeDriver struct {
	// States contains every value passed to Set, in order.
	States []bool

	// Closed tracks if Close was called.
	Closed bool

	// SetError, if set, will be returned by Set.
	SetError error
}

// NewFakeDriver creates a FakeDriver for testing.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Set records the requested state.
func (f *FakeDriver) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.States = append(f.States, on)
	return nil
}

// Current returns the last state set, or false if Set was never called.
func (f *FakeDriver) Current() bool {
	if len(f.States) == 0 {
		return false
	}
	return f.States[len(f.States)-1]
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}
