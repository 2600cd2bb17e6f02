// Package led drives the presence indicator LED with hardware
// abstraction. The real implementation uses the Linux GPIO character
// device; the fake allows testing without hardware.
package led

// Driver sets the indicator LED state.
type Driver interface {
	// Set turns the LED on or off. The LED mirrors the debounced
	// presence state, not raw scans.
	Set(on bool) error

	// Close turns the LED off and releases GPIO resources.
	Close() error
}
