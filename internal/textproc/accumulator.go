// Package textproc contains the bounded text-assembly core for the desk
// display: a fixed-capacity accumulator and the message pipeline that
// renders inbound consultation payloads into display buffers. Like the
// presence package it is pure logic with no external dependencies; all
// buffers are allocated once and reused.
package textproc

// Accumulator is a fixed-capacity append-only text buffer with overflow
// rejection. The final byte is reserved as a NUL terminator so the content
// can be handed to display firmware that expects C strings; Len never
// exceeds Cap-1. Not safe for concurrent use — single-owner by design.
type Accumulator struct {
	buf []byte
	n   int
}

// NewAccumulator creates an accumulator holding at most capacity-1 bytes
// of content. The backing array is allocated here and never grows.
func NewAccumulator(capacity int) *Accumulator {
	if capacity < 2 {
		capacity = 2
	}
	return &Accumulator{buf: make([]byte, capacity)}
}

// Reset empties the accumulator and zero-fills the backing array so stale
// content can never leak through a partial read of the raw buffer.
func (a *Accumulator) Reset() {
	for i := range a.buf {
		a.buf[i] = 0
	}
	a.n = 0
}

// AppendByte appends a single byte. Returns false, leaving the buffer
// unchanged, if the terminator slot would be consumed.
func (a *Accumulator) AppendByte(c byte) bool {
	if a.n+1 >= len(a.buf) {
		return false
	}
	a.buf[a.n] = c
	a.n++
	a.buf[a.n] = 0
	return true
}

// Append appends s in full or not at all; a write that would not fit
// leaves the buffer untouched.
func (a *Accumulator) Append(s string) bool {
	if a.n+len(s) >= len(a.buf) {
		return false
	}
	copy(a.buf[a.n:], s)
	a.n += len(s)
	a.buf[a.n] = 0
	return true
}

// AppendBytes is Append for a byte slice, with the same all-or-nothing
// contract.
func (a *Accumulator) AppendBytes(b []byte) bool {
	if a.n+len(b) >= len(a.buf) {
		return false
	}
	copy(a.buf[a.n:], b)
	a.n += len(b)
	a.buf[a.n] = 0
	return true
}

// Fits reports whether n more bytes can still be appended.
func (a *Accumulator) Fits(n int) bool {
	return a.n+n < len(a.buf)
}

// String returns the current content.
func (a *Accumulator) String() string {
	return string(a.buf[:a.n])
}

// Bytes returns a view of the current content, excluding the terminator.
// The slice aliases the internal buffer and is invalidated by the next
// mutation.
func (a *Accumulator) Bytes() []byte {
	return a.buf[:a.n]
}

// Len returns the current content length, excluding the terminator.
func (a *Accumulator) Len() int {
	return a.n
}

// Cap returns the total capacity including the terminator slot.
func (a *Accumulator) Cap() int {
	return len(a.buf)
}
