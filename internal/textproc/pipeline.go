package textproc

import "bytes"

// Gate is consulted before the pipeline does work. The heap watchdog
// satisfies it; a nil gate always allows.
type Gate interface {
	Allow() bool
}

// fallbackFields is the ordered table of recognized consultation fields
// rendered when a payload carries no "message" field. Order and labels
// match what the central system sends and the display shows.
var fallbackFields = []struct {
	name  string
	label string
}{
	{"student_name", "Student: "},
	{"course_code", "Course: "},
	{"request_message", "Request: "},
}

// fieldMessage is the short-circuit field: when present and fitting, its
// value is the entire rendering.
const fieldMessage = "message"

// Pipeline renders inbound consultation payloads into caller-supplied
// display buffers. It owns one Accumulator for the duration of each
// Process call and must not be reentered before that call returns.
type Pipeline struct {
	acc  *Accumulator
	gate Gate
}

// NewPipeline creates a pipeline around the given accumulator. gate may
// be nil.
func NewPipeline(acc *Accumulator, gate Gate) *Pipeline {
	return &Pipeline{acc: acc, gate: gate}
}

// Process renders input into out and returns the number of content bytes
// written and whether the message was processed at all. ok is false only
// when the gate refused (persistent heap pressure); the caller should
// count the message as dropped. out always ends up NUL-terminated within
// bounds, truncating if it is too small.
func (p *Pipeline) Process(input, out []byte) (int, bool) {
	if len(out) == 0 {
		return 0, true
	}
	if p.gate != nil && !p.gate.Allow() {
		out[0] = 0
		return 0, false
	}

	p.acc.Reset()

	if !isStructured(input) {
		return copyBounded(out, input), true
	}

	// Common case: a bare "message" field is the whole rendering.
	if lo, hi, ok := findField(input, fieldMessage); ok && hi-lo < p.acc.Cap()-1 {
		return copyBounded(out, input[lo:hi]), true
	}

	// Fall back to labeled rendering of whatever recognized fields are
	// present. Missing fields are skipped, not errors: partial
	// information still helps the person at the desk.
	for _, f := range fallbackFields {
		lo, hi, ok := findField(input, f.name)
		if !ok || hi == lo {
			continue
		}
		if !p.acc.Fits(len(f.label) + (hi - lo) + 1) {
			continue
		}
		p.acc.Append(f.label)
		p.acc.AppendBytes(input[lo:hi])
		p.acc.AppendByte('\n')
	}

	return copyBounded(out, p.acc.Bytes()), true
}

// ExtractField scans input for `"<field>":"` and copies the value, up to
// the next quote, into out. Returns false with out untouched when out
// has no room or the field is absent or unterminated; a value that is
// too long is truncated to fit and still reported as success. This is
// deliberately not a JSON parser: it handles exactly the flat string
// fields the central system sends, in bounded time, and must stay that
// way.
func ExtractField(input []byte, field string, out []byte) bool {
	if len(out) == 0 {
		return false
	}
	lo, hi, ok := findField(input, field)
	if !ok {
		return false
	}
	copyBounded(out, input[lo:hi])
	return true
}

// findField locates the value bounds of `"<field>":"<value>"` in input.
func findField(input []byte, field string) (lo, hi int, ok bool) {
	pattern := make([]byte, 0, len(field)+4)
	pattern = append(pattern, '"')
	pattern = append(pattern, field...)
	pattern = append(pattern, '"', ':', '"')

	i := bytes.Index(input, pattern)
	if i < 0 {
		return 0, 0, false
	}
	lo = i + len(pattern)
	j := bytes.IndexByte(input[lo:], '"')
	if j < 0 {
		return 0, 0, false
	}
	return lo, lo + j, true
}

// isStructured reports whether the first significant byte opens the
// key/value format.
func isStructured(input []byte) bool {
	for _, c := range input {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

// copyBounded copies src into dst, truncating to leave room for a NUL
// terminator, and returns the number of content bytes written. dst must
// be non-empty.
func copyBounded(dst, src []byte) int {
	n := len(src)
	if n > len(dst)-1 {
		n = len(dst) - 1
	}
	copy(dst, src[:n])
	dst[n] = 0
	return n
}
