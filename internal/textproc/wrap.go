package textproc

// WrapText re-flows text into acc, inserting a line break whenever a
// source newline is seen or the running column reaches width. The column
// counter resets at each break. The accumulator is reset first; the
// overflow contract of Accumulator applies unchanged, so the result is
// false (with a truncated rendering) if the wrapped text does not fit.
func WrapText(acc *Accumulator, text []byte, width int) bool {
	if width < 1 {
		width = 1
	}
	acc.Reset()

	col := 0
	for _, c := range text {
		if c == '\n' || col >= width {
			if !acc.AppendByte('\n') {
				return false
			}
			col = 0
			if c == '\n' {
				continue
			}
		}
		if !acc.AppendByte(c) {
			return false
		}
		col++
	}
	return true
}
