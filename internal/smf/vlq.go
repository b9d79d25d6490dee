package smf

// maxVLQBytes is the longest variable-length quantity the format allows.
const maxVLQBytes = 4

// readVLQ decodes a variable-length quantity from data starting at pos. It
// returns the value and the number of bytes consumed. ok is false when data
// ends before the quantity does; tooLong is set when a fourth byte still has
// its continuation bit.
func readVLQ(data []byte, pos int) (value uint32, n int, ok, tooLong bool) {
	for n < maxVLQBytes {
		if pos+n >= len(data) {
			return 0, n, false, false
		}
		b := data[pos+n]
		n++
		value = value<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return value, n, true, false
		}
	}
	return 0, n, false, true
}

// appendVLQ appends the minimal encoding of v. Values above MaxDelta are
// truncated to 28 bits; callers validate before encoding.
func appendVLQ(b []byte, v uint32) []byte {
	v &= MaxDelta
	var buf [maxVLQBytes]byte
	i := len(buf) - 1
	buf[i] = byte(v & 0x7F)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		buf[i] = byte(v&0x7F) | 0x80
	}
	return append(b, buf[i:]...)
}
