package smf

import "encoding/binary"

// header builds an MThd chunk.
func header(format, ntracks, division uint16) []byte {
	b := []byte("MThd")
	b = binary.BigEndian.AppendUint32(b, 6)
	b = binary.BigEndian.AppendUint16(b, format)
	b = binary.BigEndian.AppendUint16(b, ntracks)
	return binary.BigEndian.AppendUint16(b, division)
}

// chunk builds a chunk with the given id and a length matching body.
func chunk(id string, body ...byte) []byte {
	b := []byte(id)
	b = binary.BigEndian.AppendUint32(b, uint32(len(body)))
	return append(b, body...)
}

func join(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// specExample is the four-track format 1 file given as an example in the
// SMF 1.0 document, using running status in the music tracks.
var specExample = join(
	header(1, 4, 96),
	chunk("MTrk",
		0, 0xFF, 0x58, 4, 4, 2, 0x18, 8,
		0, 0xFF, 0x51, 3, 7, 0xA1, 0x20,
		0x83, 0, 0xFF, 0x2F, 0,
	),
	chunk("MTrk",
		0, 0xC0, 5,
		0x81, 0x40, 0x90, 0x4C, 0x20,
		0x81, 0x40, 0x4C, 0,
		0, 0xFF, 0x2F, 0,
	),
	chunk("MTrk",
		0, 0xC1, 0x2E,
		0x60, 0x91, 0x43, 0x40,
		0x82, 0x20, 0x43, 0,
		0, 0xFF, 0x2F, 0,
	),
	chunk("MTrk",
		0, 0xC2, 0x46,
		0, 0x92, 0x30, 0x60,
		0, 0x3C, 0x60,
		0x83, 0, 0x30, 0,
		0, 0x3C, 0,
		0, 0xFF, 0x2F, 0,
	),
)

func track(events ...Event) Track {
	return Track{Events: events}
}

func ev(delta uint32, m Message) Event {
	return Event{Delta: delta, Message: m}
}
