package smf

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Encoder writes Files as SMF bytes.
//
// The zero value writes an explicit status byte for every event, which
// always parses correctly even if the output is a few bytes larger than a
// running-status compressed input.
type Encoder struct {
	// RunningStatus omits repeated channel status bytes. A meta or sysex
	// event always ends the run, so strict readers accept the output too.
	RunningStatus bool
}

// Encode serializes f with the default Encoder.
func Encode(f *File) ([]byte, error) {
	var e Encoder
	return e.Encode(f)
}

// Encode validates f and serializes it. Chunk lengths are computed from the
// serialized events.
func (e Encoder) Encode(f *File) ([]byte, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}

	out := make([]byte, 0, chunkHeaderLen+headerLength+64*len(f.Tracks))
	out = append(out, headerMagic...)
	out = binary.BigEndian.AppendUint32(out, headerLength)
	out = binary.BigEndian.AppendUint16(out, f.Format)
	out = binary.BigEndian.AppendUint16(out, uint16(len(f.Tracks)))
	out = binary.BigEndian.AppendUint16(out, uint16(f.Division))

	for _, t := range f.Tracks {
		out = append(out, trackMagic...)
		lengthAt := len(out)
		out = append(out, 0, 0, 0, 0)
		out = e.appendTrack(out, t)
		binary.BigEndian.PutUint32(out[lengthAt:], uint32(len(out)-lengthAt-4))
	}

	return out, nil
}

// WriteTo encodes f to w.
func (e Encoder) WriteTo(w io.Writer, f *File) (int64, error) {
	data, err := e.Encode(f)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

func (e Encoder) appendTrack(b []byte, t Track) []byte {
	var running byte
	for _, ev := range t.Events {
		b = appendVLQ(b, ev.Delta)
		status := ev.Message.status()
		if _, voice := ev.Message.(Voice); voice {
			if !e.RunningStatus || status != running {
				b = append(b, status)
			}
			running = status
		} else {
			b = append(b, status)
			running = 0
		}
		b = ev.Message.appendData(b)
	}
	return b
}

// Validate checks the structural rules Encode relies on: header track count
// rules, one terminal EndOfTrack per track, voice payloads within their
// ranges and deltas that fit a VLQ.
func Validate(f *File) error {
	if f.Format > 2 {
		return &InvariantViolationError{Chunk: -1, Event: -1, Reason: fmt.Sprintf("format %d", f.Format)}
	}
	if f.Format == 0 && len(f.Tracks) != 1 {
		return &InvariantViolationError{Chunk: -1, Event: -1, Reason: fmt.Sprintf("format 0 with %d tracks", len(f.Tracks))}
	}
	if len(f.Tracks) > 0xFFFF {
		return &InvariantViolationError{Chunk: -1, Event: -1, Reason: fmt.Sprintf("%d tracks do not fit the header", len(f.Tracks))}
	}
	if reason := validateDivision(f.Division); reason != "" {
		return &InvariantViolationError{Chunk: -1, Event: -1, Reason: reason}
	}

	for i, t := range f.Tracks {
		if len(t.Events) == 0 || !IsEndOfTrack(t.Events[len(t.Events)-1].Message) {
			return &InvariantViolationError{Chunk: i, Event: -1, Reason: "track does not end with end of track"}
		}
		for j, ev := range t.Events {
			if ev.Message == nil {
				return &InvariantViolationError{Chunk: i, Event: j, Reason: "nil message"}
			}
			if ev.Delta > MaxDelta {
				return &InvariantViolationError{Chunk: i, Event: j, Reason: fmt.Sprintf("delta %d exceeds %d", ev.Delta, MaxDelta)}
			}
			if j < len(t.Events)-1 && IsEndOfTrack(ev.Message) {
				return &InvariantViolationError{Chunk: i, Event: j, Reason: "end of track before the last event"}
			}
			if reason := CheckRange(ev.Message); reason != "" {
				return &InvariantViolationError{Chunk: i, Event: j, Reason: reason}
			}
		}
	}
	return nil
}

// CheckRange returns a description of the first out-of-range field of m, or
// an empty string when every field is legal.
func CheckRange(m Message) string {
	switch m := m.(type) {
	case NoteOff:
		return checkVoice(m.Channel, "key", m.Key, "velocity", m.Velocity)
	case NoteOn:
		return checkVoice(m.Channel, "key", m.Key, "velocity", m.Velocity)
	case PolyPressure:
		return checkVoice(m.Channel, "key", m.Key, "pressure", m.Pressure)
	case ControlChange:
		return checkVoice(m.Channel, "controller", m.Controller, "value", m.Value)
	case ProgramChange:
		return checkVoice(m.Channel, "program", m.Program, "", 0)
	case ChannelPressure:
		return checkVoice(m.Channel, "pressure", m.Pressure, "", 0)
	case PitchBend:
		if m.Value > 0x3FFF {
			return fmt.Sprintf("pitch bend %d out of range", m.Value)
		}
		return checkVoice(m.Channel, "", 0, "", 0)
	}
	return ""
}

func checkVoice(ch uint8, name1 string, v1 uint8, name2 string, v2 uint8) string {
	if ch > 15 {
		return fmt.Sprintf("channel %d out of range", ch)
	}
	if v1 > 127 {
		return fmt.Sprintf("%s %d out of range", name1, v1)
	}
	if v2 > 127 {
		return fmt.Sprintf("%s %d out of range", name2, v2)
	}
	return ""
}
