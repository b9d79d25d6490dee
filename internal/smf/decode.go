package smf

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	headerMagic    = "MThd"
	trackMagic     = "MTrk"
	headerLength   = 6
	chunkHeaderLen = 8
)

// ReadFrom reads the whole of r and decodes it.
func ReadFrom(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses an SMF byte stream.
func Decode(data []byte) (*File, error) {
	f, ntracks, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	pos := chunkHeaderLen + headerLength
	for len(f.Tracks) < ntracks {
		chunk := len(f.Tracks)
		if pos+chunkHeaderLen > len(data) {
			return nil, &TruncatedTrackError{Offset: pos, Chunk: chunk, Reason: fmt.Sprintf("expected %d track chunks, found %d", ntracks, chunk)}
		}
		id := string(data[pos : pos+4])
		length := int(binary.BigEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + chunkHeaderLen
		if length > len(data)-body {
			return nil, &TruncatedTrackError{Offset: pos, Chunk: chunk, Reason: fmt.Sprintf("chunk length %d exceeds remaining %d bytes", length, len(data)-body)}
		}
		pos = body + length

		if id != trackMagic {
			// Alien chunk; the format asks readers to skip these.
			continue
		}

		track, err := decodeTrack(data[:body+length], body, chunk)
		if err != nil {
			return nil, err
		}
		f.Tracks = append(f.Tracks, track)
	}

	return f, nil
}

func decodeHeader(data []byte) (*File, int, error) {
	if len(data) < chunkHeaderLen+headerLength {
		return nil, 0, &UnsupportedFormatError{Offset: 0, Reason: fmt.Sprintf("file is %d bytes, shorter than a header chunk", len(data))}
	}
	if string(data[:4]) != headerMagic {
		return nil, 0, &UnsupportedFormatError{Offset: 0, Reason: fmt.Sprintf("bad header magic %q", data[:4])}
	}
	if n := binary.BigEndian.Uint32(data[4:8]); n != headerLength {
		return nil, 0, &UnsupportedFormatError{Offset: 4, Reason: fmt.Sprintf("header length %d, want %d", n, headerLength)}
	}

	format := binary.BigEndian.Uint16(data[8:10])
	ntracks := int(binary.BigEndian.Uint16(data[10:12]))
	division := Division(binary.BigEndian.Uint16(data[12:14]))

	if format > 2 {
		return nil, 0, &UnsupportedFormatError{Offset: 8, Reason: fmt.Sprintf("format %d", format)}
	}
	if format == 0 && ntracks != 1 {
		return nil, 0, &UnsupportedFormatError{Offset: 10, Reason: fmt.Sprintf("format 0 with %d tracks", ntracks)}
	}
	if err := validateDivision(division); err != "" {
		return nil, 0, &UnsupportedFormatError{Offset: 12, Reason: err}
	}

	return &File{Format: format, Division: division, Tracks: make([]Track, 0, ntracks)}, ntracks, nil
}

func validateDivision(d Division) string {
	if d.IsSMPTE() {
		switch d.FramesPerSecond() {
		case 24, 25, 29, 30:
		default:
			return fmt.Sprintf("smpte division with %d frames per second", d.FramesPerSecond())
		}
		if d.Ticks() == 0 {
			return "smpte division with zero ticks per frame"
		}
		return ""
	}
	if d.Ticks() == 0 {
		return "zero ticks per quarter note"
	}
	return ""
}

// decodeState is the state carried from one event to the next while
// reading a track.
type decodeState struct {
	// status is the running status: the last channel voice status byte, or
	// zero when none has been seen.
	status byte
}

// decodeTrack reads events from data[pos:] until the terminal end-of-track.
// data ends at the chunk boundary.
func decodeTrack(data []byte, pos, chunk int) (Track, error) {
	var (
		track Track
		st    decodeState
	)

	for {
		if pos >= len(data) {
			return Track{}, &TruncatedTrackError{Offset: pos, Chunk: chunk, Reason: "missing end of track"}
		}

		delta, n, ok, tooLong := readVLQ(data, pos)
		if tooLong {
			return Track{}, &MalformedVLQError{Offset: pos, Chunk: chunk}
		}
		if !ok {
			return Track{}, &TruncatedTrackError{Offset: pos, Chunk: chunk, Reason: "delta-time cut short"}
		}
		pos += n

		var msg Message
		var err error
		msg, n, st, err = readEvent(data, pos, chunk, st)
		if err != nil {
			return Track{}, err
		}
		pos += n

		track.Events = append(track.Events, Event{Delta: delta, Message: msg})
		if IsEndOfTrack(msg) {
			return track, nil
		}
	}
}

// readEvent decodes one event (without its delta) at data[pos:]. It returns
// the message, the number of bytes consumed and the state for the next
// event.
func readEvent(data []byte, pos, chunk int, st decodeState) (Message, int, decodeState, error) {
	if pos >= len(data) {
		return nil, 0, st, &TruncatedTrackError{Offset: pos, Chunk: chunk, Reason: "event missing after delta-time"}
	}

	start := pos
	status := data[pos]
	if status&0x80 == 0 {
		if st.status == 0 {
			return nil, 0, st, &MalformedEventError{Offset: pos, Chunk: chunk, Reason: fmt.Sprintf("data byte %#02x without running status", status)}
		}
		status = st.status
	} else {
		pos++
	}

	switch {
	case status == statusMeta:
		msg, n, err := readMeta(data, pos, chunk)
		if err != nil {
			return nil, 0, st, err
		}
		return msg, pos + n - start, st, nil

	case status == statusSysEx || status == statusSysExEscape:
		payload, n, err := readLengthPrefixed(data, pos, chunk)
		if err != nil {
			return nil, 0, st, err
		}
		return SysEx{Status: status, Data: payload}, pos + n - start, st, nil

	case status >= 0xF0:
		return nil, 0, st, &MalformedEventError{Offset: start, Chunk: chunk, Reason: fmt.Sprintf("status byte %#02x is not allowed in a file", status)}
	}

	st.status = status
	size := 2
	if kind := status & 0xF0; kind == statusProgramChange || kind == statusChannelPressure {
		size = 1
	}
	if pos+size > len(data) {
		return nil, 0, st, &TruncatedTrackError{Offset: pos, Chunk: chunk, Reason: fmt.Sprintf("status %#02x needs %d data bytes", status, size)}
	}
	for i := 0; i < size; i++ {
		if data[pos+i]&0x80 != 0 {
			return nil, 0, st, &MalformedEventError{Offset: pos + i, Chunk: chunk, Reason: fmt.Sprintf("data byte %#02x has its high bit set", data[pos+i])}
		}
	}

	ch := status & 0x0F
	d0 := data[pos]
	var d1 byte
	if size == 2 {
		d1 = data[pos+1]
	}

	var msg Message
	switch status & 0xF0 {
	case statusNoteOff:
		msg = NoteOff{Channel: ch, Key: d0, Velocity: d1}
	case statusNoteOn:
		msg = NoteOn{Channel: ch, Key: d0, Velocity: d1}
	case statusPolyPressure:
		msg = PolyPressure{Channel: ch, Key: d0, Pressure: d1}
	case statusControlChange:
		msg = ControlChange{Channel: ch, Controller: d0, Value: d1}
	case statusProgramChange:
		msg = ProgramChange{Channel: ch, Program: d0}
	case statusChannelPressure:
		msg = ChannelPressure{Channel: ch, Pressure: d0}
	case statusPitchBend:
		msg = PitchBend{Channel: ch, Value: uint16(d1)<<7 | uint16(d0)}
	}

	return msg, pos + size - start, st, nil
}

// readMeta decodes a meta event after its 0xFF status byte.
func readMeta(data []byte, pos, chunk int) (Meta, int, error) {
	if pos >= len(data) {
		return Meta{}, 0, &TruncatedTrackError{Offset: pos, Chunk: chunk, Reason: "meta event missing type"}
	}
	typ := data[pos]
	payload, n, err := readLengthPrefixed(data, pos+1, chunk)
	if err != nil {
		return Meta{}, 0, err
	}
	return Meta{Type: typ, Data: payload}, n + 1, nil
}

// readLengthPrefixed reads a VLQ length followed by that many bytes. The
// returned slice is a copy, so the model never aliases the input buffer.
func readLengthPrefixed(data []byte, pos, chunk int) ([]byte, int, error) {
	length, n, ok, tooLong := readVLQ(data, pos)
	if tooLong {
		return nil, 0, &MalformedVLQError{Offset: pos, Chunk: chunk}
	}
	if !ok {
		return nil, 0, &TruncatedTrackError{Offset: pos, Chunk: chunk, Reason: "length cut short"}
	}
	if uint64(length) > uint64(len(data)-pos-n) {
		return nil, 0, &TruncatedTrackError{Offset: pos, Chunk: chunk, Reason: fmt.Sprintf("payload of %d bytes exceeds track", length)}
	}
	start := pos + n
	payload := make([]byte, length)
	copy(payload, data[start:start+int(length)])
	return payload, n + int(length), nil
}
