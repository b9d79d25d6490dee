package smf

import (
	"bytes"
	"fmt"
)

// Status nibbles of channel voice messages.
const (
	statusNoteOff         = 0x80
	statusNoteOn          = 0x90
	statusPolyPressure    = 0xA0
	statusControlChange   = 0xB0
	statusProgramChange   = 0xC0
	statusChannelPressure = 0xD0
	statusPitchBend       = 0xE0

	statusSysEx       = 0xF0
	statusSysExEscape = 0xF7
	statusMeta        = 0xFF
)

// Meta event types.
const (
	MetaSequenceNumber    = 0x00
	MetaText              = 0x01
	MetaCopyright         = 0x02
	MetaTrackName         = 0x03
	MetaInstrumentName    = 0x04
	MetaLyric             = 0x05
	MetaMarker            = 0x06
	MetaCuePoint          = 0x07
	MetaDeviceName        = 0x09
	MetaChannelPrefix     = 0x20
	MetaPort              = 0x21
	MetaEndOfTrack        = 0x2F
	MetaTempo             = 0x51
	MetaSMPTEOffset       = 0x54
	MetaTimeSignature     = 0x58
	MetaKeySignature      = 0x59
	MetaSequencerSpecific = 0x7F
)

// MaxDelta is the largest delta-time a 4-byte VLQ can hold.
const MaxDelta = 0x0FFFFFFF

// DefaultTempo is the tempo in microseconds per quarter note assumed before
// the first tempo meta event.
const DefaultTempo = 500000

// Message is one decoded MIDI file event. The set of implementations is
// closed: NoteOff, NoteOn, PolyPressure, ControlChange, ProgramChange,
// ChannelPressure, PitchBend, SysEx and Meta.
type Message interface {
	// status returns the status byte that introduces the message on the wire.
	status() byte
	// appendData appends the bytes that follow the status byte.
	appendData(b []byte) []byte
	String() string
}

// Voice is implemented by channel voice messages.
type Voice interface {
	Message
	Chan() uint8
}

// NoteOff releases Key on Channel.
type NoteOff struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
}

// NoteOn starts Key on Channel. A velocity of 0 is kept as decoded; it is
// up to the caller to treat it as a note-off.
type NoteOn struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
}

// PolyPressure is polyphonic key pressure (aftertouch).
type PolyPressure struct {
	Channel  uint8
	Key      uint8
	Pressure uint8
}

// ControlChange sets Controller to Value.
type ControlChange struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

// ProgramChange selects a program.
type ProgramChange struct {
	Channel uint8
	Program uint8
}

// ChannelPressure is channel-wide aftertouch.
type ChannelPressure struct {
	Channel  uint8
	Pressure uint8
}

// PitchBend carries a 14-bit bend value, 8192 being centered.
type PitchBend struct {
	Channel uint8
	Value   uint16
}

// SysEx is a system exclusive event. Status is 0xF0 for a complete or
// leading packet and 0xF7 for an escape/continuation packet. Data is the
// payload after the length prefix, usually ending with 0xF7.
type SysEx struct {
	Status byte
	Data   []byte
}

// Meta is a meta event. Data is kept verbatim, so unknown types survive a
// round-trip.
type Meta struct {
	Type byte
	Data []byte
}

func (m NoteOff) status() byte         { return statusNoteOff | m.Channel&0x0F }
func (m NoteOn) status() byte          { return statusNoteOn | m.Channel&0x0F }
func (m PolyPressure) status() byte    { return statusPolyPressure | m.Channel&0x0F }
func (m ControlChange) status() byte   { return statusControlChange | m.Channel&0x0F }
func (m ProgramChange) status() byte   { return statusProgramChange | m.Channel&0x0F }
func (m ChannelPressure) status() byte { return statusChannelPressure | m.Channel&0x0F }
func (m PitchBend) status() byte       { return statusPitchBend | m.Channel&0x0F }
func (m SysEx) status() byte {
	if m.Status == statusSysExEscape {
		return statusSysExEscape
	}
	return statusSysEx
}
func (m Meta) status() byte { return statusMeta }

func (m NoteOff) appendData(b []byte) []byte         { return append(b, m.Key, m.Velocity) }
func (m NoteOn) appendData(b []byte) []byte          { return append(b, m.Key, m.Velocity) }
func (m PolyPressure) appendData(b []byte) []byte    { return append(b, m.Key, m.Pressure) }
func (m ControlChange) appendData(b []byte) []byte   { return append(b, m.Controller, m.Value) }
func (m ProgramChange) appendData(b []byte) []byte   { return append(b, m.Program) }
func (m ChannelPressure) appendData(b []byte) []byte { return append(b, m.Pressure) }
func (m PitchBend) appendData(b []byte) []byte {
	return append(b, byte(m.Value&0x7F), byte(m.Value>>7&0x7F))
}
func (m SysEx) appendData(b []byte) []byte {
	b = appendVLQ(b, uint32(len(m.Data)))
	return append(b, m.Data...)
}
func (m Meta) appendData(b []byte) []byte {
	b = append(b, m.Type)
	b = appendVLQ(b, uint32(len(m.Data)))
	return append(b, m.Data...)
}

func (m NoteOff) Chan() uint8         { return m.Channel }
func (m NoteOn) Chan() uint8          { return m.Channel }
func (m PolyPressure) Chan() uint8    { return m.Channel }
func (m ControlChange) Chan() uint8   { return m.Channel }
func (m ProgramChange) Chan() uint8   { return m.Channel }
func (m ChannelPressure) Chan() uint8 { return m.Channel }
func (m PitchBend) Chan() uint8       { return m.Channel }

func (m NoteOff) String() string {
	return fmt.Sprintf("note_off channel=%d note=%d velocity=%d", m.Channel, m.Key, m.Velocity)
}

func (m NoteOn) String() string {
	return fmt.Sprintf("note_on channel=%d note=%d velocity=%d", m.Channel, m.Key, m.Velocity)
}

func (m PolyPressure) String() string {
	return fmt.Sprintf("polytouch channel=%d note=%d value=%d", m.Channel, m.Key, m.Pressure)
}

func (m ControlChange) String() string {
	return fmt.Sprintf("control_change channel=%d control=%d value=%d", m.Channel, m.Controller, m.Value)
}

func (m ProgramChange) String() string {
	return fmt.Sprintf("program_change channel=%d program=%d", m.Channel, m.Program)
}

func (m ChannelPressure) String() string {
	return fmt.Sprintf("aftertouch channel=%d value=%d", m.Channel, m.Pressure)
}

func (m PitchBend) String() string {
	return fmt.Sprintf("pitchwheel channel=%d pitch=%d", m.Channel, int(m.Value)-8192)
}

func (m SysEx) String() string {
	return fmt.Sprintf("sysex status=%#02x data=% X", m.status(), m.Data)
}

func (m Meta) String() string {
	switch m.Type {
	case MetaEndOfTrack:
		return "end_of_track"
	case MetaTempo:
		if t, ok := m.Tempo(); ok {
			return fmt.Sprintf("set_tempo tempo=%d", t)
		}
	case MetaText, MetaCopyright, MetaTrackName, MetaInstrumentName, MetaLyric, MetaMarker, MetaCuePoint, MetaDeviceName:
		return fmt.Sprintf("meta type=%#02x text=%q", m.Type, m.Data)
	}
	return fmt.Sprintf("meta type=%#02x data=% X", m.Type, m.Data)
}

// Bytes returns the wire form of m including its status byte.
func Bytes(m Message) []byte {
	return m.appendData([]byte{m.status()})
}

// IsEndOfTrack reports whether m is the end-of-track meta event.
func IsEndOfTrack(m Message) bool {
	meta, ok := m.(Meta)
	return ok && meta.Type == MetaEndOfTrack
}

// EndOfTrack returns the end-of-track meta event.
func EndOfTrack() Meta {
	return Meta{Type: MetaEndOfTrack}
}

// Tempo returns a set-tempo meta event for the given microseconds per
// quarter note.
func Tempo(usPerQuarter uint32) Meta {
	return Meta{Type: MetaTempo, Data: []byte{byte(usPerQuarter >> 16), byte(usPerQuarter >> 8), byte(usPerQuarter)}}
}

// TimeSignature returns a time signature meta event. denominator is the
// actual note value (4 for quarter) and must be a power of two.
func TimeSignature(numerator, denominator, clocksPerClick, thirtySecondsPerQuarter uint8) Meta {
	var pow uint8
	for d := denominator; d > 1; d >>= 1 {
		pow++
	}
	return Meta{Type: MetaTimeSignature, Data: []byte{numerator, pow, clocksPerClick, thirtySecondsPerQuarter}}
}

// TextMeta returns a text-like meta event (text, copyright, track name...).
func TextMeta(typ byte, text string) Meta {
	return Meta{Type: typ, Data: []byte(text)}
}

// Tempo decodes a set-tempo payload.
func (m Meta) Tempo() (uint32, bool) {
	if m.Type != MetaTempo || len(m.Data) != 3 {
		return 0, false
	}
	return uint32(m.Data[0])<<16 | uint32(m.Data[1])<<8 | uint32(m.Data[2]), true
}

// Text returns the payload of a text-like meta event.
func (m Meta) Text() (string, bool) {
	if m.Type < MetaText || m.Type > MetaDeviceName {
		return "", false
	}
	return string(m.Data), true
}

// Event is a message positioned Delta ticks after the previous event of
// the same track.
type Event struct {
	Delta   uint32
	Message Message
}

// Track is an ordered sequence of events ending with EndOfTrack.
type Track struct {
	Events []Event
}

// Division is the header time-division field.
type Division uint16

// TicksPerQuarter returns a metric division.
func TicksPerQuarter(ticks uint16) Division {
	return Division(ticks & 0x7FFF)
}

// IsSMPTE reports whether the division is timecode based.
func (d Division) IsSMPTE() bool {
	return d&0x8000 != 0
}

// Ticks returns ticks per quarter note for metric divisions and ticks per
// frame for SMPTE divisions.
func (d Division) Ticks() uint16 {
	if d.IsSMPTE() {
		return uint16(d) & 0xFF
	}
	return uint16(d)
}

// FramesPerSecond returns the SMPTE frame rate (24, 25, 29 or 30), or 0 for
// metric divisions.
func (d Division) FramesPerSecond() int {
	if !d.IsSMPTE() {
		return 0
	}
	return -int(int8(byte(uint16(d) >> 8)))
}

func (d Division) String() string {
	if d.IsSMPTE() {
		return fmt.Sprintf("smpte %d fps, %d ticks/frame", d.FramesPerSecond(), d.Ticks())
	}
	return fmt.Sprintf("%d ticks/quarter", d.Ticks())
}

// File is a decoded Standard MIDI File.
type File struct {
	// Format is the SMF format: 0 single track, 1 simultaneous tracks,
	// 2 independent sequences.
	Format uint16

	// Division is the time base shared by all tracks.
	Division Division

	// Tracks holds the track chunks in file order.
	Tracks []Track
}

// Clone returns a deep copy of f.
func (f *File) Clone() *File {
	out := &File{Format: f.Format, Division: f.Division, Tracks: make([]Track, len(f.Tracks))}
	for i, t := range f.Tracks {
		events := make([]Event, len(t.Events))
		for j, ev := range t.Events {
			events[j] = Event{Delta: ev.Delta, Message: cloneMessage(ev.Message)}
		}
		out.Tracks[i] = Track{Events: events}
	}
	return out
}

func cloneMessage(m Message) Message {
	switch m := m.(type) {
	case SysEx:
		return SysEx{Status: m.Status, Data: bytes.Clone(m.Data)}
	case Meta:
		return Meta{Type: m.Type, Data: bytes.Clone(m.Data)}
	}
	return m
}
