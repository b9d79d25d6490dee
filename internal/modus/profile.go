package modus

import (
	"bytes"
	"encoding/hex"
	"slices"
	"strings"

	"github.com/handiism/modus-converter/internal/smf"
)

// sysexEnd terminates a complete system exclusive message.
const sysexEnd = 0xF7

// Profile lists what the instrument accepts and what Prepare writes.
type Profile struct {
	// Programs holds the program numbers with a voice assigned.
	Programs []uint8

	// Controllers maps each recognized controller to its accepted values.
	Controllers map[uint8][]uint8

	// MetaTypes holds the meta event types kept in the output.
	MetaTypes []byte

	// PitchBend reports whether pitch bend messages are kept.
	PitchBend bool

	// SysExMasks are byte masks of recognized system exclusive messages.
	// A message matches a mask when none of its bytes sets a bit the mask
	// leaves clear. Masks ending in 0xF7 must match the whole message;
	// other masks only match a prefix.
	SysExMasks [][]byte

	// ReservedSysEx matches messages Prepare writes itself. They are
	// dropped from the input so they never appear twice.
	ReservedSysEx [][]byte

	// Tempo is the initial tempo in microseconds per quarter note.
	Tempo uint32

	// SequencerSpecific holds the payloads of the instrument's own
	// sequencer-specific meta events.
	SequencerSpecific [][]byte

	// Setup is the lead-in written before the first sounding event.
	Setup []smf.Event
}

// DefaultProfile returns the Modus F01/F11 profile.
func DefaultProfile() *Profile {
	full := valueRange(0, 127)

	controllers := map[uint8][]uint8{
		0:   {0, 8, 64, 118, 119, 120, 121, 126, 127},
		120: {0},
		121: {0},
		122: {0, 127},
		123: {0},
		124: {0},
		125: {0},
		126: valueRange(0, 16),
		127: {0},
	}
	for _, cc := range []uint8{1, 5, 6, 7, 10, 11, 32, 38, 64, 65, 66, 67, 71, 72, 73, 74, 75, 76, 77, 78, 84, 91, 93, 94, 96, 97, 98, 99, 100, 101} {
		controllers[cc] = full
	}

	return &Profile{
		Programs:    []uint8{0, 1, 4, 5, 6, 11, 16, 19, 24, 32, 33, 48, 49, 88},
		Controllers: controllers,
		MetaTypes: []byte{
			smf.MetaSequenceNumber, smf.MetaText, smf.MetaCopyright, smf.MetaTrackName,
			smf.MetaInstrumentName, smf.MetaLyric, smf.MetaMarker, smf.MetaDeviceName,
			smf.MetaChannelPrefix, smf.MetaPort, smf.MetaEndOfTrack, smf.MetaTempo,
			smf.MetaSMPTEOffset, smf.MetaTimeSignature, smf.MetaKeySignature,
		},
		PitchBend: true,
		SysExMasks: masks(
			"F0 7F 7F 04 01 7F F7",             // master volume
			"F0 7F 7F 04 03 7F 7F F7",          // master fine tuning
			"F0 7F 7F 04 04 00 7F F7",          // master coarse tuning
			"F0 7F 7F 04 05 01 01 01 01 02 7F", // reverb parameter
			"F0 7F 7F 09 01 0F 7F",             // chorus parameter
			"F0 7F 7F 09 03 0F",                // channel pressure
			"F0 7F 7F 0A 01 0F 7F",             // controller
			"F0 7E 7F 09 01 F7",                // key-based instrument
			"F0 7E 7F 09 02 F7",                // GM system off
			"F0 7E 7F 08 08",                   // scale/octave tuning
			"F0 43 73 01 02 F7",                // internal clock
			"F0 43 73 01 03 F7",                // external clock
			"F0 43 73 01 50 11 0F 02 3F F7",    // string resonance depth
			"F0 43 73 01 50 11 0F 03 3F F7",    // sustain sample depth
			"F0 43 73 01 50 11 0F 04 3F F7",    // key-off sampling depth
			"F0 43 73 01 50 11 0F 05 3F F7",    // soft pedal depth
			"F0 43 1F 27 30 00 00 0F 0F 7F F7", // MIDI master tuning
			"F0 43 0F 7C",                      // panel data transmit
			"F0 7F 7F 04 01 7F 7F F7",          // universal realtime
			"F0 7E 7F 09 01 F7",                // GM mode on
			"F0 43 0F 4C 7F 7F 7F 7F 7F",       // XG native bulk data
		),
		ReservedSysEx: masks(
			"F0 7E 7F 09 01 F7",          // GM1 system on
			"F0 7E 7F 09 03 F7",          // GM2 system on
			"F0 43 1F 4C 7F 7F 7F 7F F7", // XG native parameter change
		),
		Tempo: 600000,
		SequencerSpecific: [][]byte{
			{67, 123, 0, 88, 70, 48, 50, 0, 27},
			{67, 113, 0, 1, 0, 1, 0},
			{67, 113, 0, 0, 0, 65},
			{67, 123, 12, 1, 0},
		},
		Setup: []smf.Event{
			{Delta: 0, Message: sysex("F0 7E 7F 09 01 F7")},
			{Delta: 960, Message: sysex("F0 43 10 4C 00 00 7E 00 F7")},
			{Delta: 960, Message: smf.ControlChange{Controller: 0, Value: 0}},
			{Delta: 10, Message: smf.ControlChange{Controller: 32, Value: 0}},
			{Delta: 10, Message: smf.ProgramChange{Program: 0}},
			{Delta: 10, Message: smf.ControlChange{Controller: 7, Value: 127}},
			{Delta: 10, Message: smf.ControlChange{Controller: 11, Value: 127}},
			{Delta: 10, Message: smf.ControlChange{Controller: 10, Value: 64}},
			{Delta: 10, Message: smf.ControlChange{Controller: 91, Value: 22}},
			{Delta: 10, Message: smf.ControlChange{Controller: 93, Value: 0}},
		},
	}
}

// Accept reports whether the instrument handles msg.
func (p *Profile) Accept(msg smf.Message) bool {
	switch m := msg.(type) {
	case smf.NoteOn, smf.NoteOff, smf.PolyPressure, smf.ChannelPressure:
		return true
	case smf.ControlChange:
		values, ok := p.Controllers[m.Controller]
		return ok && slices.Contains(values, m.Value)
	case smf.ProgramChange:
		return slices.Contains(p.Programs, m.Program)
	case smf.PitchBend:
		return p.PitchBend
	case smf.Meta:
		return slices.Contains(p.MetaTypes, m.Type)
	case smf.SysEx:
		b := sysexBytes(m)
		return b != nil && !matchesAny(b, p.ReservedSysEx) && matchesAny(b, p.SysExMasks)
	}
	return false
}

// sysexBytes returns m in its complete form, F0 and F7 included, the way
// the data list spells messages out. An F7 packet is only a complete
// message when its data starts with F0; continuation fragments return nil.
func sysexBytes(m smf.SysEx) []byte {
	data := m.Data
	if m.Status == sysexEnd {
		if len(data) == 0 || data[0] != 0xF0 {
			return nil
		}
		data = data[1:]
	}
	data = bytes.TrimSuffix(data, []byte{sysexEnd})

	b := make([]byte, 0, len(data)+2)
	b = append(b, 0xF0)
	b = append(b, data...)
	return append(b, sysexEnd)
}

func matchesAny(msg []byte, masks [][]byte) bool {
	for _, mask := range masks {
		if matchesMask(msg, mask) {
			return true
		}
	}
	return false
}

func matchesMask(msg, mask []byte) bool {
	if len(mask) == 0 {
		return false
	}
	if mask[len(mask)-1] == sysexEnd && len(msg) != len(mask) {
		return false
	}
	for i, n := 0, min(len(msg), len(mask)); i < n; i++ {
		if msg[i]&^mask[i] != 0 {
			return false
		}
	}
	return true
}

func valueRange(lo, hi uint8) []uint8 {
	out := make([]uint8, 0, int(hi)-int(lo)+1)
	for v := int(lo); v <= int(hi); v++ {
		out = append(out, uint8(v))
	}
	return out
}

func masks(lines ...string) [][]byte {
	out := make([][]byte, len(lines))
	for i, l := range lines {
		out[i] = mustHex(l)
	}
	return out
}

// sysex builds a system exclusive event from a data list line such as
// "F0 7E 7F 09 01 F7".
func sysex(line string) smf.SysEx {
	b := mustHex(line)
	return smf.SysEx{Status: b[0], Data: b[1:]}
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		panic("modus: bad hex literal " + s)
	}
	return b
}
