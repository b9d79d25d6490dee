package modus

import (
	"reflect"
	"testing"

	"github.com/handiism/modus-converter/internal/smf"
	"github.com/handiism/modus-converter/internal/transform"
)

var _ transform.Filter = (*Profile)(nil)

func ev(delta uint32, m smf.Message) smf.Event {
	return smf.Event{Delta: delta, Message: m}
}

func TestProfile_Accept(t *testing.T) {
	p := DefaultProfile()

	tests := []struct {
		name string
		msg  smf.Message
		want bool
	}{
		{"note on", smf.NoteOn{Key: 60, Velocity: 90}, true},
		{"note off", smf.NoteOff{Key: 60, Velocity: 64}, true},
		{"poly pressure", smf.PolyPressure{Key: 60, Pressure: 10}, true},
		{"channel pressure", smf.ChannelPressure{Channel: 9, Pressure: 10}, true},
		{"pitch bend", smf.PitchBend{Value: 8192}, true},
		{"bank select msb listed", smf.ControlChange{Controller: 0, Value: 8}, true},
		{"bank select msb unlisted", smf.ControlChange{Controller: 0, Value: 5}, false},
		{"volume", smf.ControlChange{Controller: 7, Value: 100}, true},
		{"sustain", smf.ControlChange{Controller: 64, Value: 127}, true},
		{"breath controller", smf.ControlChange{Controller: 2, Value: 0}, false},
		{"mono mode in range", smf.ControlChange{Controller: 126, Value: 16}, true},
		{"mono mode out of range", smf.ControlChange{Controller: 126, Value: 17}, false},
		{"all notes off", smf.ControlChange{Controller: 123, Value: 0}, true},
		{"local control on", smf.ControlChange{Controller: 122, Value: 127}, true},
		{"local control odd", smf.ControlChange{Controller: 122, Value: 1}, false},
		{"grand piano", smf.ProgramChange{Program: 0}, true},
		{"pad", smf.ProgramChange{Program: 88}, true},
		{"unassigned program", smf.ProgramChange{Program: 2}, false},
		{"tempo", smf.Tempo(500000), true},
		{"track name", smf.TextMeta(smf.MetaTrackName, "x"), true},
		{"end of track", smf.EndOfTrack(), true},
		{"cue point", smf.TextMeta(smf.MetaCuePoint, "x"), false},
		{"sequencer specific", smf.Meta{Type: smf.MetaSequencerSpecific, Data: []byte{67, 0}}, false},
		{"program name", smf.Meta{Type: 0x08, Data: []byte("x")}, false},
		{"unknown meta", smf.Meta{Type: 0x60}, false},
		{"internal clock", sysex("F0 43 73 01 02 F7"), true},
		{"gm system off overlaps gm2 on", sysex("F0 7E 7F 09 02 F7"), false},
		{"master balance", sysex("F0 7F 7F 04 02 3F F7"), false},
		{"master fine tuning", sysex("F0 7F 7F 04 03 3F 3F F7"), true},
		{"master volume short", sysex("F0 7F 7F 04 01 3F F7"), true},
		{"panel data prefix", sysex("F0 43 0F 7C 01 02 03 F7"), true},
		{"gm system on reserved", sysex("F0 7E 7F 09 01 F7"), false},
		{"gm2 system on reserved", sysex("F0 7E 7F 09 03 F7"), false},
		{"xg reverb reserved", sysex("F0 43 10 4C 00 00 7E 00 F7"), false},
		{"gs reset", sysex("F0 41 10 42 12 40 00 7F 00 41 F7"), false},
		{"escape packet", smf.SysEx{Status: 0xF7, Data: []byte{0xF0, 0x43, 0x73, 0x01, 0x02, 0xF7}}, true},
		{"continuation fragment", smf.SysEx{Status: 0xF7, Data: []byte{0x43, 0x0F, 0x7C, 0x01, 0xF7}}, false},
		{"empty escape packet", smf.SysEx{Status: 0xF7}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Accept(tt.msg); got != tt.want {
				t.Errorf("Accept(%v) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestMatchesMask(t *testing.T) {
	tests := []struct {
		name      string
		msg, mask string
		want      bool
	}{
		{"exact", "F0 7E 7F 09 01 F7", "F0 7E 7F 09 01 F7", true},
		{"cleared bits", "F0 7E 00 09 01 F7", "F0 7E 7F 09 01 F7", true},
		{"extra bit", "F0 7E 7F 09 03 F7", "F0 7E 7F 09 01 F7", false},
		{"terminated length mismatch", "F0 7E 7F 09 01 00 F7", "F0 7E 7F 09 01 F7", false},
		{"prefix longer message", "F0 7E 7F 08 08 00 01 F7", "F0 7E 7F 08 08", true},
		{"prefix shorter message", "F0 7E 7F", "F0 7E 7F 08 08", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesMask(mustHex(tt.msg), mustHex(tt.mask)); got != tt.want {
				t.Errorf("matchesMask(%s, %s) = %v, want %v", tt.msg, tt.mask, got, tt.want)
			}
		})
	}
}

func TestProfile_Prepare(t *testing.T) {
	p := DefaultProfile()

	in := smf.Track{Events: []smf.Event{
		ev(0, smf.TextMeta(smf.MetaTrackName, "Piece")),
		ev(0, smf.Meta{Type: smf.MetaSequencerSpecific, Data: []byte{67, 1}}),
		ev(0, smf.Tempo(500000)),
		ev(0, smf.ControlChange{Controller: 7, Value: 100}),
		ev(0, smf.ProgramChange{Program: 2}),
		ev(0, sysex("F0 43 73 01 02 F7")),
		ev(96, smf.NoteOn{Key: 60, Velocity: 80}),
		ev(0, smf.ControlChange{Controller: 2, Value: 10}),
		ev(96, smf.NoteOff{Key: 60, Velocity: 64}),
		ev(0, smf.EndOfTrack()),
	}}

	got, err := p.Prepare(in, HeaderOptions{TrackName: "file", Copyright: "(c) 2020", Texts: []string{"first", "second"}})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	want := []smf.Event{
		ev(0, smf.Tempo(600000)),
		ev(0, smf.TimeSignature(4, 4, 24, 8)),
		ev(0, smf.TextMeta(smf.MetaCopyright, "(c) 2020")),
		ev(0, smf.TextMeta(smf.MetaText, "first")),
		ev(0, smf.TextMeta(smf.MetaText, "second")),
		ev(0, smf.TextMeta(smf.MetaTrackName, "Piece")),
	}
	for _, data := range p.SequencerSpecific {
		want = append(want, ev(0, smf.Meta{Type: smf.MetaSequencerSpecific, Data: data}))
	}
	want = append(want, p.Setup...)
	want = append(want,
		ev(0, smf.Tempo(500000)),
		ev(0, smf.ControlChange{Controller: 7, Value: 100}),
		ev(0, sysex("F0 43 73 01 02 F7")),
		ev(96, smf.NoteOn{Key: 60, Velocity: 80}),
		ev(96, smf.NoteOff{Key: 60, Velocity: 64}),
		ev(0, smf.EndOfTrack()),
	)

	if !reflect.DeepEqual(got.Events, want) {
		t.Errorf("Prepare() =\n%v\nwant\n%v", got.Events, want)
	}
}

func TestProfile_PrepareShiftsByLeadIn(t *testing.T) {
	p := DefaultProfile()

	in := smf.Track{Events: []smf.Event{
		ev(10, smf.NoteOn{Key: 60, Velocity: 80}),
		ev(100, smf.NoteOff{Key: 60, Velocity: 64}),
		ev(5, smf.EndOfTrack()),
	}}
	got, err := p.Prepare(in, HeaderOptions{TrackName: "file"})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	var leadIn uint64
	for _, e := range p.Setup {
		leadIn += uint64(e.Delta)
	}
	if leadIn != 1990 {
		t.Fatalf("lead-in = %d ticks, want 1990", leadIn)
	}
	if got.Length() != in.Length()+leadIn {
		t.Errorf("Length() = %d, want %d", got.Length(), in.Length()+leadIn)
	}
	if name, _ := got.Events[2].Message.(smf.Meta).Text(); name != "file" {
		t.Errorf("track name = %q, want %q", name, "file")
	}
}

func TestProfile_PrepareWithoutNotes(t *testing.T) {
	p := DefaultProfile()

	in := smf.Track{Events: []smf.Event{
		ev(0, smf.Tempo(400000)),
		ev(0, smf.ControlChange{Controller: 7, Value: 90}),
		ev(10, smf.EndOfTrack()),
	}}
	got, err := p.Prepare(in, HeaderOptions{})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	want := []smf.Event{
		ev(0, smf.Tempo(600000)),
		ev(0, smf.TimeSignature(4, 4, 24, 8)),
		ev(0, smf.Tempo(400000)),
		ev(0, smf.ControlChange{Controller: 7, Value: 90}),
		ev(10, smf.EndOfTrack()),
	}
	if !reflect.DeepEqual(got.Events, want) {
		t.Errorf("Prepare() =\n%v\nwant\n%v", got.Events, want)
	}
}

func TestProfile_PrepareFile(t *testing.T) {
	p := DefaultProfile()

	f := &smf.File{
		Format:   1,
		Division: smf.TicksPerQuarter(480),
		Tracks: []smf.Track{
			{Events: []smf.Event{ev(0, smf.Tempo(500000)), ev(0, smf.EndOfTrack())}},
			{Events: []smf.Event{
				ev(0, smf.ProgramChange{Program: 0}),
				ev(480, smf.NoteOn{Key: 64, Velocity: 70}),
				ev(480, smf.NoteOn{Key: 64, Velocity: 0}),
				ev(0, smf.EndOfTrack()),
			}},
		},
	}

	out, err := p.PrepareFile(f, HeaderOptions{TrackName: "song"})
	if err != nil {
		t.Fatalf("PrepareFile() error = %v", err)
	}
	if out.Format != 0 || len(out.Tracks) != 1 {
		t.Fatalf("PrepareFile() format %d with %d tracks, want format 0 with 1 track", out.Format, len(out.Tracks))
	}
	if out.Division != f.Division {
		t.Errorf("Division = %v, want %v", out.Division, f.Division)
	}
	if err := smf.Validate(out); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if len(f.Tracks) != 2 || f.Format != 1 {
		t.Error("PrepareFile() modified its input")
	}
}
