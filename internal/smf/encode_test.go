package smf

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	gosmf "gitlab.com/gomidi/midi/v2/smf"
)

func TestEncode_SemanticRoundTrip(t *testing.T) {
	first, err := Decode(specExample)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	data, err := Encode(first)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	second, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode(Encode()) error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("round trip changed the file:\n got %v\nwant %v", second, first)
	}

	// Running status is expanded, so the output is larger than the input.
	if len(data) <= len(specExample) {
		t.Errorf("encoded %d bytes, expected more than the %d input bytes", len(data), len(specExample))
	}
}

func TestEncode_RunningStatus(t *testing.T) {
	first, err := Decode(specExample)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	data, err := Encoder{RunningStatus: true}.Encode(first)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(data, specExample) {
		t.Errorf("running status output differs from the example:\n got % X\nwant % X", data, specExample)
	}
}

func TestEncode_Bytes(t *testing.T) {
	f := &File{
		Format:   0,
		Division: TicksPerQuarter(480),
		Tracks: []Track{track(
			ev(0, ControlChange{Channel: 0, Controller: 64, Value: 127}),
			ev(200, NoteOn{Channel: 1, Key: 60, Velocity: 90}),
			ev(0, PitchBend{Channel: 2, Value: 0x3FFF}),
			ev(0, SysEx{Status: 0xF0, Data: []byte{0x7E, 0x7F, 0x09, 0x01, 0xF7}}),
			ev(0, EndOfTrack()),
		)},
	}

	want := join(
		header(0, 1, 480),
		chunk("MTrk",
			0, 0xB0, 64, 127,
			0x81, 0x48, 0x91, 60, 90,
			0, 0xE2, 0x7F, 0x7F,
			0, 0xF0, 5, 0x7E, 0x7F, 0x09, 0x01, 0xF7,
			0, 0xFF, 0x2F, 0,
		),
	)

	got, err := Encode(f)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() =\n% X\nwant\n% X", got, want)
	}
}

func TestEncode_InvariantViolations(t *testing.T) {
	eot := ev(0, EndOfTrack())

	tests := []struct {
		name string
		file *File
	}{
		{"format 0 with two tracks", &File{Format: 0, Division: 96, Tracks: []Track{track(eot), track(eot)}}},
		{"missing end of track", &File{Format: 1, Division: 96, Tracks: []Track{track(ev(0, NoteOn{Key: 60, Velocity: 1}))}}},
		{"empty track", &File{Format: 1, Division: 96, Tracks: []Track{{}}}},
		{"early end of track", &File{Format: 1, Division: 96, Tracks: []Track{track(eot, ev(0, NoteOn{Key: 60, Velocity: 1}), eot)}}},
		{"velocity out of range", &File{Format: 1, Division: 96, Tracks: []Track{track(ev(0, NoteOn{Key: 60, Velocity: 200}), eot)}}},
		{"channel out of range", &File{Format: 1, Division: 96, Tracks: []Track{track(ev(0, ControlChange{Channel: 16}), eot)}}},
		{"bend out of range", &File{Format: 1, Division: 96, Tracks: []Track{track(ev(0, PitchBend{Value: 0x4000}), eot)}}},
		{"delta too large", &File{Format: 1, Division: 96, Tracks: []Track{track(ev(MaxDelta+1, EndOfTrack()))}}},
		{"zero division", &File{Format: 1, Division: 0, Tracks: []Track{track(eot)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.file)
			var target *InvariantViolationError
			if !errors.As(err, &target) {
				t.Errorf("Encode() error = %v, want InvariantViolationError", err)
			}
		})
	}
}

func TestEncode_ReadableByGomidi(t *testing.T) {
	f, err := Decode(specExample)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	for _, enc := range []Encoder{{}, {RunningStatus: true}} {
		data, err := enc.Encode(f)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}

		other, err := gosmf.ReadFrom(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("gomidi could not read the output (running status %v): %v", enc.RunningStatus, err)
		}
		if other.Format() != 1 {
			t.Errorf("gomidi Format() = %d, want 1", other.Format())
		}
		if tf, ok := other.TimeFormat.(gosmf.MetricTicks); !ok || uint16(tf) != 96 {
			t.Errorf("gomidi TimeFormat = %v, want 96 metric ticks", other.TimeFormat)
		}
		if len(other.Tracks) != 4 {
			t.Fatalf("gomidi found %d tracks, want 4", len(other.Tracks))
		}

		var ch, key, vel uint8
		notes := 0
		for _, e := range other.Tracks[3] {
			if e.Message.GetNoteOn(&ch, &key, &vel) || e.Message.GetNoteOff(&ch, &key, &vel) {
				notes++
			}
		}
		if notes != 4 {
			t.Errorf("gomidi saw %d note events in track 3, want 4", notes)
		}
	}
}
