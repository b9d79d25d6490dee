package convert

import (
	"os"
	"testing"

	"github.com/handiism/modus-converter/internal/smf"
)

func ev(delta uint32, m smf.Message) smf.Event {
	return smf.Event{Delta: delta, Message: m}
}

// pianoFile is a two-track recording with a pedal ramp and a note-on
// used as note-off.
func pianoFile() *smf.File {
	return &smf.File{
		Format:   1,
		Division: smf.TicksPerQuarter(96),
		Tracks: []smf.Track{
			{Events: []smf.Event{
				ev(0, smf.TextMeta(smf.MetaTrackName, "Recording")),
				ev(0, smf.Tempo(500000)),
				ev(0, smf.EndOfTrack()),
			}},
			{Events: []smf.Event{
				ev(0, smf.ControlChange{Controller: 64, Value: 0}),
				ev(0, smf.ControlChange{Controller: 64, Value: 127}),
				ev(10, smf.NoteOn{Key: 60, Velocity: 0}),
				ev(0, smf.EndOfTrack()),
			}},
		},
	}
}

func encode(t *testing.T, f *smf.File) []byte {
	t.Helper()
	data, err := smf.Encode(f)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return data
}

func writeMIDI(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

// badVLQFile has a delta-time of five bytes.
var badVLQFile = []byte{
	'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 0, 0, 1, 0, 96,
	'M', 'T', 'r', 'k', 0, 0, 0, 8,
	0x81, 0x80, 0x80, 0x80, 0x00, 0xFF, 0x2F, 0x00,
}

// smpteFile is pianoFile with 25 frames per second and 40 ticks per frame.
func smpteFile() *smf.File {
	f := pianoFile()
	f.Division = smf.Division(0xE728)
	return f
}
