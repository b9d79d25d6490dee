package report

import (
	"strings"
	"testing"
	"time"

	"github.com/handiism/modus-converter/internal/smf"
)

func ev(delta uint32, m smf.Message) smf.Event {
	return smf.Event{Delta: delta, Message: m}
}

func testFile() *smf.File {
	return &smf.File{
		Format:   1,
		Division: smf.TicksPerQuarter(480),
		Tracks: []smf.Track{
			{Events: []smf.Event{
				ev(0, smf.TextMeta(smf.MetaTrackName, "Nocturne")),
				ev(0, smf.TextMeta(smf.MetaCopyright, "(c) 1832")),
				ev(0, smf.Tempo(500000)),
				ev(0, smf.EndOfTrack()),
			}},
			{Events: []smf.Event{
				ev(0, smf.TextMeta(smf.MetaTrackName, "Right hand")),
				ev(0, smf.TextMeta(smf.MetaInstrumentName, "Piano")),
				ev(0, smf.ProgramChange{Program: 0}),
				ev(0, smf.TextMeta(smf.MetaText, "Op. 9")),
				ev(0, smf.TextMeta(smf.MetaText, "No. 2")),
				ev(480, smf.NoteOn{Key: 60, Velocity: 80}),
				ev(0, smf.TextMeta(smf.MetaText, "after the first note")),
				ev(480*120-480, smf.NoteOff{Key: 60, Velocity: 64}),
				ev(0, smf.EndOfTrack()),
			}},
		},
	}
}

func TestExtract(t *testing.T) {
	row := Extract("nocturne.mid", testFile())

	want := Row{
		Filename:       "nocturne.mid",
		TrackName:      "Nocturne; Right hand",
		InstrumentName: "Piano",
		Text:           "Op. 9; No. 2",
		Copyright:      "(c) 1832",
		Format:         1,
		Tracks:         2,
		Duration:       time.Minute,
	}
	if row != want {
		t.Errorf("Extract() = %+v, want %+v", row, want)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTSV, false},
		{"tsv", FormatTSV, false},
		{"CSV", FormatCSV, false},
		{"xml", FormatTSV, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if got != tt.want || (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
			}
		})
	}
}

func TestFormat_Extension(t *testing.T) {
	if got := FormatTSV.Extension(); got != ".tsv" {
		t.Errorf("Extension() = %q, want %q", got, ".tsv")
	}
	if got := FormatCSV.Extension(); got != ".csv" {
		t.Errorf("Extension() = %q, want %q", got, ".csv")
	}
}

func TestCreator_CreateReport(t *testing.T) {
	rows := []Row{
		{Filename: "a.mid", TrackName: "A", Format: 0, Tracks: 1, Duration: 90 * time.Second},
		{Filename: "b.mid", Text: "one, two", Format: 1, Tracks: 3},
	}

	tests := []struct {
		name      string
		format    Format
		header    string
		secondRow string
	}{
		{
			name:      "tsv",
			format:    FormatTSV,
			header:    strings.Join(Columns, "\t"),
			secondRow: "b.mid\t\t\tone, two\t\t1\t3\t0 s",
		},
		{
			name:      "csv",
			format:    FormatCSV,
			header:    strings.Join(Columns, ","),
			secondRow: `b.mid,,,"one, two",,1,3,0 s`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := NewCreator(tt.format).CreateReport(rows)
			if err != nil {
				t.Fatalf("CreateReport() error = %v", err)
			}

			lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
			if len(lines) != 3 {
				t.Fatalf("CreateReport() gave %d lines, want 3:\n%s", len(lines), content)
			}
			if lines[0] != tt.header {
				t.Errorf("header = %q, want %q", lines[0], tt.header)
			}
			if !strings.HasPrefix(lines[1], "a.mid") {
				t.Errorf("first row = %q, want it to start with a.mid", lines[1])
			}
			if lines[2] != tt.secondRow {
				t.Errorf("second row = %q, want %q", lines[2], tt.secondRow)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(0); got != "0 s" {
		t.Errorf("FormatDuration(0) = %q, want %q", got, "0 s")
	}

	got := FormatDuration(3*time.Hour + 25*time.Minute + 10*time.Second)
	if !strings.Contains(got, "3") || !strings.Contains(got, "25") || strings.Contains(got, "10") {
		t.Errorf("FormatDuration() = %q, want the two largest units only", got)
	}
}

func TestFormatDuration_ShortUnits(t *testing.T) {
	if got, want := FormatDuration(90*time.Second), "1 m 30 s"; got != want {
		t.Errorf("FormatDuration(90s) = %q, want %q", got, want)
	}
}

func TestMustUnits_PanicsOnBadLiteral(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mustUnits() did not panic on a malformed literal")
		}
	}()
	mustUnits("m:m")
}
