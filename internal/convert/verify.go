package convert

import (
	"bytes"
	"fmt"

	gosmf "gitlab.com/gomidi/midi/v2/smf"

	"github.com/handiism/modus-converter/internal/smf"
)

// voiceCounts tallies the channel messages of one track.
type voiceCounts struct {
	notes    int
	controls int
	programs int
}

// Verify reads data back and checks that it holds the same format, time
// base, tracks and channel messages as want. Files with a metric time base
// are read with an independent SMF reader; it cannot compute times for an
// SMPTE time base, so those are read back with our own decoder.
func Verify(data []byte, want *smf.File) error {
	if want.Division.IsSMPTE() {
		return verifySMPTE(data, want)
	}

	got, err := readGomidi(data)
	if err != nil {
		return fmt.Errorf("output is not readable: %w", err)
	}

	if got.Format() != want.Format {
		return fmt.Errorf("format %d read back as %d", want.Format, got.Format())
	}
	if err := verifyTimeFormat(got.TimeFormat, want.Division); err != nil {
		return err
	}
	if len(got.Tracks) != len(want.Tracks) {
		return fmt.Errorf("%d tracks read back as %d", len(want.Tracks), len(got.Tracks))
	}

	for i := range want.Tracks {
		w := countVoice(want.Tracks[i])
		g := countGomidi(got.Tracks[i])
		if w != g {
			return fmt.Errorf("track %d: wrote %d notes, %d control changes, %d program changes; read back %d, %d, %d",
				i, w.notes, w.controls, w.programs, g.notes, g.controls, g.programs)
		}
	}
	return nil
}

// readGomidi reads data with gomidi. A panic inside the reader is
// returned as an error so one file never takes down a batch.
func readGomidi(data []byte) (sf *gosmf.SMF, err error) {
	defer func() {
		if r := recover(); r != nil {
			sf, err = nil, fmt.Errorf("reader panicked: %v", r)
		}
	}()
	return gosmf.ReadFrom(bytes.NewReader(data))
}

func verifySMPTE(data []byte, want *smf.File) error {
	got, err := smf.Decode(data)
	if err != nil {
		return fmt.Errorf("output is not readable: %w", err)
	}
	if got.Format != want.Format {
		return fmt.Errorf("format %d read back as %d", want.Format, got.Format)
	}
	if got.Division != want.Division {
		return fmt.Errorf("division %v read back as %v", want.Division, got.Division)
	}
	if len(got.Tracks) != len(want.Tracks) {
		return fmt.Errorf("%d tracks read back as %d", len(want.Tracks), len(got.Tracks))
	}
	for i := range want.Tracks {
		if w, g := countVoice(want.Tracks[i]), countVoice(got.Tracks[i]); w != g {
			return fmt.Errorf("track %d: wrote %d notes, %d control changes, %d program changes; read back %d, %d, %d",
				i, w.notes, w.controls, w.programs, g.notes, g.controls, g.programs)
		}
	}
	return nil
}

// verifyTimeFormat checks a metric time base read back by gomidi.
func verifyTimeFormat(tf gosmf.TimeFormat, d smf.Division) error {
	ticks, ok := tf.(gosmf.MetricTicks)
	if !ok || d.IsSMPTE() || uint16(ticks) != d.Ticks() {
		return fmt.Errorf("division %v read back as %v", d, tf)
	}
	return nil
}

func countVoice(t smf.Track) voiceCounts {
	var c voiceCounts
	for _, ev := range t.Events {
		switch ev.Message.(type) {
		case smf.NoteOn, smf.NoteOff:
			c.notes++
		case smf.ControlChange:
			c.controls++
		case smf.ProgramChange:
			c.programs++
		}
	}
	return c
}

func countGomidi(t gosmf.Track) voiceCounts {
	var (
		c             voiceCounts
		ch, key, vel  uint8
		program       uint8
		controller, v uint8
	)
	for _, ev := range t {
		msg := ev.Message
		switch {
		case msg.GetNoteOn(&ch, &key, &vel), msg.GetNoteOff(&ch, &key, &vel):
			c.notes++
		case msg.GetControlChange(&ch, &controller, &v):
			c.controls++
		case msg.GetProgramChange(&ch, &program):
			c.programs++
		}
	}
	return c
}
