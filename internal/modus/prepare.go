package modus

import (
	"fmt"

	"github.com/handiism/modus-converter/internal/smf"
)

// HeaderOptions are the names written at the head of a prepared track.
type HeaderOptions struct {
	// TrackName is written when the track has no track name of its own.
	// Callers usually pass the file name without its extension.
	TrackName string

	// Copyright is written when non-empty and the track has no copyright.
	Copyright string

	// Texts are written as text meta events, in order.
	Texts []string
}

// PrepareFile merges f into a single track and prepares it. f is not
// modified.
func (p *Profile) PrepareFile(f *smf.File, opts HeaderOptions) (*smf.File, error) {
	merged := smf.MergeTracks(f)
	track, err := p.Prepare(merged.Tracks[0], opts)
	if err != nil {
		return nil, err
	}
	merged.Tracks[0] = track
	return merged, nil
}

// Prepare rebuilds the head of a single merged track.
//
// The output starts with the profile tempo, a 4/4 time signature and the
// header metas from opts. Until the first sounding channel event, tempo
// and time signature changes, control and program changes and system
// exclusive messages are held back, and sequencer-specific metas are
// dropped. The first sounding event is preceded by the profile's
// sequencer-specific metas, its Setup lead-in and then the held-back
// events the profile accepts. Everything after that passes through
// Accept. Time of dropped and held-back events moves to the next event
// written, so the lead-in shifts the rest of the track by its own length.
func (p *Profile) Prepare(t smf.Track, opts HeaderOptions) (smf.Track, error) {
	events := make([]smf.Event, 0, len(t.Events)+len(p.SequencerSpecific)+len(p.Setup)+8)
	emit := func(delta uint32, msg smf.Message) {
		events = append(events, smf.Event{Delta: delta, Message: msg})
	}

	emit(0, smf.Tempo(p.Tempo))
	emit(0, smf.TimeSignature(4, 4, 24, 8))
	if opts.TrackName != "" && !hasMeta(t, smf.MetaTrackName) {
		emit(0, smf.TextMeta(smf.MetaTrackName, opts.TrackName))
	}
	if opts.Copyright != "" && !hasMeta(t, smf.MetaCopyright) {
		emit(0, smf.TextMeta(smf.MetaCopyright, opts.Copyright))
	}
	for _, text := range opts.Texts {
		emit(0, smf.TextMeta(smf.MetaText, text))
	}

	var (
		held    []smf.Message
		timing  []smf.Message
		leading = true
		pending uint64
	)
	flush := func() {
		for _, m := range timing {
			if p.Accept(m) {
				emit(0, m)
			}
		}
		for _, m := range held {
			if p.Accept(m) {
				emit(0, m)
			}
		}
		held, timing = nil, nil
	}

	for i, ev := range t.Events {
		pending += uint64(ev.Delta)
		msg := ev.Message

		if leading {
			switch {
			case isMeta(msg, smf.MetaSequencerSpecific):
				continue
			case isMeta(msg, smf.MetaTempo), isMeta(msg, smf.MetaTimeSignature):
				timing = append(timing, msg)
				continue
			case isSetup(msg):
				held = append(held, msg)
				continue
			case isSounding(msg):
				leading = false
				for _, data := range p.SequencerSpecific {
					emit(0, smf.Meta{Type: smf.MetaSequencerSpecific, Data: data})
				}
				events = append(events, p.Setup...)
				flush()
			case smf.IsEndOfTrack(msg):
				flush()
			}
		}

		if !smf.IsEndOfTrack(msg) && !p.Accept(msg) {
			continue
		}
		if pending > smf.MaxDelta {
			return smf.Track{}, &smf.InvariantViolationError{Chunk: 0, Event: i, Reason: fmt.Sprintf("folded delta %d exceeds %d", pending, smf.MaxDelta)}
		}
		emit(uint32(pending), msg)
		pending = 0
	}

	return smf.Track{Events: events}, nil
}

func hasMeta(t smf.Track, typ byte) bool {
	for _, ev := range t.Events {
		if isMeta(ev.Message, typ) {
			return true
		}
	}
	return false
}

func isMeta(msg smf.Message, typ byte) bool {
	m, ok := msg.(smf.Meta)
	return ok && m.Type == typ
}

// isSetup reports whether msg configures the instrument rather than
// playing it.
func isSetup(msg smf.Message) bool {
	switch msg.(type) {
	case smf.ControlChange, smf.ProgramChange, smf.SysEx:
		return true
	}
	return false
}

func isSounding(msg smf.Message) bool {
	_, voice := msg.(smf.Voice)
	return voice && !isSetup(msg)
}
