package transform

import (
	"errors"
	"fmt"

	"github.com/handiism/modus-converter/internal/smf"
)

// Filter decides whether the target device can play a message. Messages
// it rejects are dropped with their time carried forward.
type Filter interface {
	Accept(msg smf.Message) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(msg smf.Message) bool

// Accept calls f.
func (f FilterFunc) Accept(msg smf.Message) bool { return f(msg) }

// Option configures an Engine.
type Option func(*Engine)

// WithFilter drops messages f rejects. End-of-track events are never
// offered to the filter.
func WithFilter(f Filter) Option {
	return func(e *Engine) {
		e.filter = f
	}
}

// Stats counts what the engine changed.
type Stats struct {
	NoteOffsNormalized  int
	VelocitiesRemapped  int
	PedalsRequantized   int
	PedalRepeatsDropped int
	RedundantDropped    int
	Filtered            int
}

// Dropped returns the number of events removed.
func (s Stats) Dropped() int {
	return s.PedalRepeatsDropped + s.RedundantDropped + s.Filtered
}

// Changed returns the number of events rewritten in place.
func (s Stats) Changed() int {
	return s.NoteOffsNormalized + s.VelocitiesRemapped + s.PedalsRequantized
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.NoteOffsNormalized += o.NoteOffsNormalized
	s.VelocitiesRemapped += o.VelocitiesRemapped
	s.PedalsRequantized += o.PedalsRequantized
	s.PedalRepeatsDropped += o.PedalRepeatsDropped
	s.RedundantDropped += o.RedundantDropped
	s.Filtered += o.Filtered
}

func (s Stats) String() string {
	return fmt.Sprintf("%d note-offs normalized, %d velocities remapped, %d pedal values requantized, %d events dropped",
		s.NoteOffsNormalized, s.VelocitiesRemapped, s.PedalsRequantized, s.Dropped())
}

// Engine applies the compatibility rules.
type Engine struct {
	cfg    Config
	pedals [128]bool
	filter Filter
}

// New validates cfg and returns an Engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("transform config: %w", err)
	}

	e := &Engine{cfg: cfg}
	for _, cc := range cfg.PedalControllers {
		e.pedals[cc] = true
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Apply transforms every track of f and returns a new File. f is not
// modified; sysex and meta payloads are shared with it.
func (e *Engine) Apply(f *smf.File) (*smf.File, Stats, error) {
	out := &smf.File{Format: f.Format, Division: f.Division, Tracks: make([]smf.Track, len(f.Tracks))}

	var total Stats
	for i, t := range f.Tracks {
		track, stats, err := e.applyTrack(t, i)
		if err != nil {
			return nil, total, err
		}
		out.Tracks[i] = track
		total.Add(stats)
	}
	return out, total, nil
}

// ApplyTrack transforms a single track.
func (e *Engine) ApplyTrack(t smf.Track) (smf.Track, Stats, error) {
	return e.applyTrack(t, 0)
}

func (e *Engine) applyTrack(t smf.Track, chunk int) (smf.Track, Stats, error) {
	var (
		stats   Stats
		st      = newTrackState()
		rules   = e.rules()
		events  = make([]smf.Event, 0, len(t.Events))
		pending uint64
	)

	for i, ev := range t.Events {
		st.tick += uint64(ev.Delta)
		pending += uint64(ev.Delta)

		if ev.Message == nil {
			return smf.Track{}, stats, &smf.InvariantViolationError{Chunk: chunk, Event: i, Reason: "nil message"}
		}
		if reason := smf.CheckRange(ev.Message); reason != "" {
			return smf.Track{}, stats, &smf.InvariantViolationError{Chunk: chunk, Event: i, Reason: reason}
		}

		msg, keep := ev.Message, true
		if !smf.IsEndOfTrack(msg) {
			for _, r := range rules {
				if msg, keep = r(msg, st, &stats); !keep {
					break
				}
			}
		}
		if !keep {
			continue
		}

		if pending > smf.MaxDelta {
			return smf.Track{}, stats, &smf.InvariantViolationError{Chunk: chunk, Event: i, Reason: fmt.Sprintf("folded delta %d exceeds %d", pending, smf.MaxDelta)}
		}
		events = append(events, smf.Event{Delta: uint32(pending), Message: msg})
		st.record(msg)
		pending = 0
	}

	return smf.Track{Events: events}, stats, nil
}

// IsInvariantViolation reports whether err signals a codec or transform
// defect rather than bad input.
func IsInvariantViolation(err error) bool {
	var target *smf.InvariantViolationError
	return errors.As(err, &target)
}
