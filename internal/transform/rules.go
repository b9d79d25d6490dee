package transform

import "github.com/handiism/modus-converter/internal/smf"

// releaseVelocity is the note-off velocity used when a note-on with
// velocity 0 is rewritten. 64 is the value the MIDI specification asks
// for when no release velocity is known.
const releaseVelocity = 64

// rule rewrites one message. keep is false when the event must be dropped.
type rule func(msg smf.Message, st *trackState, stats *Stats) (out smf.Message, keep bool)

func (e *Engine) rules() []rule {
	rules := []rule{
		normalizeNoteOff,
		e.remapVelocity,
		e.requantizePedal,
	}
	if e.filter != nil {
		rules = append(rules, e.filterDevice)
	}
	if e.cfg.CollapsePedalRepeats {
		rules = append(rules, e.collapsePedal)
	}
	if e.cfg.FilterRedundantCC {
		rules = append(rules, filterRedundantCC)
	}
	return rules
}

func normalizeNoteOff(msg smf.Message, _ *trackState, stats *Stats) (smf.Message, bool) {
	on, ok := msg.(smf.NoteOn)
	if !ok || on.Velocity != 0 {
		return msg, true
	}
	stats.NoteOffsNormalized++
	return smf.NoteOff{Channel: on.Channel, Key: on.Key, Velocity: releaseVelocity}, true
}

func (e *Engine) remapVelocity(msg smf.Message, _ *trackState, stats *Stats) (smf.Message, bool) {
	on, ok := msg.(smf.NoteOn)
	if !ok {
		return msg, true
	}
	v := e.velocity(on.Velocity)
	if v != on.Velocity {
		stats.VelocitiesRemapped++
		on.Velocity = v
	}
	return on, true
}

// velocity maps a non-zero note-on velocity into the configured range.
func (e *Engine) velocity(v uint8) uint8 {
	lo, hi := e.cfg.VelocityMin, e.cfg.VelocityMax
	if e.cfg.VelocityMode == VelocityScale {
		span := int(hi) - int(lo)
		return uint8(int(lo) + ((int(v)-1)*span+63)/126)
	}
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

func (e *Engine) requantizePedal(msg smf.Message, _ *trackState, stats *Stats) (smf.Message, bool) {
	cc, ok := msg.(smf.ControlChange)
	if !ok || !e.pedals[cc.Controller] {
		return msg, true
	}
	v := e.pedalValue(cc.Value)
	if v != cc.Value {
		stats.PedalsRequantized++
		cc.Value = v
	}
	return cc, true
}

// pedalValue requantizes a continuous pedal value.
func (e *Engine) pedalValue(v uint8) uint8 {
	steps := e.cfg.PedalLevels - 1
	if steps == 1 {
		if v >= e.cfg.PedalThreshold {
			return 127
		}
		return 0
	}
	level := (int(v)*steps + 63) / 127
	return uint8((level*127 + steps/2) / steps)
}

func (e *Engine) filterDevice(msg smf.Message, _ *trackState, stats *Stats) (smf.Message, bool) {
	if e.filter.Accept(msg) {
		return msg, true
	}
	stats.Filtered++
	return msg, false
}

func (e *Engine) collapsePedal(msg smf.Message, st *trackState, stats *Stats) (smf.Message, bool) {
	cc, ok := msg.(smf.ControlChange)
	if !ok || !e.pedals[cc.Controller] {
		return msg, true
	}
	if last, seen := st.lastCC(cc.Channel, cc.Controller); seen && last.value == cc.Value {
		stats.PedalRepeatsDropped++
		return msg, false
	}
	return msg, true
}

func filterRedundantCC(msg smf.Message, st *trackState, stats *Stats) (smf.Message, bool) {
	cc, ok := msg.(smf.ControlChange)
	if !ok {
		return msg, true
	}
	if last, seen := st.lastCC(cc.Channel, cc.Controller); seen && last.tick == st.tick && last.value == cc.Value {
		stats.RedundantDropped++
		return msg, false
	}
	return msg, true
}
