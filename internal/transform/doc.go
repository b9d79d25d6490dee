// Package transform rewrites decoded MIDI events so a Yamaha digital piano
// renders them the way the source instrument played them.
//
// # Engine
//
// An Engine applies a fixed, ordered list of rules to every event of every
// track:
//
//  1. Note-on with velocity 0 becomes an explicit note-off
//  2. Note-on velocity is clamped (or rescaled) into the configured range
//  3. Sustain, soft and sostenuto pedal values are requantized
//  4. An optional device filter rejects messages the target cannot play
//  5. Pedal events that do not change the pedal state are dropped
//  6. Duplicate control changes at the same tick are dropped
//
// Tempo, time signature, program change, sysex and other meta events pass
// through untouched. When an event is dropped its delta-time is carried to
// the next surviving event, so every surviving event keeps its absolute
// tick.
//
//	engine, err := transform.New(transform.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	out, stats, err := engine.Apply(file)
//
// State (last emitted controller values) is kept per track and channel and
// never crosses tracks. An Engine holds no per-call state and may be shared
// between goroutines.
package transform
