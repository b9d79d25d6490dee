package smf

import (
	"sort"
	"time"
)

// AbsoluteTicks returns the absolute tick position of every event in t.
func AbsoluteTicks(t Track) []uint64 {
	ticks := make([]uint64, len(t.Events))
	var now uint64
	for i, ev := range t.Events {
		now += uint64(ev.Delta)
		ticks[i] = now
	}
	return ticks
}

// Length returns the absolute tick of the last event of t.
func (t Track) Length() uint64 {
	var n uint64
	for _, ev := range t.Events {
		n += uint64(ev.Delta)
	}
	return n
}

// MergeTracks flattens f into a single-track format 0 file. Events are
// ordered by absolute tick, ties keeping track order then event order.
// Interior end-of-track events are dropped and one is appended at the
// latest tick of any track. A file that already has a single track is
// cloned with its format set to 0.
func MergeTracks(f *File) *File {
	type timed struct {
		tick uint64
		msg  Message
	}

	var (
		all []timed
		end uint64
	)
	for _, t := range f.Tracks {
		var now uint64
		for _, ev := range t.Events {
			now += uint64(ev.Delta)
			if IsEndOfTrack(ev.Message) {
				continue
			}
			all = append(all, timed{tick: now, msg: cloneMessage(ev.Message)})
		}
		if now > end {
			end = now
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].tick < all[j].tick })

	events := make([]Event, 0, len(all)+1)
	var prev uint64
	for _, e := range all {
		events = append(events, Event{Delta: uint32(e.tick - prev), Message: e.msg})
		prev = e.tick
	}
	events = append(events, Event{Delta: uint32(end - prev), Message: EndOfTrack()})

	return &File{Format: 0, Division: f.Division, Tracks: []Track{{Events: events}}}
}

// Duration returns the playing time of f. Tempo changes are taken from
// every track, as format 1 files keep them in the first track. SMPTE
// divisions have a fixed tick rate and ignore tempo.
func Duration(f *File) time.Duration {
	var end uint64
	for _, t := range f.Tracks {
		if n := t.Length(); n > end {
			end = n
		}
	}

	if f.Division.IsSMPTE() {
		ticksPerSecond := float64(f.Division.FramesPerSecond()) * float64(f.Division.Ticks())
		if f.Division.FramesPerSecond() == 29 {
			ticksPerSecond = 29.97 * float64(f.Division.Ticks())
		}
		return time.Duration(float64(end) / ticksPerSecond * float64(time.Second))
	}

	type change struct {
		tick  uint64
		tempo uint32
	}
	var changes []change
	for _, t := range f.Tracks {
		var now uint64
		for _, ev := range t.Events {
			now += uint64(ev.Delta)
			if m, ok := ev.Message.(Meta); ok {
				if tempo, ok := m.Tempo(); ok {
					changes = append(changes, change{tick: now, tempo: tempo})
				}
			}
		}
	}
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].tick < changes[j].tick })

	ppq := float64(f.Division.Ticks())
	var (
		total time.Duration
		tick  uint64
		tempo uint32 = DefaultTempo
	)
	for _, c := range changes {
		if c.tick >= end {
			break
		}
		total += ticksToDuration(c.tick-tick, tempo, ppq)
		tick, tempo = c.tick, c.tempo
	}
	total += ticksToDuration(end-tick, tempo, ppq)
	return total
}

func ticksToDuration(ticks uint64, tempo uint32, ppq float64) time.Duration {
	return time.Duration(float64(ticks) * float64(tempo) / ppq * float64(time.Microsecond))
}
