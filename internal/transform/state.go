package transform

import "github.com/handiism/modus-converter/internal/smf"

type ccKey struct {
	channel    uint8
	controller uint8
}

// ccState is the last emitted value of one channel/controller pair.
type ccState struct {
	value uint8
	tick  uint64
}

// trackState is threaded through one track in event order.
type trackState struct {
	// tick is the absolute tick of the event being processed.
	tick uint64

	// cc holds the last emitted control change per channel and controller.
	cc map[ccKey]ccState
}

func newTrackState() *trackState {
	return &trackState{cc: make(map[ccKey]ccState)}
}

func (s *trackState) lastCC(channel, controller uint8) (ccState, bool) {
	v, ok := s.cc[ccKey{channel, controller}]
	return v, ok
}

// record updates the state with an event that made it into the output.
func (s *trackState) record(msg smf.Message) {
	if cc, ok := msg.(smf.ControlChange); ok {
		s.cc[ccKey{cc.Channel, cc.Controller}] = ccState{value: cc.Value, tick: s.tick}
	}
}
