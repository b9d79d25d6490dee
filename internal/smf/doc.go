// Package smf reads and writes Standard MIDI Files.
//
// The codec decodes an SMF byte stream into a File made of Tracks of timed
// Events and encodes such a File back into bytes. Every event is classified
// on decode into one of a closed set of message types, so callers can use a
// type switch instead of re-parsing bytes:
//
//	f, err := smf.Decode(data)
//	if err != nil {
//	    return err
//	}
//	for _, ev := range f.Tracks[0].Events {
//	    switch m := ev.Message.(type) {
//	    case smf.NoteOn:
//	        fmt.Println(m.Key, m.Velocity)
//	    case smf.Meta:
//	        fmt.Println(m.Type)
//	    }
//	}
//
// # Round-trip
//
// Encode writes minimal VLQ deltas and, unless Encoder.RunningStatus is set,
// an explicit status byte for every event. Decoding the output yields the
// same events as the input, though the bytes may differ from the original
// file.
//
// # Errors
//
// Decode fails with *UnsupportedFormatError, *MalformedVLQError,
// *TruncatedTrackError or *MalformedEventError; Encode fails with
// *InvariantViolationError when the model breaks a structural rule. All of
// them carry the chunk index and, for decode errors, the byte offset.
package smf
