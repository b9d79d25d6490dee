package smf

import "fmt"

// UnsupportedFormatError reports a malformed header chunk or an SMF format
// other than 0, 1 or 2.
type UnsupportedFormatError struct {
	Offset int
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("smf: unsupported format at offset %d: %s", e.Offset, e.Reason)
}

// MalformedVLQError reports a variable-length quantity longer than four
// bytes.
type MalformedVLQError struct {
	Offset int
	Chunk  int
}

func (e *MalformedVLQError) Error() string {
	return fmt.Sprintf("smf: malformed variable-length quantity at offset %d (track %d)", e.Offset, e.Chunk)
}

// TruncatedTrackError reports input that ends before a chunk, an event or
// the terminal end-of-track event is complete.
type TruncatedTrackError struct {
	Offset int
	Chunk  int
	Reason string
}

func (e *TruncatedTrackError) Error() string {
	return fmt.Sprintf("smf: truncated track %d at offset %d: %s", e.Chunk, e.Offset, e.Reason)
}

// MalformedEventError reports an event that cannot be classified: an
// undefined status byte, a data byte without running status, or a data
// byte with its high bit set.
type MalformedEventError struct {
	Offset int
	Chunk  int
	Reason string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("smf: malformed event at offset %d (track %d): %s", e.Offset, e.Chunk, e.Reason)
}

// InvariantViolationError reports an in-memory model that breaks a
// structural rule of the format. It indicates a defect in the code that
// built or edited the model, never bad input.
type InvariantViolationError struct {
	Chunk  int
	Event  int
	Reason string
}

func (e *InvariantViolationError) Error() string {
	if e.Event < 0 {
		return fmt.Sprintf("smf: invariant violated in track %d: %s", e.Chunk, e.Reason)
	}
	return fmt.Sprintf("smf: invariant violated in track %d event %d: %s", e.Chunk, e.Event, e.Reason)
}
