package sse

import "fmt"

// EncodingError reports a complete line that is not valid UTF-8. It aborts
// the stream.
type EncodingError struct {
	// Line is the 1-based index of the offending line in the stream.
	Line int
	Raw  []byte
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("sse: line %d is not valid UTF-8 (%d bytes)", e.Line, len(e.Raw))
}

// FrameError reports a data line whose payload could not be decoded as a
// completion chunk. It is only ever handed to hooks; the decoder skips the
// frame and carries on.
type FrameError struct {
	Line    int
	Payload string
	Err     error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("sse: line %d: decode frame: %v", e.Line, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }
