// Package sse decodes the Server-Sent-Events stream of an OpenAI-compatible
// chat completion into text deltas, one chunk at a time.
//
// Chunks may split lines, and even UTF-8 code points, anywhere. The decoder
// keeps the unterminated tail of the input between calls and only looks at a
// line once its terminating newline has arrived.
package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"unicode/utf8"

	"github.com/brianbirrell/ai-cli/internal/hook"
)

// Delta is one fragment of generated text.
type Delta struct {
	Text string
	// Choice is the index of the choice the fragment belongs to.
	Choice int
}

// Decoder turns raw chunks into Deltas. A Decoder is not safe for concurrent
// use; it is owned by the single loop that reads the response body.
//
// Counts of frames, malformed frames and done markers are reported through
// hooks only.
type Decoder struct {
	// buf holds only the bytes after the last consumed newline.
	buf    []byte
	lines  int
	frames int
	hooks  *hook.Manager
}

// NewDecoder creates a Decoder. hooks may be nil.
func NewDecoder(hooks *hook.Manager) *Decoder {
	return &Decoder{hooks: hooks}
}

// Feed appends chunk to the line buffer and drains every complete line,
// calling emit for each delta as soon as its line is decoded. Feed returns
// once no newline is left in the buffer. Only an EncodingError is returned;
// malformed JSON is reported to hooks and skipped.
func (d *Decoder) Feed(ctx context.Context, chunk []byte, emit func(Delta)) error {
	d.buf = append(d.buf, chunk...)

	consumed := 0
	for {
		i := bytes.IndexByte(d.buf[consumed:], '\n')
		if i < 0 {
			break
		}
		line := d.buf[consumed : consumed+i]
		consumed += i + 1
		d.lines++

		if !utf8.Valid(line) {
			d.compact(consumed)
			return &EncodingError{Line: d.lines, Raw: append([]byte(nil), line...)}
		}
		d.processLine(ctx, string(bytes.TrimSpace(line)), emit)
	}

	d.compact(consumed)
	return nil
}

// Finish ends the stream. Whatever is left in the buffer never saw its
// newline and is dropped, even if it would parse. It returns the number of
// bytes discarded.
func (d *Decoder) Finish(ctx context.Context) int {
	residual := len(d.buf)
	if d.hooks.HasHandlers(hook.OnStreamEnd) {
		d.hooks.Trigger(ctx, hook.NewHookData(hook.OnStreamEnd).
			Set(hook.KeyResidual, residual).
			Set(hook.KeyPayload, string(d.buf)).
			Set(hook.KeyIndex, d.frames))
	}
	d.buf = d.buf[:0]
	return residual
}

// Buffered returns the number of bytes waiting for a newline.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

func (d *Decoder) compact(consumed int) {
	if consumed == 0 {
		return
	}
	d.buf = append(d.buf[:0], d.buf[consumed:]...)
}

func (d *Decoder) processLine(ctx context.Context, line string, emit func(Delta)) {
	kind, payload := Classify(line)
	switch kind {
	case FrameDone:
		d.hooks.Trigger(ctx, hook.NewHookData(hook.OnDoneMarker))
	case FrameData:
		if payload == "" {
			return
		}
		var frame streamFrame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			ferr := &FrameError{Line: d.lines, Payload: payload, Err: err}
			d.hooks.Trigger(ctx, hook.NewHookData(hook.OnMalformedFrame).
				Set(hook.KeyIndex, d.lines).
				Set(hook.KeyPayload, payload).
				Set(hook.KeyError, ferr))
			return
		}
		d.frames++

		emitted := 0
		for pos := range frame.Choices {
			choice := &frame.Choices[pos]
			idx := choice.index(pos)
			if c := choice.Delta.Content; c != nil && *c != "" {
				emit(Delta{Text: *c, Choice: idx})
				emitted++
			}
			if reason := choice.finishReason(); reason != "" {
				d.hooks.Trigger(ctx, hook.NewHookData(hook.OnChoiceFinished).
					Set(hook.KeyChoice, idx).
					Set(hook.KeyReason, reason))
			}
		}
		d.hooks.Trigger(ctx, hook.NewHookData(hook.OnFrame).
			Set(hook.KeyIndex, d.frames).
			Set(hook.KeyDeltas, emitted))
	}
}
