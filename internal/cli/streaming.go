// Package cli renders a streamed reply to the terminal as it arrives.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brianbirrell/ai-cli/internal/llm"
)

// StreamingWriter writes text to the output and flushes it immediately so
// partial replies are visible while the stream is still open.
type StreamingWriter struct {
	writer *bufio.Writer
}

func NewStreamingWriter(w io.Writer) *StreamingWriter {
	if w == nil {
		w = os.Stdout
	}
	return &StreamingWriter{writer: bufio.NewWriter(w)}
}

// Write writes content and flushes it.
func (sw *StreamingWriter) Write(content string) error {
	if _, err := sw.writer.WriteString(content); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return sw.Flush()
}

// WriteLine writes content followed by a newline and flushes.
func (sw *StreamingWriter) WriteLine(content string) error {
	return sw.Write(content + "\n")
}

func (sw *StreamingWriter) Flush() error {
	if err := sw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// StreamRenderer handles rendering streaming LLM responses
type StreamRenderer struct {
	writer *StreamingWriter
	// written counts bytes of content rendered for the current stream.
	written int
}

func NewStreamRenderer(writer *StreamingWriter) *StreamRenderer {
	return &StreamRenderer{writer: writer}
}

// RenderDelta writes a delta's content verbatim.
func (sr *StreamRenderer) RenderDelta(delta *llm.Delta) error {
	if delta.Content == "" {
		return nil
	}
	if err := sr.writer.Write(delta.Content); err != nil {
		return err
	}
	sr.written += len(delta.Content)
	return nil
}

// RenderComplete terminates the reply with a newline.
func (sr *StreamRenderer) RenderComplete() error {
	sr.written = 0
	return sr.writer.WriteLine("")
}

// StreamContent renders every delta from reader until the stream ends and
// returns the accumulated text. The trailing newline is written only when
// the stream completed; on error the partial output stays as it is.
func (sr *StreamRenderer) StreamContent(ctx context.Context, reader llm.StreamReader) (string, error) {
	defer reader.Close()

	var content strings.Builder
	for {
		select {
		case <-ctx.Done():
			return content.String(), ctx.Err()
		default:
		}

		delta, err := reader.Recv()
		if err != nil {
			return content.String(), err
		}
		if delta.Done {
			break
		}

		if err := sr.RenderDelta(delta); err != nil {
			return content.String(), err
		}
		content.WriteString(delta.Content)
	}

	if err := sr.RenderComplete(); err != nil {
		return content.String(), err
	}
	return content.String(), nil
}
