package openai

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/brianbirrell/ai-cli/internal/llm"
	"github.com/brianbirrell/ai-cli/internal/sse"
	"github.com/brianbirrell/ai-cli/internal/transport"
)

// StreamReader pulls raw chunks from the response body, feeds them through
// the SSE decoder and hands out the resulting deltas one at a time.
type StreamReader struct {
	ctx     context.Context
	stream  *transport.Stream
	decoder *sse.Decoder

	// pending holds deltas decoded from the last chunk but not yet returned.
	pending []llm.Delta
	// err is returned once pending is drained.
	err  error
	done bool
}

func (s *StreamReader) Recv() (*llm.Delta, error) {
	for len(s.pending) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		if s.done {
			return &llm.Delta{Done: true}, nil
		}

		chunk, err := s.stream.Next()
		if errors.Is(err, io.EOF) {
			s.decoder.Finish(s.ctx)
			s.done = true
			continue
		}
		if err != nil {
			return nil, err
		}

		s.err = s.decoder.Feed(s.ctx, chunk, func(d sse.Delta) {
			s.pending = append(s.pending, llm.Delta{Content: d.Text, Choice: d.Choice})
		})
	}

	d := s.pending[0]
	s.pending = s.pending[1:]
	return &d, nil
}

func (s *StreamReader) Close() error {
	return s.stream.Close()
}

// StreamToString drains reader and returns the concatenated content.
func StreamToString(reader llm.StreamReader) (string, error) {
	defer reader.Close()

	var b strings.Builder
	for {
		delta, err := reader.Recv()
		if err != nil {
			return b.String(), err
		}
		if delta.Done {
			return b.String(), nil
		}
		b.WriteString(delta.Content)
	}
}
