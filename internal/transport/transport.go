// Package transport performs the streaming HTTP POST and hands the response
// body back as raw chunks.
//
// The wait for the first byte of the response is bounded; once data is
// flowing, reads block for as long as the server keeps the stream open.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brianbirrell/ai-cli/internal/hook"
	"github.com/brianbirrell/ai-cli/internal/logger"
)

const defaultChunkSize = 32 * 1024

// Config configures a Client.
type Config struct {
	// FirstChunkTimeout bounds the time from sending the request to the
	// first byte of the response body. Zero disables the bound.
	FirstChunkTimeout time.Duration

	// HTTPClient must not carry an overall Timeout, or long generations are
	// cut off. Defaults to a client without one.
	HTTPClient *http.Client

	Logger *logger.Logger
	Hooks  *hook.Manager

	// ChunkSize is the read buffer size. Defaults to 32 KiB.
	ChunkSize int
}

// Client sends streaming requests.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	chunkSize int
	log       *logger.Logger
	hooks     *hook.Manager
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) *Client {
	c := &Client{
		http:      cfg.HTTPClient,
		timeout:   cfg.FirstChunkTimeout,
		chunkSize: cfg.ChunkSize,
		log:       cfg.Logger,
		hooks:     cfg.Hooks,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.chunkSize <= 0 {
		c.chunkSize = defaultChunkSize
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	return c
}

// Post sends body as JSON to url and returns the open response stream.
// apiKey is sent as a bearer token when non-empty. A non-2xx response is
// read fully and returned as *HTTPStatusError.
func (c *Client) Post(ctx context.Context, url, apiKey string, body []byte) (*Stream, error) {
	ctx, cancel := context.WithCancelCause(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		cancel(nil)
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if apiKey != "" {
		c.log.Debug("Adding API key to request headers")
		req.Header.Set("Authorization", "Bearer "+apiKey)
	} else {
		c.log.Debug("No API key provided - this may cause authentication errors if the API requires authentication")
	}

	c.traceRequest(url, apiKey != "", body)
	c.hooks.Trigger(ctx, hook.NewHookData(hook.OnRequest).Set(hook.KeyURL, url).Set(hook.KeySize, len(body)))

	s := &Stream{
		ctx:           ctx,
		cancel:        cancel,
		timeout:       c.timeout,
		awaitingFirst: true,
		buf:           make([]byte, c.chunkSize),
		hooks:         c.hooks,
		log:           c.log,
	}
	// One timer for the whole first phase: connect, headers, first byte.
	if c.timeout > 0 {
		s.timer = time.AfterFunc(c.timeout, func() {
			cancel(errFirstChunkDeadline)
		})
	}

	c.log.Info("Sending streaming request to API")
	resp, err := c.http.Do(req)
	if err != nil {
		s.Close()
		if s.timedOut() {
			return nil, &FirstChunkTimeoutError{Timeout: c.timeout}
		}
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	s.body = resp.Body

	c.log.Info("API response status: %d (%s)", resp.StatusCode, http.StatusText(resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer s.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			if s.timedOut() {
				return nil, &FirstChunkTimeoutError{Timeout: c.timeout}
			}
			data = []byte("Unable to read error response body")
		}
		return nil, newHTTPStatusError(resp, data)
	}

	c.log.Debug("API connection successful, starting to stream response")
	return s, nil
}

func (c *Client) traceRequest(url string, hasKey bool, body []byte) {
	if !c.log.Enabled(logger.LevelTrace) {
		return
	}
	c.log.Trace("=== SERVICE CALL DETAILS ===")
	c.log.Trace("URL: %s", url)
	c.log.TraceJSON("Request Body", body)
	headers := "Headers: "
	if hasKey {
		headers += "Authorization: Bearer ***, "
	}
	c.log.Trace("%sContent-Type: application/json", headers)
	c.log.Trace("=== END SERVICE CALL DETAILS ===")
}

// Stream is an open response body read chunk by chunk.
type Stream struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	body    io.ReadCloser
	timer   *time.Timer
	timeout time.Duration

	// awaitingFirst is true until the first non-empty chunk is delivered;
	// while it is set the first-chunk timer is armed.
	awaitingFirst bool
	eof           bool
	pending       error
	chunks        int
	buf           []byte

	hooks *hook.Manager
	log   *logger.Logger
}

// Next returns the next chunk of the body. The slice is owned by the
// caller. Next returns io.EOF once the body ends, ErrEmptyStream if it ends
// before any data, and *FirstChunkTimeoutError if the first byte does not
// arrive in time.
func (s *Stream) Next() ([]byte, error) {
	if s.pending != nil {
		return nil, s.pending
	}
	if s.eof {
		return nil, io.EOF
	}

	for {
		n, err := s.body.Read(s.buf)
		if n > 0 {
			if s.awaitingFirst && !s.disarm() {
				return nil, &FirstChunkTimeoutError{Timeout: s.timeout}
			}
			switch {
			case errors.Is(err, io.EOF):
				s.eof = true
			case err != nil:
				s.pending = fmt.Errorf("failed to read response chunk: %w", err)
			}
			s.chunks++
			chunk := make([]byte, n)
			copy(chunk, s.buf[:n])
			s.hooks.Trigger(s.ctx, hook.NewHookData(hook.OnChunk).
				Set(hook.KeyIndex, s.chunks).
				Set(hook.KeySize, n).
				Set(hook.KeyPayload, string(chunk)))
			return chunk, nil
		}

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			s.eof = true
			if s.awaitingFirst {
				s.disarm()
				return nil, ErrEmptyStream
			}
			s.log.Info("Streaming completed after %d chunks", s.chunks)
			return nil, io.EOF
		case s.awaitingFirst && s.timedOut():
			return nil, &FirstChunkTimeoutError{Timeout: s.timeout}
		default:
			return nil, fmt.Errorf("failed to read response chunk: %w", err)
		}
	}
}

// Close releases the response body and the request context.
func (s *Stream) Close() error {
	if s.timer != nil {
		s.timer.Stop()
	}
	var err error
	if s.body != nil {
		err = s.body.Close()
	}
	s.cancel(nil)
	return err
}

// disarm stops the first-chunk timer. It reports false if the timer had
// already fired.
func (s *Stream) disarm() bool {
	s.awaitingFirst = false
	if s.timer == nil {
		return true
	}
	return s.timer.Stop()
}

func (s *Stream) timedOut() bool {
	return errors.Is(context.Cause(s.ctx), errFirstChunkDeadline)
}
