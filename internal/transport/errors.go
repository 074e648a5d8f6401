package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyStream is returned when the response body ends before a single
// byte was delivered.
var ErrEmptyStream = errors.New("stream ended before any data was received")

// errFirstChunkDeadline is the cancellation cause set by the first-chunk timer.
var errFirstChunkDeadline = errors.New("first chunk deadline exceeded")

// HTTPStatusError represents a non-2xx response. Body holds the complete
// response text for diagnostics.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string

	// Message is the server's own error message when the body is an
	// OpenAI-style error envelope.
	Message string
}

func newHTTPStatusError(resp *http.Response, body []byte) *HTTPStatusError {
	e := &HTTPStatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}

	var envelope openai.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		e.Message = envelope.Error.Message
	}
	return e
}

func (e *HTTPStatusError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("API request failed with status %d", e.StatusCode))
	if t := http.StatusText(e.StatusCode); t != "" {
		b.WriteString(" ")
		b.WriteString(t)
	}
	switch {
	case e.Message != "":
		b.WriteString(": ")
		b.WriteString(e.Message)
	case strings.TrimSpace(e.Body) != "":
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(e.Body))
	}
	return b.String()
}

// FirstChunkTimeoutError is returned when no byte of the response arrived
// within the configured first-chunk timeout.
type FirstChunkTimeoutError struct {
	Timeout time.Duration
}

func (e *FirstChunkTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for the first response chunk", e.Timeout)
}

// AsHTTPStatusError extracts *HTTPStatusError.
func AsHTTPStatusError(err error) (*HTTPStatusError, bool) {
	var he *HTTPStatusError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

// IsFirstChunkTimeout reports whether err is a first-chunk timeout.
func IsFirstChunkTimeout(err error) bool {
	var te *FirstChunkTimeoutError
	return errors.As(err, &te)
}
