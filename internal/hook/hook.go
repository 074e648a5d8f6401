package hook

import (
	"context"
	"time"
)

// HookPoint defines when a hook is triggered
type HookPoint string

const (
	// Transport hooks
	OnRequest HookPoint = "on_request"
	OnChunk   HookPoint = "on_chunk"

	// Decoder hooks
	OnFrame          HookPoint = "on_frame"
	OnMalformedFrame HookPoint = "on_malformed_frame"
	OnDoneMarker     HookPoint = "on_done_marker"
	OnChoiceFinished HookPoint = "on_choice_finished"
	OnStreamEnd      HookPoint = "on_stream_end"
)

// Well-known HookData keys.
const (
	KeyURL      = "url"
	KeySize     = "size"
	KeyIndex    = "index"
	KeyPayload  = "payload"
	KeyError    = "error"
	KeyDeltas   = "deltas"
	KeyResidual = "residual"
	KeyChoice   = "choice"
	KeyReason   = "reason"
)

// HookData carries context-specific information for hooks
type HookData struct {
	Point     HookPoint
	Timestamp time.Time
	Data      map[string]any
}

// NewHookData creates a new HookData instance
func NewHookData(point HookPoint) *HookData {
	return &HookData{
		Point:     point,
		Timestamp: time.Now(),
		Data:      make(map[string]any),
	}
}

// Set sets a data field
func (d *HookData) Set(key string, value any) *HookData {
	d.Data[key] = value
	return d
}

// Get retrieves a data field
func (d *HookData) Get(key string) any {
	return d.Data[key]
}

// GetString retrieves a string data field
func (d *HookData) GetString(key string) string {
	if v, ok := d.Get(key).(string); ok {
		return v
	}
	return ""
}

// GetInt retrieves an int data field
func (d *HookData) GetInt(key string) int {
	if v, ok := d.Get(key).(int); ok {
		return v
	}
	return 0
}

// GetError retrieves an error data field
func (d *HookData) GetError(key string) error {
	if v, ok := d.Get(key).(error); ok {
		return v
	}
	return nil
}

// Handler observes stream events. Handlers cannot alter the stream: a
// malformed frame is skipped whatever a handler does with it.
type Handler interface {
	// Name returns the handler name
	Name() string

	// Points returns which hook points this handler listens to
	Points() []HookPoint

	// Handle processes the hook event
	Handle(ctx context.Context, data *HookData)

	// Priority returns the handler priority (higher = earlier execution)
	Priority() int
}
