package handlers

import (
	"context"

	"github.com/brianbirrell/ai-cli/internal/hook"
	"github.com/brianbirrell/ai-cli/internal/logger"
)

// LoggingHandler reports stream events to the logger at debug/trace level.
type LoggingHandler struct {
	log *logger.Logger
}

// NewLoggingHandler creates a handler writing to log.
func NewLoggingHandler(log *logger.Logger) *LoggingHandler {
	return &LoggingHandler{log: log}
}

func (h *LoggingHandler) Name() string {
	return "logging"
}

func (h *LoggingHandler) Points() []hook.HookPoint {
	return []hook.HookPoint{
		hook.OnRequest,
		hook.OnChunk,
		hook.OnFrame,
		hook.OnMalformedFrame,
		hook.OnDoneMarker,
		hook.OnChoiceFinished,
		hook.OnStreamEnd,
	}
}

func (h *LoggingHandler) Priority() int {
	return 10
}

func (h *LoggingHandler) Handle(ctx context.Context, data *hook.HookData) {
	switch data.Point {
	case hook.OnRequest:
		h.log.Debug("API endpoint: %s", data.GetString(hook.KeyURL))
	case hook.OnChunk:
		h.log.Debug("Received chunk %d: %d bytes", data.GetInt(hook.KeyIndex), data.GetInt(hook.KeySize))
		h.log.Trace("Chunk %d content: %q", data.GetInt(hook.KeyIndex), data.GetString(hook.KeyPayload))
	case hook.OnFrame:
		h.log.Trace("Frame %d decoded: %d deltas", data.GetInt(hook.KeyIndex), data.GetInt(hook.KeyDeltas))
	case hook.OnMalformedFrame:
		h.log.Debug("Failed to parse JSON response: %v", data.GetError(hook.KeyError))
		h.log.Debug("Raw data: %s", data.GetString(hook.KeyPayload))
	case hook.OnDoneMarker:
		h.log.Debug("Received end-of-stream marker")
	case hook.OnChoiceFinished:
		h.log.Debug("Choice %d finished: %s", data.GetInt(hook.KeyChoice), data.GetString(hook.KeyReason))
	case hook.OnStreamEnd:
		h.log.Debug("Final incomplete buffer length: %d bytes", data.GetInt(hook.KeyResidual))
		if tail := data.GetString(hook.KeyPayload); tail != "" {
			h.log.Debug("Remaining incomplete data: %s", tail)
		}
	}
}
