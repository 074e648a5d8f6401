package handlers

import (
	"context"

	"github.com/brianbirrell/ai-cli/internal/hook"
)

// StatsHandler counts stream events for the end-of-run summary.
type StatsHandler struct {
	chunks    int
	bytes     int
	frames    int
	malformed int
	done      int
}

func NewStatsHandler() *StatsHandler {
	return &StatsHandler{}
}

func (h *StatsHandler) Name() string {
	return "stats"
}

func (h *StatsHandler) Points() []hook.HookPoint {
	return []hook.HookPoint{hook.OnChunk, hook.OnFrame, hook.OnMalformedFrame, hook.OnDoneMarker}
}

func (h *StatsHandler) Priority() int {
	return 100
}

func (h *StatsHandler) Handle(ctx context.Context, data *hook.HookData) {
	switch data.Point {
	case hook.OnChunk:
		h.chunks++
		h.bytes += data.GetInt(hook.KeySize)
	case hook.OnFrame:
		h.frames++
	case hook.OnMalformedFrame:
		h.malformed++
	case hook.OnDoneMarker:
		h.done++
	}
}

func (h *StatsHandler) Chunks() int    { return h.chunks }
func (h *StatsHandler) Bytes() int     { return h.bytes }
func (h *StatsHandler) Frames() int    { return h.frames }
func (h *StatsHandler) Malformed() int { return h.malformed }
func (h *StatsHandler) DoneMarkers() int {
	return h.done
}
