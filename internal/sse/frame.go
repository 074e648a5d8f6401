package sse

import (
	"encoding/json"
	"strings"
)

const (
	dataPrefix = "data: "
	doneMarker = "data: [DONE]"
)

// FrameKind classifies one complete, trimmed line of the event stream.
type FrameKind int

const (
	FrameOther FrameKind = iota // blank lines, comments, other fields
	FrameData                   // "data: <payload>"
	FrameDone                   // "data: [DONE]"
)

func (k FrameKind) String() string {
	switch k {
	case FrameData:
		return "data"
	case FrameDone:
		return "done"
	default:
		return "other"
	}
}

// Classify returns the kind of line and, for data lines, the payload after
// the "data: " prefix. The line must already be trimmed. The done marker is
// matched as a prefix and checked before the generic data prefix, so a
// "[DONE]" payload never reaches the JSON decoder. "data:" without the
// trailing space is not a data line.
func Classify(line string) (FrameKind, string) {
	switch {
	case strings.HasPrefix(line, doneMarker):
		return FrameDone, ""
	case strings.HasPrefix(line, dataPrefix):
		return FrameData, line[len(dataPrefix):]
	default:
		return FrameOther, ""
	}
}

// streamFrame is the part of a chat completion chunk the decoder reads.
// Only delta.content is typed. index and finish_reason stay raw so that a
// server sending them with unexpected types does not lose the text, and
// every other field is ignored.
type streamFrame struct {
	Choices []streamChoice `json:"choices"`
}

type streamChoice struct {
	Index json.RawMessage `json:"index"`
	Delta struct {
		Content *string `json:"content"`
	} `json:"delta"`
	FinishReason json.RawMessage `json:"finish_reason"`
}

// index returns the choice index, or pos when it is absent or not an integer.
func (c *streamChoice) index(pos int) int {
	var i int
	if len(c.Index) == 0 || json.Unmarshal(c.Index, &i) != nil {
		return pos
	}
	return i
}

// finishReason returns "" unless finish_reason is a string.
func (c *streamChoice) finishReason() string {
	var s string
	if len(c.FinishReason) == 0 || json.Unmarshal(c.FinishReason, &s) != nil {
		return ""
	}
	return s
}
