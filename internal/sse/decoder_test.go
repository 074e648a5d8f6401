package sse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/brianbirrell/ai-cli/internal/hook"
	"github.com/brianbirrell/ai-cli/internal/hook/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(content string) string {
	return fmt.Sprintf(`data: {"choices":[{"delta":{"content":%q}}]}`+"\n", content)
}

// decodeAll feeds chunks in order, finishes the stream and returns the texts.
func decodeAll(t *testing.T, d *Decoder, chunks ...string) []string {
	t.Helper()
	var got []string
	for _, c := range chunks {
		err := d.Feed(context.Background(), []byte(c), func(delta Delta) {
			got = append(got, delta.Text)
		})
		require.NoError(t, err)
	}
	d.Finish(context.Background())
	return got
}

// withStats returns a hook manager counting decoder events.
func withStats() (*hook.Manager, *handlers.StatsHandler) {
	m := hook.NewManager()
	stats := handlers.NewStatsHandler()
	m.Register(stats)
	return m, stats
}

func TestDecoder_SingleFrame(t *testing.T) {
	got := decodeAll(t, NewDecoder(nil), frame("Hi"))
	assert.Equal(t, []string{"Hi"}, got)
}

func TestDecoder_ChunkBoundaryIndependence(t *testing.T) {
	input := frame("Hi")

	for i := 0; i <= len(input); i++ {
		got := decodeAll(t, NewDecoder(nil), input[:i], input[i:])
		assert.Equal(t, []string{"Hi"}, got, "split at %d", i)
	}
}

func TestDecoder_ByteAtATime(t *testing.T) {
	input := ": keep-alive\n\n" + frame("Hel") + "\n" + frame("lo, ") + frame("wörld ✓") + "data: [DONE]\n\n"

	whole := decodeAll(t, NewDecoder(nil), input)

	chunks := make([]string, 0, len(input))
	for i := 0; i < len(input); i++ {
		chunks = append(chunks, input[i:i+1])
	}
	split := decodeAll(t, NewDecoder(nil), chunks...)

	assert.Equal(t, []string{"Hel", "lo, ", "wörld ✓"}, whole)
	assert.Equal(t, whole, split)
}

func TestDecoder_SplitInsideCodepoint(t *testing.T) {
	input := frame("日本")
	idx := strings.Index(input, "日") + 1 // inside the 3-byte sequence

	got := decodeAll(t, NewDecoder(nil), input[:idx], input[idx:])

	assert.Equal(t, []string{"日本"}, got)
}

func TestDecoder_TwoChunks(t *testing.T) {
	got := decodeAll(t, NewDecoder(nil), frame("He"), frame("llo"))
	assert.Equal(t, "Hello", strings.Join(got, ""))
}

func TestDecoder_DoneMarkerNeverParsed(t *testing.T) {
	m, stats := withStats()

	got := decodeAll(t, NewDecoder(m), "data: [DONE]\n", "data: [DONE]\r\n")

	assert.Empty(t, got)
	assert.Zero(t, stats.Malformed())
	assert.Equal(t, 2, stats.DoneMarkers())
}

func TestDecoder_ContinuesAfterDone(t *testing.T) {
	got := decodeAll(t, NewDecoder(nil), "data: [DONE]\n", frame("late"))
	assert.Equal(t, []string{"late"}, got)
}

func TestDecoder_MalformedJSONIsSkipped(t *testing.T) {
	var reported []error
	m, stats := withStats()
	m.Register(&funcHandler{points: []hook.HookPoint{hook.OnMalformedFrame}, fn: func(data *hook.HookData) {
		reported = append(reported, data.GetError(hook.KeyError))
	}})

	d := NewDecoder(m)
	got := decodeAll(t, d, "data: {\"choices\":[{\"delta\"\n", "data: not json\n", frame("ok"))

	assert.Equal(t, []string{"ok"}, got)
	assert.Equal(t, 2, stats.Malformed())
	assert.Equal(t, 1, stats.Frames())
	require.Len(t, reported, 2)

	var ferr *FrameError
	require.True(t, errors.As(reported[0], &ferr))
	assert.Equal(t, 1, ferr.Line)
	assert.Equal(t, `{"choices":[{"delta"`, ferr.Payload)
}

func TestDecoder_UnterminatedTailDiscarded(t *testing.T) {
	d := NewDecoder(nil)
	var got []string
	tail := strings.TrimSuffix(frame("lost"), "\n")

	err := d.Feed(context.Background(), []byte(frame("kept")+tail), func(delta Delta) {
		got = append(got, delta.Text)
	})
	require.NoError(t, err)
	assert.Equal(t, len(tail), d.Buffered())

	assert.Equal(t, len(tail), d.Finish(context.Background()))
	assert.Equal(t, []string{"kept"}, got)
	assert.Zero(t, d.Buffered())
}

func TestDecoder_MultipleChoicesInOrder(t *testing.T) {
	line := `data: {"choices":[{"index":0,"delta":{"content":"a"}},{"index":1,"delta":{"content":""}},{"index":2,"delta":{"content":"c"}}]}` + "\n"

	d := NewDecoder(nil)
	var got []Delta
	require.NoError(t, d.Feed(context.Background(), []byte(line), func(delta Delta) {
		got = append(got, delta)
	}))

	require.Len(t, got, 2)
	assert.Equal(t, Delta{Text: "a", Choice: 0}, got[0])
	assert.Equal(t, Delta{Text: "c", Choice: 2}, got[1])
}

func TestDecoder_IgnoredLines(t *testing.T) {
	got := decodeAll(t, NewDecoder(nil),
		"\n",
		"event: message\n",
		": comment\n",
		`data:{"choices":[{"delta":{"content":"nospace"}}]}`+"\n",
		"data: \n",
		"id: 7\n",
	)
	assert.Empty(t, got)
}

func TestDecoder_CRLFAndSurroundingWhitespace(t *testing.T) {
	input := "  " + strings.TrimSuffix(frame("crlf"), "\n") + "\r\n"
	got := decodeAll(t, NewDecoder(nil), input)
	assert.Equal(t, []string{"crlf"}, got)
}

func TestDecoder_NullContentAndUnknownFields(t *testing.T) {
	input := `data: {"id":"c1","object":"chat.completion.chunk","created":1,"model":"llama3","system_fingerprint":"fp","choices":[{"index":0,"delta":{"role":"assistant","content":null},"finish_reason":null}],"x_extra":{"nested":[1,2]}}` + "\n" +
		`data: {"choices":[{"index":0,"delta":{"content":"x"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}` + "\n"

	m, stats := withStats()
	var finished []string
	m.Register(&funcHandler{points: []hook.HookPoint{hook.OnChoiceFinished}, fn: func(data *hook.HookData) {
		finished = append(finished, fmt.Sprintf("%d:%s", data.GetInt(hook.KeyChoice), data.GetString(hook.KeyReason)))
	}})

	got := decodeAll(t, NewDecoder(m), input)

	assert.Equal(t, []string{"x"}, got)
	assert.Equal(t, []string{"0:stop"}, finished)
	assert.Equal(t, 2, stats.Frames())
	assert.Zero(t, stats.Malformed())
}

// Servers differ in the types they use for fields other than
// delta.content; none of them may cost the text.
func TestDecoder_UnexpectedTypesInOtherFields(t *testing.T) {
	input := `data: {"id":42,"choices":[{"delta":{"content":"A"}}]}` + "\n" +
		`data: {"created":1.7e9,"choices":[{"delta":{"content":"B"}}]}` + "\n" +
		`data: {"choices":[{"index":"0","delta":{"content":"C"}}]}` + "\n" +
		`data: {"choices":[{"delta":{"content":"D"},"logprobs":[]}]}` + "\n" +
		`data: {"choices":[{"delta":{"content":"E","tool_calls":{}}}]}` + "\n" +
		`data: {"choices":[{"delta":{"content":"F","role":7},"finish_reason":{"type":"stop"}}],"usage":"n/a","model":["x"]}` + "\n"

	m, stats := withStats()
	got := decodeAll(t, NewDecoder(m), input)

	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, got)
	assert.Zero(t, stats.Malformed())
	assert.Equal(t, 6, stats.Frames())
}

func TestDecoder_ChoiceIndexFallsBackToPosition(t *testing.T) {
	line := `data: {"choices":[{"index":"zero","delta":{"content":"a"}},{"delta":{"content":"b"}}]}` + "\n"

	d := NewDecoder(nil)
	var got []Delta
	require.NoError(t, d.Feed(context.Background(), []byte(line), func(delta Delta) {
		got = append(got, delta)
	}))

	assert.Equal(t, []Delta{{Text: "a", Choice: 0}, {Text: "b", Choice: 1}}, got)
}

func TestDecoder_MistypedContentIsMalformed(t *testing.T) {
	m, stats := withStats()
	got := decodeAll(t, NewDecoder(m), `data: {"choices":[{"delta":{"content":5}}]}`+"\n", frame("next"))

	assert.Equal(t, []string{"next"}, got)
	assert.Equal(t, 1, stats.Malformed())
}

func TestDecoder_InvalidUTF8Line(t *testing.T) {
	d := NewDecoder(nil)

	err := d.Feed(context.Background(), []byte("data: \xff\xfe\n"), func(Delta) {
		t.Fatal("no delta expected")
	})

	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, 1, encErr.Line)
}

func TestDecoder_StreamEndHook(t *testing.T) {
	var residual int
	m := hook.NewManager()
	m.Register(&funcHandler{points: []hook.HookPoint{hook.OnStreamEnd}, fn: func(data *hook.HookData) {
		residual = data.GetInt(hook.KeyResidual)
	}})

	decodeAll(t, NewDecoder(m), frame("a"), "data: {")

	assert.Equal(t, len("data: {"), residual)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line    string
		kind    FrameKind
		payload string
	}{
		{"data: {}", FrameData, "{}"},
		{"data: [DONE]", FrameDone, ""},
		{"data: [DONE] trailing", FrameDone, ""},
		{"data: ", FrameData, ""},
		{"data:{}", FrameOther, ""},
		{"event: done", FrameOther, ""},
		{"", FrameOther, ""},
	}

	for _, tt := range tests {
		kind, payload := Classify(tt.line)
		assert.Equal(t, tt.kind, kind, tt.line)
		assert.Equal(t, tt.payload, payload, tt.line)
	}
}

type funcHandler struct {
	points []hook.HookPoint
	fn     func(*hook.HookData)
}

func (h *funcHandler) Name() string             { return "func" }
func (h *funcHandler) Points() []hook.HookPoint { return h.points }
func (h *funcHandler) Priority() int            { return 0 }
func (h *funcHandler) Handle(ctx context.Context, data *hook.HookData) {
	h.fn(data)
}
