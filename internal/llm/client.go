package llm

import "context"

// Client sends a chat request and streams the reply.
type Client interface {
	ChatStream(ctx context.Context, req *ChatRequest) (StreamReader, error)
	Provider() string
	Model() string
}

// StreamReader yields deltas in arrival order. After the stream ends Recv
// returns a Delta with Done set.
type StreamReader interface {
	Recv() (*Delta, error)
	Close() error
}

type Delta struct {
	Content string
	// Choice is the index of the choice Content belongs to.
	Choice int
	Done   bool
}
