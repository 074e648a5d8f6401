// Package openai streams chat completions from an OpenAI-compatible
// /chat/completions endpoint.
package openai

import (
	"context"
	"net/http"
	"time"

	"github.com/brianbirrell/ai-cli/internal/hook"
	"github.com/brianbirrell/ai-cli/internal/llm"
	"github.com/brianbirrell/ai-cli/internal/logger"
	"github.com/brianbirrell/ai-cli/internal/sse"
	"github.com/brianbirrell/ai-cli/internal/transport"
)

const providerName = "openai-compatible"

type Config struct {
	BaseURL string
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	Model  string

	// FirstChunkTimeout bounds the wait for the first response byte. Zero
	// disables it.
	FirstChunkTimeout time.Duration
	HTTPClient        *http.Client

	Logger *logger.Logger
	Hooks  *hook.Manager
}

type Client struct {
	transport *transport.Client
	endpoint  string
	apiKey    string
	model     string
	log       *logger.Logger
	hooks     *hook.Manager
}

// NewClient creates a Client for the endpoint under cfg.BaseURL.
func NewClient(cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		transport: transport.NewClient(transport.Config{
			FirstChunkTimeout: cfg.FirstChunkTimeout,
			HTTPClient:        cfg.HTTPClient,
			Logger:            log,
			Hooks:             cfg.Hooks,
		}),
		endpoint: llm.Endpoint(cfg.BaseURL),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		log:      log,
		hooks:    cfg.Hooks,
	}
}

func (c *Client) Provider() string { return providerName }

func (c *Client) Model() string { return c.model }

// Endpoint returns the full completions URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// ChatStream posts req and returns a reader over the decoded deltas. An
// empty req.Model is filled from the client.
func (c *Client) ChatStream(ctx context.Context, req *llm.ChatRequest) (llm.StreamReader, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	req.Stream = true

	body, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	c.log.Debug("Request prepared with streaming enabled (%d bytes)", len(body))

	stream, err := c.transport.Post(ctx, c.endpoint, c.apiKey, body)
	if err != nil {
		return nil, err
	}

	return &StreamReader{
		ctx:     ctx,
		stream:  stream,
		decoder: sse.NewDecoder(c.hooks),
	}, nil
}

var _ llm.Client = (*Client)(nil)
