package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/davidmoxey/relay"
)

// Interface compliance check.
var _ relay.Opener = (*Client)(nil)

// Client implements [relay.Opener] against the relay chat service. It
// issues exactly one outbound request per Open and never retries; retries
// are the engine's job.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAuthToken sets a bearer token attached to outbound requests.
func WithAuthToken(token string) Option {
	return func(c *Client) { c.authToken = token }
}

// WithLogger sets the logger used for dropped-frame reporting.
// Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Open sends one streaming chat request and returns a [relay.Stream] over
// the response. A non-success status fails with the status code and
// response body text; a success status without a readable body fails with
// [relay.ErrNoBody].
func (c *Client) Open(ctx context.Context, req relay.Request) (relay.Stream, error) {
	body, err := json.Marshal(requestBody{Message: req.Message, SessionID: req.SessionID})
	if err != nil {
		return nil, fmt.Errorf("assistant: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+streamPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("assistant: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.authToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("assistant: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("assistant: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, fmt.Errorf("assistant: %w", relay.ErrNoBody)
	}

	return newStream(ctx, resp.Body, c.logger), nil
}
