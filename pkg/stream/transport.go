package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/killallgit/sanbao/pkg/config"
)

// Message is one conversation turn sent to the backend
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest is the body posted to the chat endpoint
type ChatRequest struct {
	ConversationID string          `json:"conversationId,omitempty"`
	Messages       []Message       `json:"messages"`
	Features       map[string]bool `json:"features,omitempty"`
}

// NewChatRequest creates a request holding a single user message
func NewChatRequest(conversationID, prompt string) ChatRequest {
	return ChatRequest{
		ConversationID: conversationID,
		Messages:       []Message{{Role: RoleUser, Content: prompt}},
	}
}

// Client posts chat requests and drives a Session from the NDJSON response.
// Timeouts and connection handling belong here, never to the Session.
// The client does not retry.
type Client struct {
	baseURL    string
	path       string
	token      string
	readSize   int
	timeout    time.Duration
	httpClient *http.Client
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithTimeout sets the overall request timeout, body streaming included.
// Zero keeps the HTTP client's own timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient sets the underlying HTTP client. The client is copied, so
// options never modify the caller's value.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithPath sets the endpoint path, "/api/chat" by default
func WithPath(path string) ClientOption {
	return func(c *Client) {
		c.path = path
	}
}

// WithToken sends a static bearer token
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithClientReadSize sets the fragment size used when reading the body
func WithClientReadSize(n int) ClientOption {
	return func(c *Client) {
		c.readSize = n
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       "/api/chat",
		readSize:   4096,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.httpClient = &hc
	return c
}

// NewClientFromConfig creates a client from the loaded settings
func NewClientFromConfig(cfg *config.Config) *Client {
	return NewClient(cfg.Transport.BaseURL,
		WithPath(cfg.Transport.Path),
		WithTimeout(cfg.Transport.Timeout),
		WithToken(cfg.Transport.Token),
		WithClientReadSize(cfg.Stream.ReadSize),
	)
}

// URL returns the full endpoint address
func (c *Client) URL() string {
	return c.baseURL + "/" + strings.TrimLeft(c.path, "/")
}

// Stream posts req and feeds the response into sess until it is terminal.
//
// An error is returned only when the stream never started: the request
// could not be built or sent, or the server answered with a non-200 status.
// In that case sess is failed with the same error. Failures after the
// stream started are reported through the returned snapshot.
func (c *Client) Stream(ctx context.Context, req ChatRequest, sess *Session) (Snapshot, error) {
	resp, err := c.open(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			sess.Cancel()
		} else {
			sess.Fail(err)
		}
		return sess.Snapshot(), err
	}
	defer resp.Body.Close()

	sess.log.Debug("stream opened", "url", c.URL(), "status", resp.StatusCode)
	if sess.readSize == 0 {
		sess.readSize = c.readSize
	}
	return sess.Run(ctx, resp.Body), nil
}

func (c *Client) open(ctx context.Context, req ChatRequest) (*http.Response, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

// statusError builds an error from a non-200 response, preferring the
// {"error": "..."} body the backend sends.
func statusError(resp *http.Response) error {
	errorBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("request failed with status %d (failed to read error response: %w)", resp.StatusCode, err)
	}

	var errorResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(errorBody, &errorResp) == nil && errorResp.Error != "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, errorResp.Error)
	}

	body := strings.TrimSpace(string(errorBody))
	if body == "" {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, body)
}
