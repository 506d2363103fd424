// Package anthropic implements the remote care data client against the
// Anthropic Messages API.
//
// The client issues one structured request per attempt and retries transient
// failures (rate limiting, timeouts, connection errors) with exponential
// backoff. Permanent failures (authentication, malformed responses, a plant
// the model does not recognize) surface immediately with a typed error code
// from pkg/errors; nothing escapes unclassified.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/httputil"
	"github.com/leafvessel/carecard/pkg/observability"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	// DefaultModel is the model used for care data generation.
	DefaultModel = "claude-sonnet-4-20250514"

	defaultMaxRetries = 3
	defaultBaseDelay  = 2 * time.Second
	defaultTimeout    = 30 * time.Second
)

// Client calls the Anthropic Messages API. All configuration is fixed at
// construction; the client is safe for concurrent use.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	http       *http.Client
	logger     *log.Logger
	maxRetries int
	baseDelay  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithRetry overrides the retry bound and initial backoff delay.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxRetries = attempts
		}
		if baseDelay > 0 {
			c.baseDelay = baseDelay
		}
	}
}

// WithHTTPClient overrides the HTTP client (and its per-request timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger for attempt-level debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Messages API client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		model:      DefaultModel,
		baseURL:    defaultBaseURL,
		http:       &http.Client{Timeout: defaultTimeout},
		logger:     log.Default(),
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// messagesRequest is the Messages API request body.
type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the subset of the Messages API response we consume.
type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// complete sends one prompt and returns the model's text output, retrying
// transient failures with exponential backoff. The context bounds the whole
// call including retries; cancellation aborts before the next attempt but
// does not interrupt a request already in flight.
func (c *Client) complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if c.apiKey == "" {
		return "", errors.New(errors.ErrCodeUnauthorized, "API key not configured; set ANTHROPIC_API_KEY or add it to the config file")
	}

	reqID := uuid.NewString()
	attempt := 0
	var text string

	err := httputil.Retry(ctx, c.maxRetries, c.baseDelay, func() error {
		attempt++
		if attempt > 1 {
			c.logger.Debug("retrying remote call", "request_id", reqID, "attempt", attempt)
			observability.Fetch().OnFetchRetry(ctx, reqID, attempt)
		}
		out, err := c.completeOnce(ctx, prompt, maxTokens, temperature, reqID)
		if err != nil {
			if errors.IsTransient(err) {
				return httputil.Retryable(err)
			}
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		// Context expiry between retries is a timeout from the caller's
		// point of view.
		if ctx.Err() != nil && errors.GetCode(err) == "" {
			return "", errors.Wrap(errors.ErrCodeTimeout, err, "remote call cancelled or timed out")
		}
		return "", err
	}
	return text, nil
}

func (c *Client) completeOnce(ctx context.Context, prompt string, maxTokens int, temperature float64, reqID string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Anthropic-Version", apiVersion)
	req.Header.Set("X-Request-Id", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrap(errors.ErrCodeTimeout, err, "request deadline exceeded")
		}
		return "", errors.Wrap(errors.ErrCodeNetwork, err, "connection failed")
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var decoded messagesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return "", errors.Wrap(errors.ErrCodeMalformedResponse, err, "decode API response")
	}
	if decoded.Error != nil {
		return "", errors.New(errors.ErrCodeMalformedResponse, "API error: %s", decoded.Error.Message)
	}
	for _, block := range decoded.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New(errors.ErrCodeMalformedResponse, "response contains no text content")
}

// checkStatus maps HTTP status codes onto the error taxonomy. Rate limits,
// overload and server errors are transient; authentication failures are
// permanent.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := 0
		if s := resp.Header.Get("Retry-After"); s != "" {
			retryAfter, _ = strconv.Atoi(s)
		}
		return errors.Wrap(errors.ErrCodeRateLimited,
			&errors.RateLimitedError{RetryAfter: retryAfter},
			"API rate limit exceeded")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.New(errors.ErrCodeUnauthorized, "invalid API key; check your ANTHROPIC_API_KEY configuration")
	case resp.StatusCode == http.StatusRequestTimeout:
		return errors.New(errors.ErrCodeTimeout, "request timed out")
	case resp.StatusCode >= 500:
		return errors.New(errors.ErrCodeNetwork, "server error: %s", resp.Status)
	default:
		return errors.New(errors.ErrCodeMalformedResponse, "unexpected status: %s", resp.Status)
	}
}

// extractJSON pulls the JSON object out of the model's text output. The
// model is instructed to return bare JSON, but occasionally wraps it in
// prose or code fences; everything between the first '{' and the last '}'
// is the payload.
func extractJSON(text string) (string, error) {
	start := bytes.IndexByte([]byte(text), '{')
	end := bytes.LastIndexByte([]byte(text), '}')
	if start < 0 || end <= start {
		return "", errors.New(errors.ErrCodeMalformedResponse, "no JSON object found in response")
	}
	return text[start : end+1], nil
}
