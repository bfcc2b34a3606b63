package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Options configures a Client
type Options struct {
	CommonURL string // base of the authenticated endpoints
	Timeout   time.Duration
	Logger    *slog.Logger
	// Transport overrides http.DefaultTransport, mainly for tests
	Transport http.RoundTripper
}

// Client is the API client for the community backend
type Client struct {
	commonURL string
	session   *Session
	authHTTP  *http.Client
	log       *slog.Logger
}

// NewClient creates a new API client. Without a session every call fails.
func NewClient(opts Options, session *Session) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	c := &Client{
		commonURL: strings.TrimRight(opts.CommonURL, "/"),
		session:   session,
		log:       log,
	}
	if session != nil {
		c.authHTTP = &http.Client{
			Timeout:   opts.Timeout,
			Transport: &tokenTransport{source: session.TokenSource(), base: base},
		}
	}
	return c
}

// Session returns the session the client signs requests with
func (c *Client) Session() *Session {
	return c.session
}

// HTTPError is returned when the backend answers without a decodable envelope
type HTTPError struct {
	Status     string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API error: %s - %s", e.Status, e.Body)
}

// Call performs an authenticated request and decodes the envelope.
// A transport failure is returned as error; a backend rejection is a Result with Success false.
func Call[T any](ctx context.Context, c *Client, method, endpoint string, query url.Values, body any) (Result[T], error) {
	result := Result[T]{endpoint: endpoint}

	raw, status, err := c.do(ctx, method, endpoint, query, body)
	if err != nil {
		return result, err
	}

	// Error responses still carry the envelope
	if !isEnvelope(raw) {
		if status.code < 200 || status.code >= 300 {
			return result, &HTTPError{Status: status.text, StatusCode: status.code, Body: string(raw)}
		}
		return result, fmt.Errorf("unexpected response from %s: missing envelope", endpoint)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	result.endpoint = endpoint

	if !result.Success {
		c.log.Debug("backend rejected request", "endpoint", endpoint, "message", result.MessageText())
	}
	return result, nil
}

// isEnvelope reports whether raw is a JSON object with a "success" flag
func isEnvelope(raw []byte) bool {
	var head struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return false
	}
	return head.Success != nil
}

type httpStatus struct {
	code int
	text string
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body any) ([]byte, httpStatus, error) {
	if c.authHTTP == nil {
		return nil, httpStatus{}, fmt.Errorf("%s %s: no session", method, endpoint)
	}

	u, err := url.Parse(c.commonURL + endpoint)
	if err != nil {
		return nil, httpStatus{}, err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, httpStatus{}, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, httpStatus{}, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.authHTTP.Do(req)
	if err != nil {
		return nil, httpStatus{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httpStatus{}, fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}
	c.log.Debug("backend call", "method", method, "endpoint", endpoint, "status", resp.StatusCode, "duration", time.Since(start))

	return raw, httpStatus{code: resp.StatusCode, text: resp.Status}, nil
}

// idQuery builds a single-parameter query string
func idQuery(key string, id int64) url.Values {
	q := url.Values{}
	q.Set(key, fmt.Sprintf("%d", id))
	return q
}
