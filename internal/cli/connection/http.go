package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/metacall-deploy-go/internal/infra/buildinfo"
	"github.com/yndnr/metacall-deploy-go/internal/telemetry/logger"
)

// DefaultTimeout bounds a single request, connection setup included.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// HTTPClient provides HTTP communication with the dashboard.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	token   string
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithTransport replaces the underlying round tripper, e.g. with an
// instrumented one.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *HTTPClient) {
		c.client.Transport = rt
	}
}

// NewHTTPClient creates a new HTTP client for server.
func NewHTTPClient(server string, opts ...ClientOption) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	c := &HTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that authenticates with token.
func (c *HTTPClient) WithToken(token string) *HTTPClient {
	cp := *c
	cp.token = token
	return &cp
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.addHeaders(ctx, req)
	return c.do(ctx, req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.addHeaders(ctx, req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(ctx, req)
}

func (c *HTTPClient) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		logger.L(ctx).Debug("request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, err
	}
	logger.L(ctx).Debug("request done",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)
	return resp, nil
}

// addHeaders adds authentication and common headers.
func (c *HTTPClient) addHeaders(ctx context.Context, req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "jwt "+c.token)
	}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	req.Header.Set("Accept", "application/json, text/plain")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx response. Message is the server's human-readable
// explanation, taken from a JSON {"message"} body or the raw text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// ParseResponse reads the body of resp into target and closes it.
// A *string target receives the body as text, unwrapping a JSON string if
// the server sent one. Responses with status >= 400 yield an *APIError.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	switch t := target.(type) {
	case nil:
		return nil
	case *string:
		*t = textBody(body)
		return nil
	default:
		if err := json.Unmarshal(body, target); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
		return nil
	}
}

// textBody returns body as text, unquoting a JSON string.
func textBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	var s string
	if len(trimmed) > 0 && trimmed[0] == '"' && json.Unmarshal(trimmed, &s) == nil {
		return s
	}
	return string(trimmed)
}

// errorMessage extracts a message from an error body. JSON bodies may use
// "message" or "error"; anything else is taken verbatim.
func errorMessage(body []byte) string {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	return textBody(body)
}
