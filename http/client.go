package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRetries is the default number of retry attempts beyond the
// first request. Only 429 and 5xx responses (and network errors) are
// retried; everything else fails on the first attempt.
const DefaultMaxRetries = 3

// DefaultRetryWait is the initial wait before the first retry. The wait
// doubles on each subsequent attempt.
const DefaultRetryWait = 1 * time.Second

// Client provides common HTTP functionality for integration clients.
// It is safe for concurrent use; all mutable state is per-call.
type Client struct {
	client      *http.Client
	baseURL     string
	serviceName string
	maxRetries  int
	retryWait   time.Duration

	// beforeRequest is called before each request (for auth headers, etc.)
	beforeRequest func(req *http.Request)
}

// ClientConfig holds configuration for Client.
type ClientConfig struct {
	Client        *http.Client
	BaseURL       string
	ServiceName   string
	MaxRetries    int
	RetryWait     time.Duration
	BeforeRequest func(req *http.Request)
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		client:        cfg.Client,
		baseURL:       cfg.BaseURL,
		serviceName:   cfg.ServiceName,
		maxRetries:    cfg.MaxRetries,
		retryWait:     cfg.RetryWait,
		beforeRequest: cfg.BeforeRequest,
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.retryWait <= 0 {
		c.retryWait = DefaultRetryWait
	}

	return c
}

// ServiceName returns the integration name this client was built for.
func (c *Client) ServiceName() string {
	return c.serviceName
}

// Request executes an HTTP request against baseURL+path with retries for
// transient failures.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*http.Response, error) {
	return c.do(ctx, method, c.baseURL+path, path, body)
}

// RequestURL executes an HTTP request against a fully-qualified URL,
// with the same retry behavior as Request. Used for endpoints that hand
// back absolute URLs, such as file downloads.
func (c *Client) RequestURL(ctx context.Context, method, url string, body any) (*http.Response, error) {
	return c.do(ctx, method, url, url, body)
}

func (c *Client) do(ctx context.Context, method, url, endpoint string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		if c.beforeRequest != nil {
			c.beforeRequest(req)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			// Network errors are transient: retry until the budget runs out.
			lastErr = fmt.Errorf("%s request failed: %w", c.serviceName, err)
			if attempt < c.maxRetries {
				if waitErr := c.sleep(ctx, c.retryWait*time.Duration(1<<attempt)); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, lastErr
		}

		if retryableStatus(resp.StatusCode) && attempt < c.maxRetries {
			wait := c.retryWaitFor(resp, attempt)
			resp.Body.Close()
			if waitErr := c.sleep(ctx, wait); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Get performs a GET request and decodes the response into result.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	resp, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, path, result)
}

// Post performs a POST request and decodes the response into result.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	resp, err := c.Request(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, path, result)
}

// GetRaw performs a GET against a fully-qualified URL and returns the raw
// response body.
func (c *Client) GetRaw(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.RequestURL(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, c.parseError(resp, url)
	}

	return io.ReadAll(resp.Body)
}

// handleResponse checks status and decodes the response body. A 2xx body
// that fails to decode is reported as a ResponseError carrying the raw body.
func (c *Client) handleResponse(resp *http.Response, endpoint string, result any) error {
	if resp.StatusCode >= 400 {
		return c.parseError(resp, endpoint)
	}

	if result == nil {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", c.serviceName, err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &ResponseError{
			Service:  c.serviceName,
			Endpoint: endpoint,
			Body:     string(body),
			Err:      err,
		}
	}

	return nil
}

// parseError parses an error response into an APIError.
func (c *Client) parseError(resp *http.Response, endpoint string) error {
	body, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{
		Service:    c.serviceName,
		StatusCode: resp.StatusCode,
		Endpoint:   endpoint,
		Body:       string(body),
	}

	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			apiErr.Message = errResp.Message
		} else if errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

// retryWaitFor calculates the wait time before the next retry, honoring
// a Retry-After header when the server sends one.
func (c *Client) retryWaitFor(resp *http.Response, attempt int) time.Duration {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	return c.retryWait * time.Duration(1<<attempt)
}

// retryableStatus reports whether a status code is eligible for retry.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
