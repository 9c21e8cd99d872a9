package napkin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	vfhttp "github.com/randalmurphal/visualflow/http"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.napkin.ai"

// serviceName identifies this integration in errors and logs.
const serviceName = "napkin"

// ClientConfig holds configuration for the API client.
type ClientConfig struct {
	// APIKey is the bearer token for all API calls. Required.
	APIKey string

	// BaseURL overrides the production API endpoint.
	BaseURL string

	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client

	// MaxRetries is the retry budget for transient failures beyond the
	// first attempt. Defaults to 3.
	MaxRetries int

	// RetryWait is the initial backoff delay. Defaults to 1s.
	RetryWait time.Duration
}

// Client provides access to the visual generation API. It owns the API
// key and base URL for its lifetime and holds no per-call state, so a
// single instance is safe for concurrent use.
type Client struct {
	http   *vfhttp.Client
	apiKey string
}

// NewClient creates a new API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	apiKey := cfg.APIKey
	c := &Client{apiKey: apiKey}
	c.http = vfhttp.NewClient(vfhttp.ClientConfig{
		Client:      cfg.HTTPClient,
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		ServiceName: serviceName,
		MaxRetries:  cfg.MaxRetries,
		RetryWait:   cfg.RetryWait,
		BeforeRequest: func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		},
	})

	return c, nil
}

// Submit submits a visual generation request and returns the opaque
// request ID used for subsequent status and download calls.
//
// The request must already be validated; Submit does not re-check the
// field invariants. Malformed API responses are reported as a
// ResponseError carrying the raw body.
func (c *Client) Submit(ctx context.Context, req *Request) (*SubmitResponse, error) {
	var result SubmitResponse
	if err := c.http.Post(ctx, "/v1/visual", req, &result); err != nil {
		return nil, err
	}

	if result.ID == "" || !result.Status.Known() {
		return nil, &vfhttp.ResponseError{
			Service:  serviceName,
			Endpoint: "/v1/visual",
			Body:     fmt.Sprintf("id=%q status=%q", result.ID, result.Status),
			Err:      fmt.Errorf("missing id or unknown status in submit response"),
		}
	}

	return &result, nil
}

// GetStatus fetches a fresh status snapshot for a generation request.
func (c *Client) GetStatus(ctx context.Context, requestID string) (*StatusResponse, error) {
	if requestID == "" {
		return nil, ErrEmptyRequestID
	}

	path := fmt.Sprintf("/v1/visual/%s/status", requestID)

	var result StatusResponse
	if err := c.http.Get(ctx, path, &result); err != nil {
		return nil, err
	}

	if !result.Status.Known() {
		return nil, &vfhttp.ResponseError{
			Service:  serviceName,
			Endpoint: path,
			Body:     fmt.Sprintf("status=%q", result.Status),
			Err:      fmt.Errorf("unknown status in status response"),
		}
	}

	return &result, nil
}

// DownloadFile performs an authenticated GET against a fully-qualified
// file URL and returns the body bytes.
func (c *Client) DownloadFile(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("napkin: file URL is required")
	}
	return c.http.GetRaw(ctx, url)
}

// VerifyAPIKey performs a lightweight authenticated probe against the
// API. A reachable endpoint (2xx, or 404 for an absent resource) means
// the key is valid; 401/403 means the credentials were rejected; a
// network-level failure is reported as a connection failure. It never
// returns a Go error.
func (c *Client) VerifyAPIKey(ctx context.Context) VerifyResult {
	resp, err := c.http.Request(ctx, http.MethodGet, "/v1/styles", nil)
	if err != nil {
		return VerifyResult{Valid: false, Error: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300, resp.StatusCode == http.StatusNotFound:
		return VerifyResult{Valid: true}
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return VerifyResult{Valid: false, Error: "Invalid or expired API key"}
	default:
		return VerifyResult{Valid: false, Error: fmt.Sprintf("Unexpected status %d from API", resp.StatusCode)}
	}
}
