// Package neverbounce provides a client for the NeverBounce v4.2 API.
package neverbounce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Verdict values returned by the single-check endpoint.
const (
	VerdictValid      = "valid"
	VerdictInvalid    = "invalid"
	VerdictDisposable = "disposable"
	VerdictCatchall   = "catchall"
	VerdictUnknown    = "unknown"
)

// API-level status strings. NeverBounce returns HTTP 200 even for auth and
// quota failures; the status field carries the real condition.
const (
	StatusSuccess           = "success"
	StatusAuthFailure       = "auth_failure"
	StatusThrottleTriggered = "throttle_triggered"
	StatusPaymentRequired   = "payment_required"
)

// Client defines the NeverBounce operations used by the enrichment engine.
type Client interface {
	// Check verifies a single email address.
	Check(ctx context.Context, email string) (*CheckResult, error)
}

// CheckResult is the parsed single-check response.
type CheckResult struct {
	Status  string `json:"status"`
	Result  string `json:"result"`
	Message string `json:"message"`
}

// Valid reports whether the verdict confirms deliverability. Catchall and
// unknown are not treated as confirmation.
func (r *CheckResult) Valid() bool {
	return r.Result == VerdictValid
}

// APIError is a non-2xx response or a failure-status payload from the
// NeverBounce API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("neverbounce: status %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

// Option configures the NeverBounce client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate (10 req/s).
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new NeverBounce client. The API key is passed as a
// query parameter per NeverBounce's auth scheme.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.neverbounce.com/v4.2",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(10, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Check(ctx context.Context, email string) (*CheckResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "neverbounce: rate limit")
		}
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("email", email)
	reqURL := c.baseURL + "/single/check?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "neverbounce: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "neverbounce: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "neverbounce: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var result CheckResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "neverbounce: unmarshal response")
	}

	if result.Status != StatusSuccess {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: result.Status, Message: result.Message}
	}
	return &result, nil
}
