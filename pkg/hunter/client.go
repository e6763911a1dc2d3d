// Package hunter provides a client for the Hunter.io v2 API.
package hunter

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

// Client defines the Hunter.io operations used by the enrichment engine.
type Client interface {
	// FindEmail locates a specific person's email at a domain.
	FindEmail(ctx context.Context, domain, firstName, lastName string) (*FinderResult, error)
	// VerifyEmail checks the deliverability of an email address.
	VerifyEmail(ctx context.Context, email string) (*VerifyResult, error)
	// DomainSearch lists known email addresses for a domain.
	DomainSearch(ctx context.Context, domain string) (*DomainResult, error)
}

// FinderResult is the parsed email-finder payload.
type FinderResult struct {
	Email     string `json:"email"`
	Score     int    `json:"score"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
}

// VerifyResult is the parsed email-verifier payload. Status is one of
// deliverable, undeliverable, risky, unknown.
type VerifyResult struct {
	Status string `json:"status"`
	Result string `json:"result"`
	Score  int    `json:"score"`
}

// DomainEmail is one address from a domain search.
type DomainEmail struct {
	Value     string `json:"value"`
	Type      string `json:"type"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
}

// DomainResult is the parsed domain-search payload.
type DomainResult struct {
	Domain  string        `json:"domain"`
	Emails  []DomainEmail `json:"emails"`
	Pattern string        `json:"pattern"`
}

// APIError is a non-2xx response from the Hunter API.
type APIError struct {
	StatusCode int
	Details    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hunter: status %d: %s", e.StatusCode, e.Details)
}

// Option configures the Hunter client.
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

// NewClient creates a new Hunter.io client. The API key is passed as a
// query parameter on every call, per Hunter's auth scheme.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.hunter.io/v2",
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

// envelope is Hunter's standard { "data": ..., "errors": [...] } wrapper.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		ID      string `json:"id"`
		Code    int    `json:"code"`
		Details string `json:"details"`
	} `json:"errors"`
}

func (c *httpClient) FindEmail(ctx context.Context, domain, firstName, lastName string) (*FinderResult, error) {
	q := url.Values{}
	q.Set("domain", domain)
	q.Set("first_name", firstName)
	q.Set("last_name", lastName)

	var result FinderResult
	if err := c.get(ctx, "/email-finder", q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) VerifyEmail(ctx context.Context, email string) (*VerifyResult, error) {
	q := url.Values{}
	q.Set("email", email)

	var result VerifyResult
	if err := c.get(ctx, "/email-verifier", q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) DomainSearch(ctx context.Context, domain string) (*DomainResult, error) {
	q := url.Values{}
	q.Set("domain", domain)

	var result DomainResult
	if err := c.get(ctx, "/domain-search", q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) get(ctx context.Context, path string, q url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "hunter: rate limit")
		}
	}

	q.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "hunter: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "hunter: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "hunter: read response body")
	}

	var env envelope
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		details := string(body)
		if json.Unmarshal(body, &env) == nil && len(env.Errors) > 0 {
			details = env.Errors[0].Details
		}
		return &APIError{StatusCode: resp.StatusCode, Details: details}
	}

	if err := json.Unmarshal(body, &env); err != nil {
		return eris.Wrap(err, "hunter: unmarshal envelope")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return eris.Wrap(err, "hunter: unmarshal data")
	}
	return nil
}
