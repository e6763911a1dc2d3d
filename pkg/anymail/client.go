// Package anymail provides a client for the Anymail Finder v5.0 search API.
package anymail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Anymail Finder operations used by the enrichment engine.
type Client interface {
	// SearchPerson finds a specific person's email at a domain.
	SearchPerson(ctx context.Context, req PersonRequest) (*PersonResult, error)
	// SearchCompany finds generic contact emails for a domain.
	SearchCompany(ctx context.Context, domain string) (*CompanyResult, error)
}

// PersonRequest identifies the person to search for.
type PersonRequest struct {
	Domain    string `json:"domain"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	FullName  string `json:"full_name,omitempty"`
}

// PersonResult is the parsed person search response.
type PersonResult struct {
	Email      string `json:"email"`
	Validation string `json:"validation,omitempty"`
}

// CompanyEmail is one generic email from a company search.
type CompanyEmail struct {
	Email string `json:"email"`
}

// CompanyResult is the parsed company search response.
type CompanyResult struct {
	Emails []CompanyEmail `json:"emails"`
}

// APIError is a non-2xx response from the Anymail Finder API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anymail: status %d: %s", e.StatusCode, e.Body)
}

// Option configures the Anymail client.
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

// WithRateLimit overrides the default request rate (2 req/s).
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

// NewClient creates a new Anymail Finder client with bearer-token auth.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.anymailfinder.com/v5.0",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(2, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchPerson(ctx context.Context, req PersonRequest) (*PersonResult, error) {
	body, err := c.post(ctx, "/search/person.json", req)
	if err != nil {
		return nil, err
	}

	var result PersonResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "anymail: unmarshal person response")
	}
	return &result, nil
}

func (c *httpClient) SearchCompany(ctx context.Context, domain string) (*CompanyResult, error) {
	body, err := c.post(ctx, "/search/company.json", map[string]string{"domain": domain})
	if err != nil {
		return nil, err
	}

	var result CompanyResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "anymail: unmarshal company response")
	}
	return &result, nil
}

// post sends a JSON request and returns the response body. Non-2xx
// responses are returned as *APIError so callers can classify by status.
func (c *httpClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "anymail: rate limit")
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "anymail: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "anymail: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "anymail: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "anymail: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
