// Package apollo provides a client for the Apollo.io v1 API.
//
// The people-search endpoint is free and returns candidates without email
// addresses; the people-match endpoint is a paid reveal for one person.
// Callers are expected to search first and reveal only the chosen candidate.
package apollo

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

// Client defines the Apollo.io operations used by the enrichment engine.
type Client interface {
	// SearchPeople runs the free people search, returning zero or more
	// candidates without emails.
	SearchPeople(ctx context.Context, req SearchRequest) (*SearchResult, error)
	// MatchPerson runs the paid single-person reveal.
	MatchPerson(ctx context.Context, req MatchRequest) (*Person, error)
}

// SearchRequest filters the people search.
type SearchRequest struct {
	OrganizationDomains []string `json:"q_organization_domains,omitempty"`
	OrganizationName    string   `json:"q_organization_name,omitempty"`
	PersonName          string   `json:"q_keywords,omitempty"`
	Titles              []string `json:"person_titles,omitempty"`
	PerPage             int      `json:"per_page,omitempty"`
}

// Person is an Apollo person record. Email is only populated by the paid
// match endpoint.
type Person struct {
	ID               string `json:"id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Title            string `json:"title"`
	Email            string `json:"email"`
	OrganizationName string `json:"organization_name"`
}

// SearchResult is the parsed people-search response.
type SearchResult struct {
	People []Person `json:"people"`
}

// MatchRequest identifies the person to reveal.
type MatchRequest struct {
	ID           string `json:"id,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Domain       string `json:"domain,omitempty"`
	Organization string `json:"organization_name,omitempty"`
}

// matchResponse wraps the person in Apollo's match envelope.
type matchResponse struct {
	Person *Person `json:"person"`
}

// APIError is a non-2xx response from the Apollo API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apollo: status %d: %s", e.StatusCode, e.Body)
}

// Option configures the Apollo client.
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

// WithRateLimit overrides the default request rate (1 req/s).
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

// NewClient creates a new Apollo.io client with X-Api-Key header auth.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.apollo.io/v1",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(1, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchPeople(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if req.PerPage == 0 {
		req.PerPage = 10
	}

	body, err := c.post(ctx, "/mixed_people/search", req)
	if err != nil {
		return nil, err
	}

	var result SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "apollo: unmarshal search response")
	}
	return &result, nil
}

func (c *httpClient) MatchPerson(ctx context.Context, req MatchRequest) (*Person, error) {
	body, err := c.post(ctx, "/people/match", req)
	if err != nil {
		return nil, err
	}

	var result matchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "apollo: unmarshal match response")
	}
	return result.Person, nil
}

func (c *httpClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "apollo: rate limit")
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "apollo: create request")
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
