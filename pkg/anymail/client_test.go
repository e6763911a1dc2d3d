package anymail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPerson_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search/person.json", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req PersonRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "stripe.com", req.Domain)
		assert.Equal(t, "Patrick", req.FirstName)
		assert.Equal(t, "Collison", req.LastName)

		json.NewEncoder(w).Encode(PersonResult{Email: "patrick@stripe.com", Validation: "valid"})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.SearchPerson(context.Background(), PersonRequest{
		Domain:    "stripe.com",
		FirstName: "Patrick",
		LastName:  "Collison",
	})

	require.NoError(t, err)
	assert.Equal(t, "patrick@stripe.com", got.Email)
	assert.Equal(t, "valid", got.Validation)
}

func TestSearchCompany_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/company.json", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "stripe.com", req["domain"])

		json.NewEncoder(w).Encode(CompanyResult{Emails: []CompanyEmail{{Email: "info@stripe.com"}}})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.SearchCompany(context.Background(), "stripe.com")

	require.NoError(t, err)
	require.Len(t, got.Emails, 1)
	assert.Equal(t, "info@stripe.com", got.Emails[0].Email)
}

func TestSearchPerson_NotFoundIsAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not_found"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.SearchPerson(context.Background(), PersonRequest{Domain: "nowhere.com"})

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestSearchPerson_PaymentRequired(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":"insufficient_credits"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.SearchPerson(context.Background(), PersonRequest{Domain: "stripe.com"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "insufficient_credits")
}
