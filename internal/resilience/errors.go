package resilience

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sells-group/outreach-cli/internal/model"
)

// ProviderError is a transport failure classified at the adapter boundary.
// Every non-nil error that reaches the router must be one of these; bare
// errors from HTTP clients are wrapped before they leave the adapter.
type ProviderError struct {
	Provider   string
	Outcome    model.Outcome
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Outcome, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Outcome)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err with a provider name and a classified outcome.
func NewProviderError(provider string, outcome model.Outcome, statusCode int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Outcome: outcome, StatusCode: statusCode, Err: err}
}

// ClassifyStatus maps an HTTP status code to the error taxonomy. 404 maps
// to not_found; callers that treat an empty body as a clean miss should not
// reach this at all.
func ClassifyStatus(code int) model.Outcome {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.OutcomeAuthError
	case http.StatusPaymentRequired, http.StatusUnprocessableEntity:
		return model.OutcomeCreditsExhausted
	case http.StatusTooManyRequests:
		return model.OutcomeRateLimited
	case http.StatusNotFound:
		return model.OutcomeNotFound
	default:
		return model.OutcomeError
	}
}

// Classify wraps err as a ProviderError with the status-derived outcome. If
// err already carries a classification it is returned unchanged.
func Classify(provider string, statusCode int, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return NewProviderError(provider, ClassifyStatus(statusCode), statusCode, err)
}

// OutcomeOf extracts the classified outcome from an error chain, defaulting
// to the generic error outcome for anything unclassified.
func OutcomeOf(err error) model.Outcome {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Outcome
	}
	return model.OutcomeError
}
