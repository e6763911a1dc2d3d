package enrich

import (
	"context"
	"errors"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/pkg/neverbounce"
)

// NeverBounceAdapter serves verify via the NeverBounce single-check API.
type NeverBounceAdapter struct {
	client neverbounce.Client
}

// NewNeverBounceAdapter wraps a NeverBounce client. A nil client marks the
// provider unconfigured.
func NewNeverBounceAdapter(client neverbounce.Client) *NeverBounceAdapter {
	return &NeverBounceAdapter{client: client}
}

func (n *NeverBounceAdapter) Name() string { return "neverbounce" }

func (n *NeverBounceAdapter) Configured() bool { return n.client != nil }

func (n *NeverBounceAdapter) Verify(ctx context.Context, email string) (bool, error) {
	result, err := n.client.Check(ctx, email)
	if err != nil {
		return false, n.classify(err)
	}
	return result.Valid(), nil
}

// classify converts a client error into the outcome taxonomy. NeverBounce
// signals auth and quota conditions through status strings on an HTTP 200,
// so those are mapped before falling back to status-code classification.
func (n *NeverBounceAdapter) classify(err error) error {
	var apiErr *neverbounce.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case neverbounce.StatusAuthFailure:
			return resilience.NewProviderError(n.Name(), model.OutcomeAuthError, apiErr.StatusCode, err)
		case neverbounce.StatusThrottleTriggered:
			return resilience.NewProviderError(n.Name(), model.OutcomeRateLimited, apiErr.StatusCode, err)
		case neverbounce.StatusPaymentRequired:
			return resilience.NewProviderError(n.Name(), model.OutcomeCreditsExhausted, apiErr.StatusCode, err)
		}
		return resilience.Classify(n.Name(), apiErr.StatusCode, err)
	}
	return resilience.Classify(n.Name(), 0, err)
}
