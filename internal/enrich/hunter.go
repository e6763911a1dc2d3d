package enrich

import (
	"context"
	"errors"
	"net/http"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/pkg/hunter"
)

// HunterAdapter serves verify, find_person, and find_company_contact via
// the Hunter.io API.
type HunterAdapter struct {
	client hunter.Client
}

// NewHunterAdapter wraps a Hunter.io client. A nil client marks the
// provider unconfigured.
func NewHunterAdapter(client hunter.Client) *HunterAdapter {
	return &HunterAdapter{client: client}
}

func (h *HunterAdapter) Name() string { return "hunter" }

func (h *HunterAdapter) Configured() bool { return h.client != nil }

func (h *HunterAdapter) Verify(ctx context.Context, email string) (bool, error) {
	result, err := h.client.VerifyEmail(ctx, email)
	if err != nil {
		cerr := h.classify(err)
		if cerr == nil {
			// An unknown address is a clean negative answer.
			return false, nil
		}
		return false, cerr
	}
	return result.Status == "deliverable", nil
}

func (h *HunterAdapter) FindPerson(ctx context.Context, domain, personName string) (*Contact, error) {
	in := model.Inputs{PersonName: personName}
	first, last := in.NameParts()

	result, err := h.client.FindEmail(ctx, domain, first, last)
	if err != nil {
		if cerr := h.classify(err); cerr != nil {
			return nil, cerr
		}
		return nil, nil
	}
	if result.Email == "" {
		return nil, nil
	}
	return &Contact{
		Email:     result.Email,
		FirstName: result.FirstName,
		LastName:  result.LastName,
		Title:     result.Position,
	}, nil
}

func (h *HunterAdapter) FindCompanyContact(ctx context.Context, domain string) (*Contact, error) {
	result, err := h.client.DomainSearch(ctx, domain)
	if err != nil {
		if cerr := h.classify(err); cerr != nil {
			return nil, cerr
		}
		return nil, nil
	}
	if len(result.Emails) == 0 {
		return nil, nil
	}

	titles := make([]string, len(result.Emails))
	for i, e := range result.Emails {
		titles[i] = e.Position
	}
	best := result.Emails[pickBySeniority(titles)]
	if best.Value == "" {
		return nil, nil
	}
	return &Contact{
		Email:     best.Value,
		FirstName: best.FirstName,
		LastName:  best.LastName,
		Title:     best.Position,
	}, nil
}

// classify converts a client error into the outcome taxonomy. A 404 is a
// clean not-found and yields nil.
func (h *HunterAdapter) classify(err error) error {
	var apiErr *hunter.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusNotFound {
			return nil
		}
		return resilience.Classify(h.Name(), apiErr.StatusCode, err)
	}
	return resilience.Classify(h.Name(), 0, err)
}
