package enrich

import (
	"context"
	"errors"
	"net/http"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/pkg/anymail"
)

// AnymailAdapter serves find_person and find_company_contact via the
// Anymail Finder search API.
type AnymailAdapter struct {
	client anymail.Client
}

// NewAnymailAdapter wraps an Anymail Finder client. A nil client marks the
// provider unconfigured.
func NewAnymailAdapter(client anymail.Client) *AnymailAdapter {
	return &AnymailAdapter{client: client}
}

func (a *AnymailAdapter) Name() string { return "anymail" }

func (a *AnymailAdapter) Configured() bool { return a.client != nil }

func (a *AnymailAdapter) FindPerson(ctx context.Context, domain, personName string) (*Contact, error) {
	in := model.Inputs{PersonName: personName}
	first, last := in.NameParts()

	result, err := a.client.SearchPerson(ctx, anymail.PersonRequest{
		Domain:    domain,
		FirstName: first,
		LastName:  last,
	})
	if err != nil {
		return nil, a.classify(err)
	}
	if result.Email == "" {
		return nil, nil
	}
	return &Contact{Email: result.Email, FirstName: first, LastName: last}, nil
}

func (a *AnymailAdapter) FindCompanyContact(ctx context.Context, domain string) (*Contact, error) {
	result, err := a.client.SearchCompany(ctx, domain)
	if err != nil {
		return nil, a.classify(err)
	}
	if len(result.Emails) == 0 || result.Emails[0].Email == "" {
		return nil, nil
	}
	return &Contact{Email: result.Emails[0].Email}, nil
}

// classify converts a client error into the outcome taxonomy. A 404 is a
// clean not-found, not a failure.
func (a *AnymailAdapter) classify(err error) error {
	var apiErr *anymail.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusNotFound {
			return nil
		}
		return resilience.Classify(a.Name(), apiErr.StatusCode, err)
	}
	return resilience.Classify(a.Name(), 0, err)
}
