package enrich

import (
	"context"
	"errors"
	"net/http"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/pkg/apollo"
)

// executiveTitles filters Apollo people searches toward decision makers
// when no specific person is requested.
var executiveTitles = []string{
	"Founder", "Owner", "Managing Partner", "CEO", "President", "Principal", "Partner",
}

// ApolloAdapter serves the find and search actions via Apollo.io. Company
// contact lookups are two-phase: a free bulk people search picks the most
// senior candidate, then a paid single-person match reveals the email.
type ApolloAdapter struct {
	client apollo.Client
}

// NewApolloAdapter wraps an Apollo.io client. A nil client marks the
// provider unconfigured.
func NewApolloAdapter(client apollo.Client) *ApolloAdapter {
	return &ApolloAdapter{client: client}
}

func (a *ApolloAdapter) Name() string { return "apollo" }

func (a *ApolloAdapter) Configured() bool { return a.client != nil }

func (a *ApolloAdapter) FindPerson(ctx context.Context, domain, personName string) (*Contact, error) {
	in := model.Inputs{PersonName: personName}
	first, last := in.NameParts()

	return a.reveal(ctx, apollo.MatchRequest{
		FirstName: first,
		LastName:  last,
		Domain:    domain,
	})
}

func (a *ApolloAdapter) FindCompanyContact(ctx context.Context, domain string) (*Contact, error) {
	return a.searchThenReveal(ctx, apollo.SearchRequest{
		OrganizationDomains: []string{domain},
		Titles:              executiveTitles,
	})
}

func (a *ApolloAdapter) SearchPerson(ctx context.Context, company, personName string) (*Contact, error) {
	result, err := a.client.SearchPeople(ctx, apollo.SearchRequest{
		OrganizationName: company,
		PersonName:       personName,
	})
	if err != nil {
		return nil, a.classify(err)
	}
	if len(result.People) == 0 {
		return nil, nil
	}
	return a.reveal(ctx, apollo.MatchRequest{ID: result.People[0].ID})
}

func (a *ApolloAdapter) SearchCompany(ctx context.Context, company string) (*Contact, error) {
	return a.searchThenReveal(ctx, apollo.SearchRequest{
		OrganizationName: company,
		Titles:           executiveTitles,
	})
}

// searchThenReveal runs the free bulk search, ranks candidates by title
// seniority, and pays for a single reveal of the winner. Zero phase-1
// candidates is a provider-level not-found, never an error.
func (a *ApolloAdapter) searchThenReveal(ctx context.Context, req apollo.SearchRequest) (*Contact, error) {
	result, err := a.client.SearchPeople(ctx, req)
	if err != nil {
		return nil, a.classify(err)
	}
	if len(result.People) == 0 {
		return nil, nil
	}

	titles := make([]string, len(result.People))
	for i, p := range result.People {
		titles[i] = p.Title
	}
	best := result.People[pickBySeniority(titles)]

	return a.reveal(ctx, apollo.MatchRequest{ID: best.ID})
}

// reveal runs the paid single-person match.
func (a *ApolloAdapter) reveal(ctx context.Context, req apollo.MatchRequest) (*Contact, error) {
	person, err := a.client.MatchPerson(ctx, req)
	if err != nil {
		return nil, a.classify(err)
	}
	if person == nil || person.Email == "" {
		return nil, nil
	}
	return &Contact{
		Email:     person.Email,
		FirstName: person.FirstName,
		LastName:  person.LastName,
		Title:     person.Title,
	}, nil
}

// classify converts a client error into the outcome taxonomy. Apollo
// reports insufficient credits as 422.
func (a *ApolloAdapter) classify(err error) error {
	var apiErr *apollo.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusNotFound {
			return nil
		}
		return resilience.Classify(a.Name(), apiErr.StatusCode, err)
	}
	return resilience.Classify(a.Name(), 0, err)
}
