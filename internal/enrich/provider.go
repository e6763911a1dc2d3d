package enrich

import (
	"context"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Contact is the reduced payload every find/search capability returns.
type Contact struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Title     string `json:"title,omitempty"`
}

// Provider is the base contract for a lookup service adapter. Adapters are
// stateless and freely shareable across batch workers; each additionally
// implements the capability interfaces it supports.
//
// Call conventions for every capability method: a nil value with a nil
// error is a clean not-found (a successful API call with a negative
// answer); a non-nil error is always a *resilience.ProviderError carrying
// a classified outcome.
type Provider interface {
	Name() string
	Configured() bool
}

// Verifier checks the deliverability of an existing email address.
type Verifier interface {
	Provider
	Verify(ctx context.Context, email string) (bool, error)
}

// PersonFinder finds a named person's email at a known domain.
type PersonFinder interface {
	Provider
	FindPerson(ctx context.Context, domain, personName string) (*Contact, error)
}

// ContactFinder finds any suitable contact email at a known domain.
type ContactFinder interface {
	Provider
	FindCompanyContact(ctx context.Context, domain string) (*Contact, error)
}

// PersonSearcher finds a named person by company name, without a domain.
type PersonSearcher interface {
	Provider
	SearchPerson(ctx context.Context, company, personName string) (*Contact, error)
}

// CompanySearcher finds any suitable contact by company name, without a
// domain.
type CompanySearcher interface {
	Provider
	SearchCompany(ctx context.Context, company string) (*Contact, error)
}

// Registry holds the configured provider adapters by name.
type Registry struct {
	order     []string
	providers map[string]Provider
}

// NewRegistry creates a registry from the given adapters, preserving order.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if _, dup := r.providers[p.Name()]; dup {
			continue
		}
		r.order = append(r.order, p.Name())
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the named provider, or nil.
func (r *Registry) Get(name string) Provider {
	return r.providers[name]
}

// Names returns provider names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Supports reports whether the provider's Go type implements the capability
// interface backing the action.
func Supports(p Provider, action model.Action) bool {
	switch action {
	case model.ActionVerify:
		_, ok := p.(Verifier)
		return ok
	case model.ActionFindPerson:
		_, ok := p.(PersonFinder)
		return ok
	case model.ActionFindCompanyContact:
		_, ok := p.(ContactFinder)
		return ok
	case model.ActionSearchPerson:
		_, ok := p.(PersonSearcher)
		return ok
	case model.ActionSearchCompany:
		_, ok := p.(CompanySearcher)
		return ok
	default:
		return false
	}
}
