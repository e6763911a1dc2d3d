// Package enrich implements the contact resolution engine: input
// classification, capability routing, the provider waterfall, result
// caching, per-record budgets, and batch execution.
package enrich

import (
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Classify maps canonical inputs to a routing action. Pure and
// deterministic: no I/O, no randomness, no dependence on provider
// configuration or circuit state.
//
// Email wins unconditionally. With a domain, a full name routes to the
// person finder and anything less falls back to the company-contact path.
// Without a domain the company name drives the search variants.
func Classify(in model.Inputs) model.Action {
	switch {
	case in.Email != "":
		return model.ActionVerify
	case in.Domain != "" && isFullName(in.PersonName):
		return model.ActionFindPerson
	case in.Domain != "":
		return model.ActionFindCompanyContact
	case in.Company != "" && isFullName(in.PersonName):
		return model.ActionSearchPerson
	case in.Company != "":
		return model.ActionSearchCompany
	default:
		return model.ActionCannotRoute
	}
}

// isFullName reports whether name splits into at least two whitespace
// tokens after trimming. A hyphenated single token ("Mary-Jane") does not
// count as a full name on its own.
func isFullName(name string) bool {
	return len(strings.Fields(name)) >= 2
}
