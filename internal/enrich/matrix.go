package enrich

import (
	"os"
	"slices"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Matrix declares which providers may serve which actions, and the
// provider try-order per action. The ordering encodes cost/quality
// tradeoffs: cheaper or bulk-search-first providers come before
// pay-per-call competitors.
type Matrix struct {
	Capabilities map[string][]model.Action `yaml:"capabilities"`
	Priority     map[model.Action][]string `yaml:"priority"`
}

// DefaultMatrix returns the built-in routing tables for the deployed
// provider set.
func DefaultMatrix() *Matrix {
	return &Matrix{
		Capabilities: map[string][]model.Action{
			"anymail": {
				model.ActionFindPerson,
				model.ActionFindCompanyContact,
			},
			"hunter": {
				model.ActionVerify,
				model.ActionFindPerson,
				model.ActionFindCompanyContact,
			},
			"apollo": {
				model.ActionFindPerson,
				model.ActionFindCompanyContact,
				model.ActionSearchPerson,
				model.ActionSearchCompany,
			},
			"neverbounce": {
				model.ActionVerify,
			},
		},
		Priority: map[model.Action][]string{
			model.ActionVerify:     {"neverbounce", "hunter"},
			model.ActionFindPerson: {"anymail", "hunter", "apollo"},
			// Apollo first: its bulk people search is free, so the paid
			// reveal only fires on a chosen candidate.
			model.ActionFindCompanyContact: {"apollo", "anymail", "hunter"},
			model.ActionSearchPerson:       {"apollo"},
			model.ActionSearchCompany:      {"apollo"},
		},
	}
}

// LoadMatrix reads a routing-table override from a YAML file.
func LoadMatrix(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: read routing table %s", path)
	}

	var m Matrix
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "enrich: parse routing table %s", path)
	}
	if len(m.Capabilities) == 0 || len(m.Priority) == 0 {
		return nil, eris.Errorf("enrich: routing table %s missing capabilities or priority", path)
	}
	return &m, nil
}

// Capable reports whether the action is in the provider's declared
// capability set.
func (m *Matrix) Capable(provider string, action model.Action) bool {
	return slices.Contains(m.Capabilities[provider], action)
}

// Order returns the provider try-order for the action.
func (m *Matrix) Order(action model.Action) []string {
	return m.Priority[action]
}
