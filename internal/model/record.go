// Package model defines the core types shared across the enrichment engine.
package model

import "strings"

// Record is an inbound lead record as supplied by CSV import, the Notion
// queue, or the webhook API. Only the fields surfaced by Inputs() influence
// routing; everything else is carried through untouched.
type Record struct {
	ID           string `json:"id,omitempty"`
	Email        string `json:"email,omitempty"`
	Domain       string `json:"domain,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	Company      string `json:"company,omitempty"`
	Title        string `json:"title,omitempty"`
	NotionPageID string `json:"notion_page_id,omitempty"`
}

// Inputs is the canonical field set that alone determines routing.
type Inputs struct {
	Email      string `json:"email,omitempty"`
	Domain     string `json:"domain,omitempty"`
	PersonName string `json:"person_name,omitempty"`
	Company    string `json:"company,omitempty"`
}

// Inputs reduces the record to its canonical routing fields. PersonName is
// the trimmed full-name field when present, else a "First Last" composition.
func (r Record) Inputs() Inputs {
	name := strings.TrimSpace(r.FullName)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
	}
	return Inputs{
		Email:      strings.TrimSpace(r.Email),
		Domain:     strings.ToLower(strings.TrimSpace(r.Domain)),
		PersonName: name,
		Company:    strings.TrimSpace(r.Company),
	}
}

// NameParts splits PersonName into first and last. The last token becomes
// the last name; everything before it joins into the first name.
func (in Inputs) NameParts() (first, last string) {
	tokens := strings.Fields(in.PersonName)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	default:
		return strings.Join(tokens[:len(tokens)-1], " "), tokens[len(tokens)-1]
	}
}

// CacheKey returns the stable record key used for caching: the lowercase
// domain when present, else a company|person composite for domainless records.
func (in Inputs) CacheKey() string {
	if in.Domain != "" {
		return in.Domain
	}
	return strings.ToLower(in.Company) + "|" + strings.ToLower(in.PersonName)
}
