package leads

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/outreach-cli/internal/model"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// NormalizeName title-cases a person or company name, preserving interior
// whitespace structure. All-caps exports ("JOHN SMITH") become readable
// ("John Smith").
func NormalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(name))
}

// Normalize canonicalizes one record in place: trimmed fields, title-cased
// person names, and a cleaned (possibly derived) domain.
func Normalize(rec *model.Record) {
	rec.Company = strings.TrimSpace(rec.Company)
	rec.Email = strings.TrimSpace(rec.Email)
	rec.Title = strings.TrimSpace(rec.Title)
	rec.FirstName = NormalizeName(rec.FirstName)
	rec.LastName = NormalizeName(rec.LastName)
	rec.FullName = NormalizeName(rec.FullName)
	rec.Domain = CleanDomain(rec.Domain, rec.Company)
}
