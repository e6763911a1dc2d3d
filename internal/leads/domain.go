// Package leads imports lead records from CSV and XLSX files, normalizes
// names, and cleans up unusable domains before enrichment.
package leads

import (
	"strings"
)

// badDomains are social-media hosts that show up in the domain column of
// scraped lead lists. They are useless for email lookup and are replaced
// by a domain derived from the company name.
var badDomains = []string{"twitter.com", "linkedin.com", "x.com", "facebook.com"}

// entitySuffixes are stripped from company names before deriving a domain.
// Distinctive words like "capital" or "ventures" are kept: they are
// usually part of the real domain ("Lux Capital Management, LLC" owns
// luxcapital.com, not lux.com).
var entitySuffixes = []string{
	", llc", ", lp", ", l.p.", " llc", " lp", " l.p.",
	" management", " company", " inc", " corp",
	", inc.", ", inc", " incorporated",
}

// IsBadDomain reports whether the domain is empty or a social-media host.
func IsBadDomain(domain string) bool {
	d := strings.ToLower(strings.TrimSpace(domain))
	if d == "" {
		return true
	}
	for _, bad := range badDomains {
		if strings.Contains(d, bad) {
			return true
		}
	}
	return false
}

// DeriveDomain guesses a company's domain from its name:
// "Lux Capital Management, LLC" -> "luxcapital.com". Returns "" when
// nothing usable remains after cleanup.
func DeriveDomain(companyName string) string {
	name := strings.ToLower(strings.TrimSpace(companyName))
	for _, suffix := range entitySuffixes {
		name = strings.ReplaceAll(name, suffix, "")
	}

	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return ""
	}
	return b.String() + ".com"
}

// CleanDomain returns the record's usable domain: the existing one when
// good, else a derivation from the company name, else "".
func CleanDomain(domain, companyName string) string {
	if !IsBadDomain(domain) {
		return strings.ToLower(strings.TrimSpace(domain))
	}
	return DeriveDomain(companyName)
}
