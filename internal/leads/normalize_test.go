package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/outreach-cli/internal/model"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "John Smith", NormalizeName("JOHN SMITH"))
	assert.Equal(t, "John Smith", NormalizeName("  john   smith  "))
	assert.Equal(t, "", NormalizeName("   "))
	assert.Equal(t, "Mary-Jane Watson", NormalizeName("MARY-JANE WATSON"))
}

func TestNormalize(t *testing.T) {
	rec := model.Record{
		Company:   "  Lux Capital Management, LLC  ",
		Domain:    "twitter.com/luxcapital",
		FullName:  "JOSH WOLFE",
		Email:     " josh@luxcapital.com ",
		FirstName: "josh",
		LastName:  "WOLFE",
	}

	Normalize(&rec)

	assert.Equal(t, "Lux Capital Management, LLC", rec.Company)
	assert.Equal(t, "luxcapital.com", rec.Domain)
	assert.Equal(t, "Josh Wolfe", rec.FullName)
	assert.Equal(t, "josh@luxcapital.com", rec.Email)
	assert.Equal(t, "Josh", rec.FirstName)
	assert.Equal(t, "Wolfe", rec.LastName)
}

func TestNormalize_KeepsGoodDomain(t *testing.T) {
	rec := model.Record{Company: "Stripe", Domain: "Stripe.com"}
	Normalize(&rec)
	assert.Equal(t, "stripe.com", rec.Domain)
}
