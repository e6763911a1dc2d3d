package enrich

import (
	"testing"

	"github.com/sells-group/outreach-cli/internal/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		in   model.Inputs
		want model.Action
	}{
		{
			name: "email wins over everything",
			in:   model.Inputs{Email: "pc@stripe.com", Domain: "stripe.com", PersonName: "Patrick Collison", Company: "Stripe"},
			want: model.ActionVerify,
		},
		{
			name: "email alone",
			in:   model.Inputs{Email: "pc@stripe.com"},
			want: model.ActionVerify,
		},
		{
			name: "domain plus full name",
			in:   model.Inputs{Domain: "stripe.com", PersonName: "Patrick Collison"},
			want: model.ActionFindPerson,
		},
		{
			name: "domain plus single name falls back to company contact",
			in:   model.Inputs{Domain: "stripe.com", PersonName: "Ivelisse"},
			want: model.ActionFindCompanyContact,
		},
		{
			name: "domain alone",
			in:   model.Inputs{Domain: "stripe.com"},
			want: model.ActionFindCompanyContact,
		},
		{
			name: "company plus full name searches the person",
			in:   model.Inputs{Company: "Stripe", PersonName: "Patrick Collison"},
			want: model.ActionSearchPerson,
		},
		{
			name: "company alone searches the company",
			in:   model.Inputs{Company: "Stripe"},
			want: model.ActionSearchCompany,
		},
		{
			name: "company plus single name searches the company",
			in:   model.Inputs{Company: "Stripe", PersonName: "Ivelisse"},
			want: model.ActionSearchCompany,
		},
		{
			name: "person name alone cannot route",
			in:   model.Inputs{PersonName: "Patrick Collison"},
			want: model.ActionCannotRoute,
		},
		{
			name: "empty inputs cannot route",
			in:   model.Inputs{},
			want: model.ActionCannotRoute,
		},
		{
			name: "three-token name counts as full",
			in:   model.Inputs{Domain: "example.com", PersonName: "Mary Jane Watson"},
			want: model.ActionFindPerson,
		},
		{
			name: "hyphenated single token is not a full name",
			in:   model.Inputs{Domain: "example.com", PersonName: "Mary-Jane"},
			want: model.ActionFindCompanyContact,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.in); got != tc.want {
				t.Errorf("Classify(%+v) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	in := model.Inputs{Domain: "stripe.com", PersonName: "Patrick Collison"}
	first := Classify(in)
	for i := 0; i < 100; i++ {
		if got := Classify(in); got != first {
			t.Fatalf("classification changed between calls: %s vs %s", first, got)
		}
	}
}

func TestRecordInputs(t *testing.T) {
	rec := model.Record{
		FirstName: " Patrick ",
		LastName:  " Collison ",
		Domain:    "Stripe.COM",
		Company:   " Stripe ",
	}
	in := rec.Inputs()
	if in.PersonName != "Patrick Collison" {
		t.Errorf("PersonName = %q", in.PersonName)
	}
	if in.Domain != "stripe.com" {
		t.Errorf("Domain = %q, want lowercase", in.Domain)
	}
	if in.Company != "Stripe" {
		t.Errorf("Company = %q", in.Company)
	}

	// FullName takes precedence over First/Last composition.
	rec.FullName = "John Collison"
	if got := rec.Inputs().PersonName; got != "John Collison" {
		t.Errorf("PersonName = %q, want FullName to win", got)
	}
}

func TestInputsNameParts(t *testing.T) {
	cases := []struct {
		name  string
		first string
		last  string
	}{
		{"Patrick Collison", "Patrick", "Collison"},
		{"Mary Jane Watson", "Mary Jane", "Watson"},
		{"Ivelisse", "Ivelisse", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		first, last := model.Inputs{PersonName: tc.name}.NameParts()
		if first != tc.first || last != tc.last {
			t.Errorf("NameParts(%q) = %q/%q, want %q/%q", tc.name, first, last, tc.first, tc.last)
		}
	}
}

func TestInputsCacheKey(t *testing.T) {
	withDomain := model.Inputs{Domain: "stripe.com", Company: "Stripe", PersonName: "Patrick Collison"}
	if got := withDomain.CacheKey(); got != "stripe.com" {
		t.Errorf("CacheKey = %q, want domain", got)
	}

	domainless := model.Inputs{Company: "Stripe", PersonName: "Patrick Collison"}
	if got := domainless.CacheKey(); got != "stripe|patrick collison" {
		t.Errorf("CacheKey = %q", got)
	}
}
