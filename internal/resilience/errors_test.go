package resilience

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sells-group/outreach-cli/internal/model"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		code int
		want model.Outcome
	}{
		{401, model.OutcomeAuthError},
		{403, model.OutcomeAuthError},
		{402, model.OutcomeCreditsExhausted},
		{422, model.OutcomeCreditsExhausted},
		{429, model.OutcomeRateLimited},
		{404, model.OutcomeNotFound},
		{500, model.OutcomeError},
		{503, model.OutcomeError},
		{400, model.OutcomeError},
	}

	for _, tc := range cases {
		if got := ClassifyStatus(tc.code); got != tc.want {
			t.Errorf("ClassifyStatus(%d) = %s, want %s", tc.code, got, tc.want)
		}
	}
}

func TestClassify_PreservesExistingClassification(t *testing.T) {
	orig := NewProviderError("hunter", model.OutcomeRateLimited, 429, errors.New("slow down"))
	wrapped := fmt.Errorf("call failed: %w", orig)

	got := Classify("hunter", 500, wrapped)
	if got.Outcome != model.OutcomeRateLimited {
		t.Errorf("reclassified an already-classified error: %s", got.Outcome)
	}
}

func TestOutcomeOf(t *testing.T) {
	pe := NewProviderError("apollo", model.OutcomeAuthError, 401, errors.New("bad key"))
	if got := OutcomeOf(fmt.Errorf("wrap: %w", pe)); got != model.OutcomeAuthError {
		t.Errorf("OutcomeOf = %s, want auth_error", got)
	}
	if got := OutcomeOf(errors.New("mystery")); got != model.OutcomeError {
		t.Errorf("OutcomeOf(unclassified) = %s, want error", got)
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	pe := NewProviderError("anymail", model.OutcomeError, 0, inner)
	if !errors.Is(pe, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}
