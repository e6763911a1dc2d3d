package model

// Outcome is the lossless terminal status of a resolution attempt. It is
// never collapsed into a boolean anywhere in the pipeline, including cache
// reconstruction.
type Outcome string

const (
	OutcomeEnriched         Outcome = "enriched"
	OutcomeVerified         Outcome = "verified"
	OutcomeInvalid          Outcome = "invalid"
	OutcomeNoCandidates     Outcome = "no_candidates"
	OutcomeNotFound         Outcome = "not_found"
	OutcomeMissingInput     Outcome = "missing_input"
	OutcomeNoProviders      Outcome = "no_providers"
	OutcomeAuthError        Outcome = "auth_error"
	OutcomeCreditsExhausted Outcome = "credits_exhausted"
	OutcomeRateLimited      Outcome = "rate_limited"
	OutcomeError            Outcome = "error"
)

// Success reports whether the outcome produced or confirmed an email.
func (o Outcome) Success() bool {
	return o == OutcomeEnriched || o == OutcomeVerified
}
