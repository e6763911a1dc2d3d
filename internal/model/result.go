package model

import "time"

// Non-provider sources a Result may carry.
const (
	SourceExisting  = "existing"
	SourceNone      = "none"
	SourceTimeout   = "timeout"
	SourceCancelled = "cancelled"
)

// AttemptResult describes how a single provider attempt ended.
type AttemptResult string

const (
	AttemptSuccess  AttemptResult = "success"
	AttemptNotFound AttemptResult = "not_found"
	AttemptInvalid  AttemptResult = "invalid"
	AttemptError    AttemptResult = "error"
	AttemptSkipped  AttemptResult = "skipped"
)

// ProviderAttempt is one entry in a resolution's audit trail.
type ProviderAttempt struct {
	Provider   string        `json:"provider"`
	Attempted  bool          `json:"attempted"`
	Result     AttemptResult `json:"result"`
	Reason     string        `json:"reason,omitempty"`
	DurationMs int64         `json:"duration_ms,omitempty"`
}

// Result is the sole return type of the resolver and the sole cache
// payload (minus the per-call audit trail).
type Result struct {
	Action             Action            `json:"action"`
	Outcome            Outcome           `json:"outcome"`
	Email              string            `json:"email,omitempty"`
	FirstName          string            `json:"first_name,omitempty"`
	LastName           string            `json:"last_name,omitempty"`
	Title              string            `json:"title,omitempty"`
	Verified           bool              `json:"verified"`
	Source             string            `json:"source"`
	Inputs             Inputs            `json:"inputs"`
	ProvidersAttempted []string          `json:"providers_attempted"`
	ProviderResults    []ProviderAttempt `json:"provider_results,omitempty"`
	DurationMs         int64             `json:"duration_ms"`
}

// BatchRun records one batch execution for the runs history.
type BatchRun struct {
	ID            string     `json:"id"`
	Total         int        `json:"total"`
	Enriched      int        `json:"enriched"`
	Verified      int        `json:"verified"`
	NoCandidates  int        `json:"no_candidates"`
	Errors        int        `json:"errors"`
	AvgDurationMs int64      `json:"avg_duration_ms"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// BatchSummary aggregates per-record outcomes. Counters are derived purely
// from outcome classification, never from a separate success flag.
type BatchSummary struct {
	RunID         string `json:"run_id"`
	Total         int    `json:"total"`
	Enriched      int    `json:"enriched"`
	Verified      int    `json:"verified"`
	NoCandidates  int    `json:"no_candidates"`
	Errors        int    `json:"errors"`
	AvgDurationMs int64  `json:"avg_duration_ms"`
}

// Tally folds one result into the summary.
func (s *BatchSummary) Tally(r *Result) {
	s.Total++
	switch r.Outcome {
	case OutcomeEnriched:
		s.Enriched++
	case OutcomeVerified:
		s.Verified++
	case OutcomeNoCandidates, OutcomeNotFound:
		s.NoCandidates++
	case OutcomeInvalid, OutcomeMissingInput, OutcomeNoProviders:
		// Terminal but not an error: counted only in Total.
	default:
		s.Errors++
	}
}
