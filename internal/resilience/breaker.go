// Package resilience provides failure classification and per-batch circuit
// breaking for external lookup services.
package resilience

import "sync"

// DefaultFailureThreshold is the number of consecutive classified failures
// after which a provider is disabled for the rest of the batch.
const DefaultFailureThreshold = 5

// BatchBreaker tracks consecutive classified failures per provider within a
// single batch run. Disabling is one-way: there is no cool-down or half-open
// probe, because the breaker lives only as long as the batch. One instance
// is shared by every worker in the batch and discarded at batch end.
type BatchBreaker struct {
	mu        sync.Mutex
	threshold int
	failures  map[string]int
	disabled  map[string]bool

	// onDisable is called once per provider, outside the hot path of the
	// eligibility check, when the threshold is crossed.
	onDisable func(provider string, failures int)
}

// BreakerOption configures a BatchBreaker.
type BreakerOption func(*BatchBreaker)

// WithFailureThreshold overrides the default consecutive-failure threshold.
func WithFailureThreshold(n int) BreakerOption {
	return func(b *BatchBreaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithOnDisable registers a callback invoked when a provider is disabled.
func WithOnDisable(fn func(provider string, failures int)) BreakerOption {
	return func(b *BatchBreaker) {
		b.onDisable = fn
	}
}

// NewBatchBreaker creates a breaker for one batch run.
func NewBatchBreaker(opts ...BreakerOption) *BatchBreaker {
	b := &BatchBreaker{
		threshold: DefaultFailureThreshold,
		failures:  make(map[string]int),
		disabled:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RecordFailure increments the provider's consecutive-failure counter and
// disables it once the threshold is reached. Only classified errors should
// be recorded here; a clean not-found is a successful API call.
func (b *BatchBreaker) RecordFailure(provider string) {
	b.mu.Lock()
	b.failures[provider]++
	n := b.failures[provider]
	trip := n >= b.threshold && !b.disabled[provider]
	if trip {
		b.disabled[provider] = true
	}
	cb := b.onDisable
	b.mu.Unlock()

	if trip && cb != nil {
		cb(provider, n)
	}
}

// RecordSuccess resets the provider's consecutive-failure counter. It never
// clears an existing disabled flag.
func (b *BatchBreaker) RecordSuccess(provider string) {
	b.mu.Lock()
	b.failures[provider] = 0
	b.mu.Unlock()
}

// IsDisabled reports whether the provider has been disabled for this batch.
func (b *BatchBreaker) IsDisabled(provider string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled[provider]
}

// Failures returns the provider's current consecutive-failure count.
func (b *BatchBreaker) Failures(provider string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures[provider]
}

// Disabled returns a snapshot of all disabled providers.
func (b *BatchBreaker) Disabled() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for p, d := range b.disabled {
		if d {
			out = append(out, p)
		}
	}
	return out
}
