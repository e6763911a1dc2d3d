package enrich

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// DefaultBudget is the per-record resolution deadline.
const DefaultBudget = 30 * time.Second

// ResolveWithBudget races one record's resolution against the per-record
// budget. The context handed to the router is cancelled when the budget
// fires, so the abandoned provider call is actually torn down rather than
// left running in the background.
func ResolveWithBudget(ctx context.Context, router *Router, rec model.Record, budget time.Duration) *model.Result {
	if budget <= 0 {
		budget = DefaultBudget
	}

	start := time.Now()
	rctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	done := make(chan *model.Result, 1)
	go func() {
		// The recover lives on this goroutine: a panic here would
		// otherwise bypass the worker-level guard and kill the process.
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("panic during record resolution",
					zap.String("key", rec.Inputs().CacheKey()),
					zap.Any("panic", r),
				)
				done <- terminalResult(rec, model.SourceNone, start)
			}
		}()
		done <- router.Resolve(rctx, rec)
	}()

	select {
	case res := <-done:
		return res
	case <-rctx.Done():
		// Parent cancellation (e.g. SIGINT mid-batch) is not a blown
		// budget; the run history should not report it as one.
		if ctx.Err() != nil {
			zap.L().Debug("record resolution cancelled",
				zap.String("key", rec.Inputs().CacheKey()),
			)
			return terminalResult(rec, model.SourceCancelled, start)
		}
		zap.L().Warn("record budget exceeded",
			zap.String("key", rec.Inputs().CacheKey()),
			zap.Duration("budget", budget),
		)
		return terminalResult(rec, model.SourceTimeout, start)
	}
}

// terminalResult builds the error-outcome result used when a record never
// produced one of its own (budget expiry, cancellation, panic).
func terminalResult(rec model.Record, source string, start time.Time) *model.Result {
	return &model.Result{
		Action:             Classify(rec.Inputs()),
		Outcome:            model.OutcomeError,
		Source:             source,
		Inputs:             rec.Inputs(),
		ProvidersAttempted: []string{},
		DurationMs:         time.Since(start).Milliseconds(),
	}
}
