package enrich

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/internal/store"
)

// DefaultConcurrency is the batch worker pool size.
const DefaultConcurrency = 5

// ProgressFunc is called after each record completes, with the number of
// records done so far and the total.
type ProgressFunc func(done, total int)

// Executor drives the budget-guarded router over many records with a
// bounded worker pool. One circuit breaker instance is shared by all
// workers for the whole batch and discarded at batch end.
type Executor struct {
	matrix      *Matrix
	registry    *Registry
	cache       *Cache
	store       store.Store
	concurrency int
	budget      time.Duration
	progress    ProgressFunc
	routerOpts  []RouterOption
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithConcurrency sets the worker pool size.
func WithConcurrency(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithBudget sets the per-record resolution deadline.
func WithBudget(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.budget = d
		}
	}
}

// WithProgress registers a per-completion progress callback.
func WithProgress(fn ProgressFunc) ExecutorOption {
	return func(e *Executor) {
		e.progress = fn
	}
}

// WithStore enables batch run bookkeeping. Store failures are logged and
// swallowed; they never fail the batch.
func WithStore(st store.Store) ExecutorOption {
	return func(e *Executor) {
		e.store = st
	}
}

// WithRouterOptions forwards options to the per-batch router.
func WithRouterOptions(opts ...RouterOption) ExecutorOption {
	return func(e *Executor) {
		e.routerOpts = opts
	}
}

// NewExecutor creates a batch executor over the given routing tables,
// provider registry, and cache.
func NewExecutor(matrix *Matrix, registry *Registry, cache *Cache, opts ...ExecutorOption) *Executor {
	e := &Executor{
		matrix:      matrix,
		registry:    registry,
		cache:       cache,
		concurrency: DefaultConcurrency,
		budget:      DefaultBudget,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run resolves every record and returns results in input order alongside
// the outcome summary. A per-record panic is converted into an error
// outcome at the worker boundary and never aborts sibling workers.
func (e *Executor) Run(ctx context.Context, records []model.Record) ([]model.Result, *model.BatchSummary, error) {
	runID := uuid.New().String()
	startedAt := time.Now()

	breaker := resilience.NewBatchBreaker(
		resilience.WithOnDisable(func(provider string, failures int) {
			zap.L().Warn("provider disabled for remainder of batch",
				zap.String("run_id", runID),
				zap.String("provider", provider),
				zap.Int("consecutive_failures", failures),
			)
		}),
	)
	router := NewRouter(e.matrix, e.registry, e.cache, breaker, e.routerOpts...)

	zap.L().Info("starting batch",
		zap.String("run_id", runID),
		zap.Int("records", len(records)),
		zap.Int("concurrency", e.concurrency),
	)

	if e.store != nil {
		err := e.store.CreateBatchRun(ctx, model.BatchRun{
			ID:        runID,
			Total:     len(records),
			StartedAt: startedAt,
		})
		if err != nil {
			zap.L().Warn("failed to record batch run start", zap.Error(err))
		}
	}

	results := make([]model.Result, len(records))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, rec := range records {
		g.Go(func() error {
			results[i] = *e.resolveSafe(gctx, router, rec)

			n := int(done.Add(1))
			if e.progress != nil {
				e.progress(n, len(records))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	summary := &model.BatchSummary{RunID: runID}
	var totalMs int64
	for i := range results {
		summary.Tally(&results[i])
		totalMs += results[i].DurationMs
	}
	if summary.Total > 0 {
		summary.AvgDurationMs = totalMs / int64(summary.Total)
	}

	if e.store != nil {
		if err := e.store.FinishBatchRun(ctx, *summary); err != nil {
			zap.L().Warn("failed to record batch run completion", zap.Error(err))
		}
	}

	zap.L().Info("batch complete",
		zap.String("run_id", runID),
		zap.Int("total", summary.Total),
		zap.Int("enriched", summary.Enriched),
		zap.Int("verified", summary.Verified),
		zap.Int("no_candidates", summary.NoCandidates),
		zap.Int("errors", summary.Errors),
		zap.Int64("avg_duration_ms", summary.AvgDurationMs),
	)

	return results, summary, nil
}

// resolveSafe runs one budget-guarded resolution, converting a panic into
// an error outcome so one bad record cannot take down the batch.
func (e *Executor) resolveSafe(ctx context.Context, router *Router, rec model.Record) (res *model.Result) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("panic during record resolution",
				zap.String("key", rec.Inputs().CacheKey()),
				zap.Any("panic", r),
			)
			res = &model.Result{
				Action:             Classify(rec.Inputs()),
				Outcome:            model.OutcomeError,
				Source:             model.SourceNone,
				Inputs:             rec.Inputs(),
				ProvidersAttempted: []string{},
			}
		}
	}()

	return ResolveWithBudget(ctx, router, rec, e.budget)
}
