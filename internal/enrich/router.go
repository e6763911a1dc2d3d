package enrich

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
)

// Router resolves one record at a time: classify, check the cache, then
// waterfall through capable, configured, non-disabled providers in
// priority order. Provider calls within a record are strictly sequential;
// parallel calls would risk double-charging paid lookups.
type Router struct {
	matrix   *Matrix
	registry *Registry
	cache    *Cache
	breaker  *resilience.BatchBreaker

	// verifyExisting routes pre-supplied emails through the verify
	// waterfall instead of the trusted pass-through.
	verifyExisting bool
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithVerifyExisting makes the router verify pre-supplied emails instead
// of trusting them unconditionally.
func WithVerifyExisting(verify bool) RouterOption {
	return func(r *Router) {
		r.verifyExisting = verify
	}
}

// NewRouter creates a router sharing the given breaker. The breaker is
// batch-scoped: callers create one per batch and one per ad-hoc request.
func NewRouter(matrix *Matrix, registry *Registry, cache *Cache, breaker *resilience.BatchBreaker, opts ...RouterOption) *Router {
	r := &Router{
		matrix:   matrix,
		registry: registry,
		cache:    cache,
		breaker:  breaker,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the full resolution state machine for one record. It always
// returns a fully-populated result with a meaningful outcome; errors are
// classified and recovered internally, never surfaced to the caller.
func (r *Router) Resolve(ctx context.Context, rec model.Record) *model.Result {
	start := time.Now()
	in := rec.Inputs()

	res := &model.Result{
		Outcome:            model.OutcomeError,
		Source:             model.SourceNone,
		Inputs:             in,
		ProvidersAttempted: []string{},
	}
	defer func() {
		res.DurationMs = time.Since(start).Milliseconds()
	}()

	// A caller-supplied email is trusted unconditionally unless the caller
	// asked for verification: no classification, no cache, no providers.
	if in.Email != "" && !r.verifyExisting {
		res.Action = model.ActionVerify
		res.Outcome = model.OutcomeEnriched
		res.Email = in.Email
		res.Source = model.SourceExisting
		res.Verified = true
		first, last := in.NameParts()
		res.FirstName, res.LastName = first, last
		res.Title = rec.Title
		return res
	}

	action := Classify(in)
	res.Action = action
	zap.L().Debug("classified record",
		zap.String("action", string(action)),
		zap.String("domain", in.Domain),
		zap.String("person", in.PersonName),
	)

	if action == model.ActionCannotRoute {
		res.Outcome = model.OutcomeMissingInput
		return res
	}

	// The cache is consulted only for records without a pre-supplied
	// email; the verify path re-checks the address the caller gave us.
	if in.Email == "" {
		if hit := r.cache.Get(ctx, in.CacheKey(), action); hit != nil {
			hit.Inputs = in
			hit.DurationMs = time.Since(start).Milliseconds()
			return hit
		}
	}

	eligible, skipped := r.eligibleProviders(action)
	res.ProviderResults = append(res.ProviderResults, skipped...)
	if len(eligible) == 0 {
		res.Outcome = model.OutcomeNoProviders
		return res
	}

	if action == model.ActionVerify {
		r.verifyWaterfall(ctx, in, eligible, res)
		return res
	}

	r.findWaterfall(ctx, in, rec, action, eligible, res)
	return res
}

// eligibleProviders filters the priority order down to providers that are
// configured, declared capable, backed by the matching interface, and not
// circuit-disabled. Disabled providers are recorded as skipped in the
// audit trail but never attempted.
func (r *Router) eligibleProviders(action model.Action) ([]Provider, []model.ProviderAttempt) {
	var eligible []Provider
	var skipped []model.ProviderAttempt

	for _, name := range r.matrix.Order(action) {
		p := r.registry.Get(name)
		if p == nil || !p.Configured() {
			continue
		}
		if !r.matrix.Capable(name, action) || !Supports(p, action) {
			continue
		}
		if r.breaker.IsDisabled(name) {
			skipped = append(skipped, model.ProviderAttempt{
				Provider: name,
				Result:   model.AttemptSkipped,
				Reason:   "circuit disabled",
			})
			continue
		}
		eligible = append(eligible, p)
	}
	return eligible, skipped
}

// verifyWaterfall checks the pre-supplied email against each verifier.
// VERIFY is terminal: it never falls through to the find/search providers.
// Exhaustion without a positive verdict yields invalid, with the original
// email still returned unverified.
func (r *Router) verifyWaterfall(ctx context.Context, in model.Inputs, providers []Provider, res *model.Result) {
	res.Email = in.Email

	for _, p := range providers {
		v := p.(Verifier)
		attemptStart := time.Now()
		valid, err := v.Verify(ctx, in.Email)
		r.record(res, p.Name(), attemptStart, err)

		if err != nil {
			continue
		}
		r.breaker.RecordSuccess(p.Name())

		if valid {
			last := &res.ProviderResults[len(res.ProviderResults)-1]
			last.Result = model.AttemptSuccess
			res.Outcome = model.OutcomeVerified
			res.Verified = true
			res.Source = p.Name()
			return
		}
		last := &res.ProviderResults[len(res.ProviderResults)-1]
		last.Result = model.AttemptInvalid
	}

	res.Outcome = model.OutcomeInvalid
}

// findWaterfall tries each capable provider until one yields an email.
// Classified errors advance the waterfall; they surface as the terminal
// outcome only when every attempt errored.
func (r *Router) findWaterfall(ctx context.Context, in model.Inputs, rec model.Record, action model.Action, providers []Provider, res *model.Result) {
	sawNotFound := false
	lastErrOutcome := model.OutcomeError

	for _, p := range providers {
		attemptStart := time.Now()
		contact, err := r.call(ctx, p, action, in)
		r.record(res, p.Name(), attemptStart, err)

		if err != nil {
			lastErrOutcome = resilience.OutcomeOf(err)
			continue
		}
		r.breaker.RecordSuccess(p.Name())

		if contact == nil {
			sawNotFound = true
			last := &res.ProviderResults[len(res.ProviderResults)-1]
			last.Result = model.AttemptNotFound
			continue
		}

		last := &res.ProviderResults[len(res.ProviderResults)-1]
		last.Result = model.AttemptSuccess

		res.Outcome = model.OutcomeEnriched
		res.Source = p.Name()
		res.Email = contact.Email
		mergeContact(res, contact, in, rec)

		r.cache.Put(ctx, in.CacheKey(), res)
		return
	}

	attempted := len(res.ProvidersAttempted)
	if sawNotFound || attempted == 0 {
		res.Outcome = model.OutcomeNoCandidates
		return
	}
	// Every attempted provider errored; the last classification stands.
	res.Outcome = lastErrOutcome
}

// call dispatches the action to the provider's capability method.
func (r *Router) call(ctx context.Context, p Provider, action model.Action, in model.Inputs) (*Contact, error) {
	switch action {
	case model.ActionFindPerson:
		return p.(PersonFinder).FindPerson(ctx, in.Domain, in.PersonName)
	case model.ActionFindCompanyContact:
		return p.(ContactFinder).FindCompanyContact(ctx, in.Domain)
	case model.ActionSearchPerson:
		return p.(PersonSearcher).SearchPerson(ctx, in.Company, in.PersonName)
	case model.ActionSearchCompany:
		return p.(CompanySearcher).SearchCompany(ctx, in.Company)
	default:
		return nil, resilience.NewProviderError(p.Name(), model.OutcomeError, 0, nil)
	}
}

// record appends the provider to the attempt trail. On error it also feeds
// the breaker; clean not-founds and successes are recorded by the caller
// after inspecting the value.
func (r *Router) record(res *model.Result, provider string, attemptStart time.Time, err error) {
	attempt := model.ProviderAttempt{
		Provider:   provider,
		Attempted:  true,
		DurationMs: time.Since(attemptStart).Milliseconds(),
	}
	res.ProvidersAttempted = append(res.ProvidersAttempted, provider)

	if err != nil {
		attempt.Result = model.AttemptError
		attempt.Reason = err.Error()
		r.breaker.RecordFailure(provider)
		zap.L().Debug("provider attempt failed, trying next",
			zap.String("provider", provider),
			zap.Int64("duration_ms", attempt.DurationMs),
			zap.Error(err),
		)
	} else {
		zap.L().Debug("provider attempt completed",
			zap.String("provider", provider),
			zap.Int64("duration_ms", attempt.DurationMs),
		)
	}

	res.ProviderResults = append(res.ProviderResults, attempt)
}

// mergeContact overlays provider-returned person fields onto the original
// inputs, preferring the provider's values when present.
func mergeContact(res *model.Result, contact *Contact, in model.Inputs, rec model.Record) {
	first, last := in.NameParts()
	res.FirstName = firstNonEmpty(contact.FirstName, first)
	res.LastName = firstNonEmpty(contact.LastName, last)
	res.Title = firstNonEmpty(contact.Title, rec.Title)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
