package enrich

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sells-group/outreach-cli/internal/model"
)

// panicProvider panics on a designated domain and succeeds otherwise.
type panicProvider struct {
	name string
	bad  string
}

func (p *panicProvider) Name() string     { return p.name }
func (p *panicProvider) Configured() bool { return true }

func (p *panicProvider) FindCompanyContact(_ context.Context, domain string) (*Contact, error) {
	if domain == p.bad {
		panic("malformed response")
	}
	return &Contact{Email: "info@" + domain}, nil
}

func contactMatrix(provider string) *Matrix {
	return testMatrix(
		map[model.Action][]string{model.ActionFindCompanyContact: {provider}},
		map[string][]model.Action{provider: {model.ActionFindCompanyContact}},
	)
}

func TestExecutor_ResultsInInputOrder(t *testing.T) {
	p := &fakeProvider{name: "anymail", configured: true,
		contact: &Contact{Email: "found@example.com"}}
	exec := NewExecutor(contactMatrix("anymail"), NewRegistry(p), nil,
		WithConcurrency(3))

	records := []model.Record{
		{Domain: "a.com"},
		{Email: "direct@b.com"},
		{FullName: "No Company"},
		{Domain: "d.com"},
	}

	results, summary, err := exec.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results", len(results))
	}

	if results[0].Outcome != model.OutcomeEnriched {
		t.Errorf("results[0] = %s", results[0].Outcome)
	}
	if results[1].Source != model.SourceExisting {
		t.Errorf("results[1].Source = %s", results[1].Source)
	}
	if results[2].Outcome != model.OutcomeMissingInput {
		t.Errorf("results[2] = %s", results[2].Outcome)
	}
	if results[3].Outcome != model.OutcomeEnriched {
		t.Errorf("results[3] = %s", results[3].Outcome)
	}

	if summary.Total != 4 || summary.Enriched != 3 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestExecutor_PanicIsolatedToRecord(t *testing.T) {
	p := &panicProvider{name: "anymail", bad: "boom.com"}
	exec := NewExecutor(contactMatrix("anymail"), NewRegistry(p), nil)

	records := []model.Record{
		{Domain: "ok1.com"},
		{Domain: "boom.com"},
		{Domain: "ok2.com"},
	}

	results, summary, err := exec.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if results[0].Outcome != model.OutcomeEnriched || results[2].Outcome != model.OutcomeEnriched {
		t.Error("panic in one record poisoned its siblings")
	}
	if results[1].Outcome != model.OutcomeError {
		t.Errorf("panicked record outcome = %s, want error", results[1].Outcome)
	}
	if summary.Errors != 1 || summary.Enriched != 2 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestExecutor_ConcurrencyBound(t *testing.T) {
	var inFlight, peak atomic.Int64
	var mu sync.Mutex

	// A provider that tracks its own concurrency.
	p := &countingProvider{inFlight: &inFlight, peak: &peak, mu: &mu}
	exec := NewExecutor(contactMatrix("anymail"), NewRegistry(p), nil,
		WithConcurrency(2))

	records := make([]model.Record, 10)
	for i := range records {
		records[i] = model.Record{Domain: "example.com"}
	}

	if _, _, err := exec.Run(context.Background(), records); err != nil {
		t.Fatal(err)
	}

	if got := peak.Load(); got > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", got)
	}
}

type countingProvider struct {
	inFlight *atomic.Int64
	peak     *atomic.Int64
	mu       *sync.Mutex
}

func (c *countingProvider) Name() string     { return "anymail" }
func (c *countingProvider) Configured() bool { return true }

func (c *countingProvider) FindCompanyContact(_ context.Context, domain string) (*Contact, error) {
	n := c.inFlight.Add(1)
	c.mu.Lock()
	if n > c.peak.Load() {
		c.peak.Store(n)
	}
	c.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	c.inFlight.Add(-1)
	return &Contact{Email: "info@" + domain}, nil
}

func TestExecutor_ProgressCallback(t *testing.T) {
	p := &fakeProvider{name: "anymail", configured: true,
		contact: &Contact{Email: "x@y.com"}}

	var calls atomic.Int64
	var lastTotal atomic.Int64
	exec := NewExecutor(contactMatrix("anymail"), NewRegistry(p), nil,
		WithProgress(func(done, total int) {
			calls.Add(1)
			lastTotal.Store(int64(total))
		}),
	)

	records := []model.Record{{Domain: "a.com"}, {Domain: "b.com"}, {Domain: "c.com"}}
	if _, _, err := exec.Run(context.Background(), records); err != nil {
		t.Fatal(err)
	}

	if calls.Load() != 3 {
		t.Errorf("progress calls = %d, want 3", calls.Load())
	}
	if lastTotal.Load() != 3 {
		t.Errorf("total = %d", lastTotal.Load())
	}
}

func TestExecutor_RecordsRunHistory(t *testing.T) {
	fs := newFakeStore()
	p := &fakeProvider{name: "anymail", configured: true,
		contact: &Contact{Email: "x@y.com"}}
	exec := NewExecutor(contactMatrix("anymail"), NewRegistry(p), nil,
		WithStore(fs))

	records := []model.Record{{Domain: "a.com"}, {FullName: "nobody"}}
	_, summary, err := exec.Run(context.Background(), records)
	if err != nil {
		t.Fatal(err)
	}

	if len(fs.runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(fs.runs))
	}
	run := fs.runs[0]
	if run.ID != summary.RunID {
		t.Errorf("run ID mismatch: %s vs %s", run.ID, summary.RunID)
	}
	if run.Enriched != 1 {
		t.Errorf("run.Enriched = %d", run.Enriched)
	}
}

func TestExecutor_BreakerSharedAcrossBatch(t *testing.T) {
	// Every call fails with a classified error; after the threshold the
	// remaining records are skipped as no_providers rather than attempted.
	p := &fakeProvider{name: "anymail", configured: true,
		findErr: classifiedErr("anymail", model.OutcomeAuthError, 401)}
	exec := NewExecutor(contactMatrix("anymail"), NewRegistry(p), nil,
		WithConcurrency(1))

	records := make([]model.Record, 10)
	for i := range records {
		records[i] = model.Record{Domain: "example.com"}
	}

	results, _, err := exec.Run(context.Background(), records)
	if err != nil {
		t.Fatal(err)
	}

	if p.findCalls != 5 {
		t.Errorf("provider called %d times, want exactly the threshold (5)", p.findCalls)
	}

	var noProviders int
	for _, r := range results {
		if r.Outcome == model.OutcomeNoProviders {
			noProviders++
		}
	}
	if noProviders != 5 {
		t.Errorf("no_providers results = %d, want 5", noProviders)
	}
}

func TestBatchSummary_Tally(t *testing.T) {
	var s model.BatchSummary
	outcomes := []model.Outcome{
		model.OutcomeEnriched,
		model.OutcomeVerified,
		model.OutcomeNoCandidates,
		model.OutcomeNotFound,
		model.OutcomeInvalid,
		model.OutcomeMissingInput,
		model.OutcomeNoProviders,
		model.OutcomeRateLimited,
		model.OutcomeError,
	}
	for _, o := range outcomes {
		s.Tally(&model.Result{Outcome: o})
	}

	if s.Total != 9 {
		t.Errorf("Total = %d", s.Total)
	}
	if s.Enriched != 1 || s.Verified != 1 {
		t.Errorf("Enriched/Verified = %d/%d", s.Enriched, s.Verified)
	}
	if s.NoCandidates != 2 {
		t.Errorf("NoCandidates = %d", s.NoCandidates)
	}
	if s.Errors != 2 {
		t.Errorf("Errors = %d, want rate_limited and error only", s.Errors)
	}
}
