package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

// DefaultCacheTTLDays is how long a cached resolution stays fresh. Entries
// older than this read as misses, not as stale hits.
const DefaultCacheTTLDays = 90

// Cache wraps the store's contact table. Read and write errors are
// swallowed and logged at debug: a cache outage degrades to a miss and
// must never fail a record.
type Cache struct {
	store   store.Store
	ttlDays int
}

// NewCache creates a cache over the given store. A nil store disables the
// cache entirely.
func NewCache(st store.Store, ttlDays int) *Cache {
	if ttlDays <= 0 {
		ttlDays = DefaultCacheTTLDays
	}
	return &Cache{store: st, ttlDays: ttlDays}
}

// Get returns a prior resolution for the key, or nil on miss, staleness,
// or storage error. Hits reconstruct a full result with an empty attempt
// trail; cache hits never re-attempt providers.
func (c *Cache) Get(ctx context.Context, key string, action model.Action) *model.Result {
	if c == nil || c.store == nil {
		return nil
	}

	entry, err := c.store.GetContact(ctx, key, c.ttlDays)
	if err != nil {
		zap.L().Debug("cache read failed, treating as miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil
	}
	if entry == nil {
		zap.L().Debug("cache miss", zap.String("key", key))
		return nil
	}

	zap.L().Debug("cache hit",
		zap.String("key", key),
		zap.String("source", entry.Source),
	)
	return &model.Result{
		Action:             action,
		Outcome:            model.OutcomeEnriched,
		Email:              entry.Email,
		FirstName:          entry.FirstName,
		LastName:           entry.LastName,
		Title:              entry.Title,
		Source:             entry.Source,
		ProvidersAttempted: []string{},
	}
}

// Put persists a resolution keyed by the stable record key. It is a no-op
// unless the outcome produced an email and the source is a real provider;
// pre-supplied (existing) and synthetic (none, timeout, cancelled) sources
// are never cached. Write failures are swallowed.
func (c *Cache) Put(ctx context.Context, key string, result *model.Result) {
	if c == nil || c.store == nil || result == nil {
		return
	}
	if !result.Outcome.Success() || result.Email == "" {
		return
	}
	switch result.Source {
	case model.SourceExisting, model.SourceNone, model.SourceTimeout, model.SourceCancelled, "":
		return
	}

	err := c.store.PutContact(ctx, store.ContactEntry{
		Key:       key,
		Email:     result.Email,
		FirstName: result.FirstName,
		LastName:  result.LastName,
		Title:     result.Title,
		Source:    result.Source,
	})
	if err != nil {
		zap.L().Debug("cache write failed, skipping",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
