// Package store persists the contact cache and batch run history behind a
// driver-agnostic interface.
package store

import (
	"context"
	"time"

	"github.com/sells-group/outreach-cli/internal/model"
)

// ContactEntry is one cached resolution, keyed by the stable record key.
type ContactEntry struct {
	Key        string    `json:"key"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	Title      string    `json:"title,omitempty"`
	Source     string    `json:"source"`
	EnrichedAt time.Time `json:"enriched_at"`
}

// ContactStats summarizes the cache table for the cache stats command.
type ContactStats struct {
	Live    int `json:"live"`
	Expired int `json:"expired"`
}

// RunFilter specifies criteria for listing batch runs.
type RunFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store defines the persistence interface for the enrichment engine.
type Store interface {
	// Contact cache. GetContact returns nil (not an error) when the key is
	// absent or the entry is older than ttlDays.
	GetContact(ctx context.Context, key string, ttlDays int) (*ContactEntry, error)
	PutContact(ctx context.Context, entry ContactEntry) error
	DeleteExpiredContacts(ctx context.Context, ttlDays int) (int, error)
	ContactStats(ctx context.Context, ttlDays int) (*ContactStats, error)

	// Batch run history.
	CreateBatchRun(ctx context.Context, run model.BatchRun) error
	FinishBatchRun(ctx context.Context, summary model.BatchSummary) error
	ListBatchRuns(ctx context.Context, filter RunFilter) ([]model.BatchRun, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
