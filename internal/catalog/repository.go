package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces a fresh catalog.
type LoadFunc func(ctx context.Context) ([]Entry, error)

// Repository caches the last loaded catalog. A TTL of zero keeps the
// catalog until Invalidate is called.
type Repository struct {
	mu       sync.RWMutex
	load     LoadFunc
	ttl      time.Duration
	entries  []Entry
	loadedAt time.Time
	now      func() time.Time
	group    singleflight.Group
}

// NewRepository creates a repository backed by load.
func NewRepository(load LoadFunc, ttl time.Duration) *Repository {
	return &Repository{
		load: load,
		ttl:  ttl,
		now:  time.Now,
	}
}

// NewFetcherRepository creates a repository that loads through f.
func NewFetcherRepository(f *Fetcher, ttl time.Duration) *Repository {
	return NewRepository(func(ctx context.Context) ([]Entry, error) {
		result := f.FetchCatalog(ctx)
		if result.Error != nil {
			return nil, result.Error
		}
		return result.Entries, nil
	}, ttl)
}

// Entries returns a copy of the catalog, loading it first if the cache is
// empty or stale. Concurrent callers share a single load.
func (r *Repository) Entries(ctx context.Context) ([]Entry, error) {
	r.mu.RLock()
	if !r.staleLocked() {
		entries := cloneEntries(r.entries)
		r.mu.RUnlock()
		return entries, nil
	}
	r.mu.RUnlock()

	v, err, _ := r.group.Do("catalog", func() (interface{}, error) {
		entries, err := r.load(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.entries = entries
		r.loadedAt = r.now()
		r.mu.Unlock()
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneEntries(v.([]Entry)), nil
}

// NeedsRefresh reports whether the next Entries call will load.
func (r *Repository) NeedsRefresh() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.staleLocked()
}

func (r *Repository) staleLocked() bool {
	if r.loadedAt.IsZero() {
		return true
	}
	return r.ttl > 0 && r.now().Sub(r.loadedAt) > r.ttl
}

// Invalidate forces the next Entries call to reload.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	r.loadedAt = time.Time{}
	r.mu.Unlock()
}

// LoadedAt returns when the cached catalog was loaded, or the zero time.
func (r *Repository) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}

func cloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
