package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"dexterm/internal/cache"
	"dexterm/internal/domain"
)

const (
	// fullCatalogLimit covers the whole catalog in one request when a
	// forced refresh bypasses pagination.
	fullCatalogLimit = 2000

	// listKey keys the in-flight table for list fetches.
	listKey = "catalog"
)

// call is one in-flight network fetch that late arrivals can attach to.
type call struct {
	done  chan struct{}
	value interface{}
	err   error
}

// CatalogService decides cache-vs-network for list and detail fetches and
// triggers best-effort persistence of network results.
//
// Concurrent requests for the same resource are coalesced: the first caller
// performs the network fetch, later callers wait for its result instead of
// issuing a duplicate request.
type CatalogService struct {
	client    domain.Client
	cache     *cache.Gateway
	logger    *slog.Logger
	fullLimit int
	ttl       time.Duration // 0 disables expiry

	inflightMu sync.Mutex
	inflight   map[string]*call
}

// Options tune optional coordinator policies.
type Options struct {
	// FullLimit is the page size for ClearAndRefetch. Zero means the
	// default full-catalog limit.
	FullLimit int

	// TTL treats cached records older than this as absent on the read
	// path. Zero (the default) disables expiry; an explicit refresh is
	// then the only invalidation trigger.
	TTL time.Duration
}

// NewCatalogService creates the coordinator. The gateway and client are
// injected; the service holds no entity state of its own.
func NewCatalogService(client domain.Client, gw *cache.Gateway, logger *slog.Logger, opts Options) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	fullLimit := opts.FullLimit
	if fullLimit <= 0 {
		fullLimit = fullCatalogLimit
	}

	return &CatalogService{
		client:    client,
		cache:     gw,
		logger:    logger,
		fullLimit: fullLimit,
		ttl:       opts.TTL,
		inflight:  make(map[string]*call),
	}
}

// fresh reports whether a cached timestamp is still usable under the TTL
// policy. With ttl disabled every cached record is fresh.
func (s *CatalogService) fresh(cachedAt time.Time) bool {
	return s.ttl <= 0 || time.Since(cachedAt) <= s.ttl
}

// coalesce runs fetch once per key. The first caller performs the work;
// concurrent callers for the same key receive the same result.
func (s *CatalogService) coalesce(ctx context.Context, key string, fetch func() (interface{}, error)) (interface{}, error) {
	s.inflightMu.Lock()
	if existing, ok := s.inflight[key]; ok {
		s.inflightMu.Unlock()
		s.logger.Debug("attaching to in-flight fetch", "key", key)
		select {
		case <-existing.done:
			return existing.value, existing.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c := &call{done: make(chan struct{})}
	s.inflight[key] = c
	s.inflightMu.Unlock()

	c.value, c.err = fetch()

	s.inflightMu.Lock()
	delete(s.inflight, key)
	s.inflightMu.Unlock()
	close(c.done)

	return c.value, c.err
}

// FetchList returns the catalog snapshot, serving from cache when any
// snapshot is present. A cache hit makes no network call; a miss fetches
// the requested page, persists it in the background, and returns it
// without waiting for the write.
func (s *CatalogService) FetchList(ctx context.Context, offset, limit int) (*domain.Catalog, error) {
	if cached, ok := s.cache.RetrieveCatalog(); ok && s.fresh(cached.CachedAt) {
		s.logger.Debug("catalog cache hit", "items", len(cached.Items))
		return cached, nil
	}

	value, err := s.coalesce(ctx, listKey, func() (interface{}, error) {
		snapshot, err := s.client.FetchCatalog(ctx, offset, limit)
		if err != nil {
			s.logger.Error("catalog fetch failed", "offset", offset, "limit", limit, "error", err)
			return nil, err
		}

		// Fire-and-forget: the caller gets its data whether or not
		// this write ever lands.
		s.cache.PersistCatalog(snapshot, nil)
		s.logger.Info("catalog fetched", "count", snapshot.Count, "items", len(snapshot.Items))
		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*domain.Catalog), nil
}

// FetchMore grows the cached snapshot by one page when the server
// advertises more results. The grown snapshot replaces the previous one
// wholesale; pages are never merged into an existing record. Without a
// cached snapshot this degrades to a plain first-page fetch.
func (s *CatalogService) FetchMore(ctx context.Context, limit int) (*domain.Catalog, error) {
	current, ok := s.cache.RetrieveCatalog()
	if !ok {
		return s.FetchList(ctx, 0, limit)
	}
	if !current.HasMore() {
		return current, nil
	}

	value, err := s.coalesce(ctx, listKey, func() (interface{}, error) {
		offset := len(current.Items)
		page, err := s.client.FetchCatalog(ctx, offset, limit)
		if err != nil {
			s.logger.Error("catalog page fetch failed", "offset", offset, "limit", limit, "error", err)
			return nil, err
		}

		grown := &domain.Catalog{
			Count:    page.Count,
			Next:     page.Next,
			Previous: current.Previous,
			Items:    append(append([]domain.PokemonRef{}, current.Items...), page.Items...),
			CachedAt: page.CachedAt,
		}
		s.cache.PersistCatalog(grown, nil)
		s.logger.Info("catalog grown", "items", len(grown.Items), "count", grown.Count)
		return grown, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*domain.Catalog), nil
}

// FetchDetail returns the detail record behind a resource URL, serving
// from cache when present. A malformed URL fails before any network or
// cache access.
func (s *CatalogService) FetchDetail(ctx context.Context, resourceURL string) (*domain.Pokemon, error) {
	parsed, err := url.Parse(resourceURL)
	if err != nil || !parsed.IsAbs() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidURL, resourceURL)
	}

	if cached, ok := s.cache.RetrieveDetail(resourceURL); ok && s.fresh(cached.CachedAt) {
		s.logger.Debug("detail cache hit", "url", resourceURL)
		return cached, nil
	}

	value, err := s.coalesce(ctx, resourceURL, func() (interface{}, error) {
		detail, err := s.client.FetchPokemon(ctx, resourceURL)
		if err != nil {
			s.logger.Error("detail fetch failed", "url", resourceURL, "error", err)
			return nil, err
		}

		s.cache.PersistDetail(detail, resourceURL, nil)
		s.logger.Debug("detail fetched", "url", resourceURL, "name", detail.Name)
		return detail, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*domain.Pokemon), nil
}

// ClearAndRefetch wipes the cache, then unconditionally fetches the full
// catalog from the network and persists it. This is the only path that
// forces a network round-trip while a cached snapshot exists.
func (s *CatalogService) ClearAndRefetch(ctx context.Context) (*domain.Catalog, error) {
	cleared := make(chan error, 1)
	s.cache.Clear(func(err error) { cleared <- err })

	select {
	case err := <-cleared:
		if err != nil {
			// Best-effort like every cache write: the refetch still runs.
			s.logger.Warn("cache clear failed", "error", err)
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	snapshot, err := s.client.FetchCatalog(ctx, 0, s.fullLimit)
	if err != nil {
		s.logger.Error("refetch failed", "error", err)
		return nil, err
	}

	s.cache.PersistCatalog(snapshot, nil)
	s.logger.Info("catalog refreshed", "count", snapshot.Count, "items", len(snapshot.Items))
	return snapshot, nil
}
