package cache

import (
	"fmt"
	"log/slog"

	"dexterm/internal/domain"
)

// writeJob is one queued mutation. done (optional) runs after the attempt
// completes, whether or not it succeeded.
type writeJob struct {
	name  string
	apply func() error
	done  func(error)
}

// Gateway wraps the persistent store with domain-specific reads and
// best-effort asynchronous writes.
//
// All mutations are funneled through a single writer goroutine, so no two
// transactions touch the store concurrently. Reads go straight to the store
// and may miss a write that is still queued; that window is accepted rather
// than blocking the read path.
type Gateway struct {
	store  domain.Store
	logger *slog.Logger
	jobs   chan writeJob
	closed chan struct{}
}

// NewGateway creates a gateway and starts its writer goroutine.
func NewGateway(store domain.Store, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gateway{
		store:  store,
		logger: logger,
		jobs:   make(chan writeJob, 64),
		closed: make(chan struct{}),
	}
	go g.writeLoop()
	return g
}

func (g *Gateway) writeLoop() {
	defer close(g.closed)
	for job := range g.jobs {
		err := job.apply()
		if err != nil {
			// Cache writes are best-effort: log and move on. The fetch
			// that triggered this write already delivered its result.
			g.logger.Error("cache write failed", "op", job.name,
				"error", fmt.Errorf("%w: %v", domain.ErrPersistFailed, err))
		}
		if job.done != nil {
			job.done(err)
		}
	}
}

func (g *Gateway) enqueue(job writeJob) {
	g.jobs <- job
}

// RetrieveCatalog returns the cached snapshot if one exists.
func (g *Gateway) RetrieveCatalog() (*domain.Catalog, bool) {
	return g.store.GetCatalog()
}

// RetrieveDetail returns the cached detail record for a resource URL.
// A URL with no numeric identifier is a cache miss, not an error.
func (g *Gateway) RetrieveDetail(resourceURL string) (*domain.Pokemon, bool) {
	id, err := domain.ExtractID(resourceURL)
	if err != nil {
		g.logger.Debug("no cache key for resource", "url", resourceURL)
		return nil, false
	}
	return g.store.GetDetail(id)
}

// PersistCatalog queues a snapshot replacement. done (nil allowed) runs
// after the write attempt regardless of outcome.
func (g *Gateway) PersistCatalog(c *domain.Catalog, done func(error)) {
	g.enqueue(writeJob{
		name: "replace catalog",
		apply: func() error {
			return g.store.ReplaceCatalog(c)
		},
		done: done,
	})
}

// PersistDetail queues a detail upsert keyed by the resource URL's id.
// A URL with no id drops the write (logged), then still reports done.
func (g *Gateway) PersistDetail(p *domain.Pokemon, resourceURL string, done func(error)) {
	id, err := domain.ExtractID(resourceURL)
	if err != nil {
		g.logger.Warn("dropping detail write, no cache key", "url", resourceURL)
		if done != nil {
			done(err)
		}
		return
	}

	record := *p
	record.ID = id

	g.enqueue(writeJob{
		name: "upsert detail",
		apply: func() error {
			return g.store.PutDetail(&record)
		},
		done: done,
	})
}

// Clear queues removal of the snapshot and all detail records.
func (g *Gateway) Clear(done func(error)) {
	g.enqueue(writeJob{
		name:  "clear cache",
		apply: g.store.ClearAll,
		done:  done,
	})
}

// Flush blocks until every previously queued write has been applied.
func (g *Gateway) Flush() {
	settled := make(chan struct{})
	g.enqueue(writeJob{
		name:  "flush",
		apply: func() error { return nil },
		done:  func(error) { close(settled) },
	})
	<-settled
}

// Close drains the queue and stops the writer. No writes may be issued
// after Close.
func (g *Gateway) Close() {
	close(g.jobs)
	<-g.closed
}
