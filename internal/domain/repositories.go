package domain

import "context"

// Client fetches catalog and detail payloads from the remote API.
type Client interface {
	FetchCatalog(ctx context.Context, offset, limit int) (*Catalog, error)
	FetchPokemon(ctx context.Context, resourceURL string) (*Pokemon, error)
}

// Store persists the catalog snapshot and detail records.
//
// The store itself does not serialize callers; all writes are expected to
// arrive through a single writer (see the cache gateway).
type Store interface {
	// ReplaceCatalog atomically replaces any existing snapshot.
	// A failure leaves the previous snapshot intact.
	ReplaceCatalog(c *Catalog) error
	GetCatalog() (*Catalog, bool)

	// PutDetail inserts or overwrites by primary key.
	PutDetail(p *Pokemon) error
	GetDetail(id int) (*Pokemon, bool)

	// ClearAll removes the snapshot and all detail records. Idempotent.
	ClearAll() error

	Close() error
}
