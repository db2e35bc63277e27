package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dexterm/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketMeta    = []byte("meta")
	bucketCatalog = []byte("catalog")
	bucketDetails = []byte("details")
)

var (
	keySnapshot      = []byte("snapshot")
	keySchemaVersion = []byte("schema_version")
)

// schemaVersion is bumped when the persisted shapes change. A mismatch at
// open wipes the cache and recreates it; the upstream data is immutable, so
// no migration path is needed.
const schemaVersion = 1

// PokedexStore implements domain.Store using BoltDB. Two collections: a
// single catalog snapshot row and detail records keyed by numeric id.
type PokedexStore struct {
	db *bolt.DB
}

// Open opens (or creates) the database file under dir.
func Open(dir string) (*PokedexStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "dexterm.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketMeta, bucketCatalog, bucketDetails} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return checkSchema(tx)
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &PokedexStore{db: db}, nil
}

// checkSchema wipes all cached data when the stored schema version does not
// match the current one, then records the current version.
func checkSchema(tx *bolt.Tx) error {
	meta := tx.Bucket(bucketMeta)
	current := fmt.Sprintf("%d", schemaVersion)

	if stored := meta.Get(keySchemaVersion); stored != nil && string(stored) == current {
		return nil
	}

	for _, bucket := range [][]byte{bucketCatalog, bucketDetails} {
		if err := wipeBucket(tx.Bucket(bucket)); err != nil {
			return err
		}
	}
	return meta.Put(keySchemaVersion, []byte(current))
}

func wipeBucket(b *bolt.Bucket) error {
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func (s *PokedexStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// detailKey zero-pads ids so cursor order matches numeric order.
func detailKey(id int) []byte {
	return []byte(fmt.Sprintf("%08d", id))
}

// ReplaceCatalog clears any existing snapshot and writes the new one in a
// single transaction. Either the whole replacement commits or none of it
// does, so a failure leaves the previous snapshot intact.
func (s *PokedexStore) ReplaceCatalog(c *domain.Catalog) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCatalog)
		if err := wipeBucket(b); err != nil {
			return err
		}
		return b.Put(keySnapshot, data)
	})
}

// GetCatalog returns the single snapshot if present. A corrupt value is
// reported as absent, letting callers fall through to the network.
func (s *PokedexStore) GetCatalog() (*domain.Catalog, bool) {
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketCatalog).Get(keySnapshot); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return nil, false
	}

	var c domain.Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, false
	}
	return &c, true
}

// PutDetail inserts or overwrites the record for its id.
func (s *PokedexStore) PutDetail(p *domain.Pokemon) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDetails).Put(detailKey(p.ID), data)
	})
}

// GetDetail returns the detail record for id if present.
func (s *PokedexStore) GetDetail(id int) (*domain.Pokemon, bool) {
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketDetails).Get(detailKey(id)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return nil, false
	}

	var p domain.Pokemon
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// ClearAll removes the snapshot and all detail records in one transaction.
func (s *PokedexStore) ClearAll() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCatalog, bucketDetails} {
			if err := wipeBucket(tx.Bucket(bucket)); err != nil {
				return err
			}
		}
		return nil
	})
}
