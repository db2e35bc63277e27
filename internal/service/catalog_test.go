package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dexterm/internal/cache"
	"dexterm/internal/domain"
	"dexterm/internal/log"
	"dexterm/internal/store"
)

// fakeClient counts requests and serves canned responses. An optional
// barrier makes in-flight fetches observable.
type fakeClient struct {
	catalogCalls atomic.Int64
	detailCalls  atomic.Int64

	catalog *domain.Catalog
	detail  *domain.Pokemon
	err     error

	block chan struct{} // when set, fetches wait here before returning
}

func (f *fakeClient) FetchCatalog(ctx context.Context, offset, limit int) (*domain.Catalog, error) {
	f.catalogCalls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	c := *f.catalog
	return &c, nil
}

func (f *fakeClient) FetchPokemon(ctx context.Context, resourceURL string) (*domain.Pokemon, error) {
	f.detailCalls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	p := *f.detail
	return &p, nil
}

func refs(names ...string) []domain.PokemonRef {
	out := make([]domain.PokemonRef, len(names))
	for i, name := range names {
		out[i] = domain.PokemonRef{
			Name: name,
			URL:  "https://pokeapi.co/api/v2/pokemon/" + strconv.Itoa(i+1) + "/",
		}
	}
	return out
}

func newTestService(t *testing.T, client domain.Client, opts Options) (*CatalogService, *cache.Gateway) {
	t.Helper()
	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gw := cache.NewGateway(db, log.NullLogger())
	t.Cleanup(gw.Close)

	return NewCatalogService(client, gw, log.NullLogger(), opts), gw
}

func TestFetchList_CacheMissHitsNetworkOnce(t *testing.T) {
	client := &fakeClient{catalog: &domain.Catalog{
		Count:    2,
		Items:    refs("bulbasaur", "ivysaur"),
		CachedAt: time.Now(),
	}}
	svc, gw := newTestService(t, client, Options{})

	got, err := svc.FetchList(context.Background(), 0, 20)
	if err != nil {
		t.Fatalf("FetchList failed: %v", err)
	}
	if len(got.Items) != 2 {
		t.Errorf("got %d items, want 2", len(got.Items))
	}
	if n := client.catalogCalls.Load(); n != 1 {
		t.Errorf("network calls = %d, want 1", n)
	}

	// The miss triggered a background persist
	gw.Flush()
	if _, ok := gw.RetrieveCatalog(); !ok {
		t.Error("snapshot not persisted after network fetch")
	}
}

func TestFetchList_CacheHitSkipsNetwork(t *testing.T) {
	client := &fakeClient{catalog: &domain.Catalog{
		Count:    1,
		Items:    refs("bulbasaur"),
		CachedAt: time.Now(),
	}}
	svc, gw := newTestService(t, client, Options{})

	if _, err := svc.FetchList(context.Background(), 0, 20); err != nil {
		t.Fatalf("first FetchList failed: %v", err)
	}
	gw.Flush()

	if _, err := svc.FetchList(context.Background(), 0, 20); err != nil {
		t.Fatalf("second FetchList failed: %v", err)
	}
	if n := client.catalogCalls.Load(); n != 1 {
		t.Errorf("network calls = %d, want 1 (second call must serve from cache)", n)
	}
}

func TestFetchList_FailureSurfacesWithoutRetry(t *testing.T) {
	client := &fakeClient{err: domain.ErrFetchFailed}
	svc, _ := newTestService(t, client, Options{})

	_, err := svc.FetchList(context.Background(), 0, 20)
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("error = %v, want ErrFetchFailed", err)
	}
	if n := client.catalogCalls.Load(); n != 1 {
		t.Errorf("network calls = %d, want 1 (no automatic retry)", n)
	}
}

func TestFetchDetail_MalformedURLFailsBeforeAnyAccess(t *testing.T) {
	client := &fakeClient{detail: &domain.Pokemon{ID: 1, Name: "bulbasaur"}}
	svc, _ := newTestService(t, client, Options{})

	_, err := svc.FetchDetail(context.Background(), "not a url")
	if !errors.Is(err, domain.ErrInvalidURL) {
		t.Fatalf("error = %v, want ErrInvalidURL", err)
	}
	if n := client.detailCalls.Load(); n != 0 {
		t.Errorf("network calls = %d, want 0", n)
	}
}

func TestFetchDetail_CacheHitSkipsNetwork(t *testing.T) {
	client := &fakeClient{detail: &domain.Pokemon{Name: "pikachu", Height: 4}}
	svc, gw := newTestService(t, client, Options{})

	url := "https://pokeapi.co/api/v2/pokemon/25/"
	if _, err := svc.FetchDetail(context.Background(), url); err != nil {
		t.Fatalf("first FetchDetail failed: %v", err)
	}
	gw.Flush()

	got, err := svc.FetchDetail(context.Background(), url)
	if err != nil {
		t.Fatalf("second FetchDetail failed: %v", err)
	}
	if got.Name != "pikachu" {
		t.Errorf("Name = %q, want pikachu", got.Name)
	}
	if got.ID != 25 {
		t.Errorf("ID = %d, want 25 (derived from resource URL)", got.ID)
	}
	if n := client.detailCalls.Load(); n != 1 {
		t.Errorf("network calls = %d, want 1", n)
	}
}

func TestFetchList_ConcurrentCallsCoalesce(t *testing.T) {
	client := &fakeClient{
		catalog: &domain.Catalog{Count: 1, Items: refs("bulbasaur"), CachedAt: time.Now()},
		block:   make(chan struct{}),
	}
	svc, _ := newTestService(t, client, Options{})

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.FetchList(context.Background(), 0, 20)
		}(i)
	}

	// Let the leader reach the network and the rest attach to it
	for client.catalogCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(client.block)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d failed: %v", i, err)
		}
	}
	if n := client.catalogCalls.Load(); n != 1 {
		t.Errorf("network calls = %d, want 1 (concurrent fetches must share one request)", n)
	}
}

func TestClearAndRefetch_WipesThenFetches(t *testing.T) {
	client := &fakeClient{catalog: &domain.Catalog{
		Count:    1,
		Items:    refs("charmander"),
		CachedAt: time.Now(),
	}}
	svc, gw := newTestService(t, client, Options{})

	// Seed the cache so the refetch is a genuine forced round-trip
	gw.PersistCatalog(&domain.Catalog{Count: 1, Items: refs("bulbasaur"), CachedAt: time.Now()}, nil)
	gw.PersistDetail(&domain.Pokemon{ID: 1, Name: "bulbasaur"},
		"https://pokeapi.co/api/v2/pokemon/1/", nil)
	gw.Flush()

	got, err := svc.ClearAndRefetch(context.Background())
	if err != nil {
		t.Fatalf("ClearAndRefetch failed: %v", err)
	}
	if got.Items[0].Name != "charmander" {
		t.Errorf("refetched item = %q, want charmander", got.Items[0].Name)
	}
	if n := client.catalogCalls.Load(); n != 1 {
		t.Errorf("network calls = %d, want 1 (despite warm cache)", n)
	}

	gw.Flush()
	if _, ok := gw.RetrieveDetail("https://pokeapi.co/api/v2/pokemon/1/"); ok {
		t.Error("old detail survived the clear")
	}
	snapshot, ok := gw.RetrieveCatalog()
	if !ok {
		t.Fatal("refetched snapshot not persisted")
	}
	if snapshot.Items[0].Name != "charmander" {
		t.Errorf("persisted item = %q, want charmander", snapshot.Items[0].Name)
	}
}

func TestClearAndRefetch_FetchFailureLeavesCacheEmpty(t *testing.T) {
	client := &fakeClient{err: domain.ErrFetchFailed}
	svc, gw := newTestService(t, client, Options{})

	gw.PersistCatalog(&domain.Catalog{Count: 1, Items: refs("bulbasaur"), CachedAt: time.Now()}, nil)
	gw.Flush()

	if _, err := svc.ClearAndRefetch(context.Background()); !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("error = %v, want ErrFetchFailed", err)
	}

	// The clear already happened; a failed refetch does not restore it
	gw.Flush()
	if _, ok := gw.RetrieveCatalog(); ok {
		t.Error("snapshot present after clear + failed refetch")
	}
}

// pagingClient serves a fixed-size catalog one page at a time, with the
// next link set while pages remain.
type pagingClient struct {
	calls atomic.Int64
	total int
}

func (p *pagingClient) FetchCatalog(ctx context.Context, offset, limit int) (*domain.Catalog, error) {
	p.calls.Add(1)
	end := offset + limit
	if end > p.total {
		end = p.total
	}

	items := make([]domain.PokemonRef, 0, end-offset)
	for i := offset; i < end; i++ {
		items = append(items, domain.PokemonRef{
			Name: "mon-" + strconv.Itoa(i+1),
			URL:  "https://pokeapi.co/api/v2/pokemon/" + strconv.Itoa(i+1) + "/",
		})
	}

	c := &domain.Catalog{Count: p.total, Items: items, CachedAt: time.Now()}
	if end < p.total {
		next := "https://pokeapi.co/api/v2/pokemon?offset=" + strconv.Itoa(end) + "&limit=" + strconv.Itoa(limit)
		c.Next = &next
	}
	return c, nil
}

func (p *pagingClient) FetchPokemon(ctx context.Context, resourceURL string) (*domain.Pokemon, error) {
	return nil, domain.ErrNotFound
}

func TestFetchMore_GrowsSnapshotWholesale(t *testing.T) {
	client := &pagingClient{total: 5}
	svc, gw := newTestService(t, client, Options{})
	ctx := context.Background()

	first, err := svc.FetchList(ctx, 0, 2)
	if err != nil {
		t.Fatalf("FetchList failed: %v", err)
	}
	if len(first.Items) != 2 || !first.HasMore() {
		t.Fatalf("first page = %d items, HasMore %v", len(first.Items), first.HasMore())
	}
	gw.Flush()

	grown, err := svc.FetchMore(ctx, 2)
	if err != nil {
		t.Fatalf("FetchMore failed: %v", err)
	}
	if len(grown.Items) != 4 || !grown.HasMore() {
		t.Fatalf("grown = %d items, HasMore %v, want 4 and true", len(grown.Items), grown.HasMore())
	}

	// The grown snapshot replaced the old one wholesale
	gw.Flush()
	snapshot, ok := gw.RetrieveCatalog()
	if !ok {
		t.Fatal("grown snapshot not persisted")
	}
	for i, want := range []string{"mon-1", "mon-2", "mon-3", "mon-4"} {
		if snapshot.Items[i].Name != want {
			t.Errorf("snapshot[%d] = %q, want %q", i, snapshot.Items[i].Name, want)
		}
	}

	final, err := svc.FetchMore(ctx, 2)
	if err != nil {
		t.Fatalf("final FetchMore failed: %v", err)
	}
	if len(final.Items) != 5 || final.HasMore() {
		t.Fatalf("final = %d items, HasMore %v, want 5 and false", len(final.Items), final.HasMore())
	}
	gw.Flush()

	// Exhausted catalog: no further network traffic
	again, err := svc.FetchMore(ctx, 2)
	if err != nil {
		t.Fatalf("FetchMore on exhausted catalog failed: %v", err)
	}
	if len(again.Items) != 5 {
		t.Errorf("got %d items, want 5", len(again.Items))
	}
	if n := client.calls.Load(); n != 3 {
		t.Errorf("network calls = %d, want 3", n)
	}
}

func TestFetchMore_WithoutSnapshotFetchesFirstPage(t *testing.T) {
	client := &pagingClient{total: 5}
	svc, _ := newTestService(t, client, Options{})

	got, err := svc.FetchMore(context.Background(), 2)
	if err != nil {
		t.Fatalf("FetchMore failed: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].Name != "mon-1" {
		t.Errorf("got %v, want the first page", got.Items)
	}
}

// brokenStore fails every write; reads always miss.
type brokenStore struct{}

var errDiskFull = errors.New("disk full")

func (brokenStore) ReplaceCatalog(*domain.Catalog) error  { return errDiskFull }
func (brokenStore) GetCatalog() (*domain.Catalog, bool)   { return nil, false }
func (brokenStore) PutDetail(*domain.Pokemon) error       { return errDiskFull }
func (brokenStore) GetDetail(int) (*domain.Pokemon, bool) { return nil, false }
func (brokenStore) ClearAll() error                       { return errDiskFull }
func (brokenStore) Close() error                          { return nil }

func TestFetchList_PersistFailureDoesNotFailFetch(t *testing.T) {
	client := &fakeClient{catalog: &domain.Catalog{
		Count:    1,
		Items:    refs("bulbasaur"),
		CachedAt: time.Now(),
	}}

	gw := cache.NewGateway(brokenStore{}, log.NullLogger())
	defer gw.Close()
	svc := NewCatalogService(client, gw, log.NullLogger(), Options{})

	got, err := svc.FetchList(context.Background(), 0, 20)
	if err != nil {
		t.Fatalf("FetchList failed: %v (persist failures must stay in the background)", err)
	}
	if len(got.Items) != 1 {
		t.Errorf("got %d items, want 1", len(got.Items))
	}
	gw.Flush()
}

func TestFetchList_TTLExpiryForcesNetwork(t *testing.T) {
	client := &fakeClient{catalog: &domain.Catalog{
		Count:    1,
		Items:    refs("bulbasaur"),
		CachedAt: time.Now(),
	}}
	svc, gw := newTestService(t, client, Options{TTL: time.Minute})

	stale := &domain.Catalog{
		Count:    1,
		Items:    refs("bulbasaur"),
		CachedAt: time.Now().Add(-time.Hour),
	}
	gw.PersistCatalog(stale, nil)
	gw.Flush()

	if _, err := svc.FetchList(context.Background(), 0, 20); err != nil {
		t.Fatalf("FetchList failed: %v", err)
	}
	if n := client.catalogCalls.Load(); n != 1 {
		t.Errorf("network calls = %d, want 1 (stale snapshot must not be served)", n)
	}
}
