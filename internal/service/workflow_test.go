package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dexterm/internal/cache"
	"dexterm/internal/log"
	"dexterm/internal/pokeapi"
	"dexterm/internal/search"
	"dexterm/internal/store"
)

// TestBrowseWorkflow drives the full stack against a fake PokeAPI:
// list fetch, filter, detail fetch, and a forced refresh — verifying the
// cache short-circuits repeat requests and the refresh is the only path
// that goes back to the network.
func TestBrowseWorkflow(t *testing.T) {
	var catalogHits, detailHits atomic.Int64

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/pokemon":
			catalogHits.Add(1)
			fmt.Fprintf(w, `{
				"count": 3, "next": null, "previous": null,
				"results": [
					{"name": "bulbasaur", "url": "%[1]s/pokemon/1/"},
					{"name": "ivysaur", "url": "%[1]s/pokemon/2/"},
					{"name": "charmander", "url": "%[1]s/pokemon/4/"}
				]
			}`, server.URL)
		case "/pokemon/1/":
			detailHits.Add(1)
			fmt.Fprint(w, `{
				"id": 1, "name": "bulbasaur", "height": 7, "weight": 69,
				"sprites": {"front_default": "https://sprites/1.png"},
				"cries": {"latest": "https://cries/1.ogg"},
				"stats": [{"base_stat": 45, "stat": {"name": "hp"}}],
				"types": [{"slot": 1, "type": {"name": "grass"}}]
			}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	db, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	gw := cache.NewGateway(db, log.NullLogger())
	defer gw.Close()

	client := pokeapi.NewClient(server.URL, log.NullLogger())
	svc := NewCatalogService(client, gw, log.NullLogger(), Options{})

	ctx := context.Background()

	// First list fetch goes to the network and persists in the background
	catalog, err := svc.FetchList(ctx, 0, 20)
	require.NoError(t, err)
	require.Len(t, catalog.Items, 3)
	require.EqualValues(t, 1, catalogHits.Load())
	gw.Flush()

	// Repeat list fetch serves from cache
	_, err = svc.FetchList(ctx, 0, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, catalogHits.Load(), "cached snapshot must short-circuit the network")

	// Filter the list through the projection
	proj := search.NewProjection(10 * time.Millisecond)
	defer proj.Close()
	proj.SetList(catalog.Items)
	<-proj.Updates()
	proj.SetQuery("saur")

	select {
	case view := <-proj.Updates():
		require.Len(t, view, 2)
		require.Equal(t, "bulbasaur", view[0].Name)
	case <-time.After(time.Second):
		t.Fatal("filter never settled")
	}

	// Detail fetch for the selected entry, then a cached repeat
	detail, err := svc.FetchDetail(ctx, catalog.Items[0].URL)
	require.NoError(t, err)
	require.Equal(t, "bulbasaur", detail.Name)
	require.EqualValues(t, 1, detailHits.Load())
	gw.Flush()

	_, err = svc.FetchDetail(ctx, catalog.Items[0].URL)
	require.NoError(t, err)
	require.EqualValues(t, 1, detailHits.Load(), "cached detail must short-circuit the network")

	// Forced refresh clears everything and goes back to the network
	refreshed, err := svc.ClearAndRefetch(ctx)
	require.NoError(t, err)
	require.Len(t, refreshed.Items, 3)
	require.EqualValues(t, 2, catalogHits.Load(), "refresh must bypass the cache")

	gw.Flush()
	_, ok := gw.RetrieveDetail(catalog.Items[0].URL)
	require.False(t, ok, "details must be gone after a forced refresh")
}
