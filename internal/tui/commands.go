package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"dexterm/internal/domain"
	"dexterm/internal/player"
	"dexterm/internal/search"
	"dexterm/internal/service"
)

// Command factories for async operations

// LoadCatalogCmd loads the catalog (cache first, network on miss)
func LoadCatalogCmd(svc *service.CatalogService, offset, limit int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		catalog, err := svc.FetchList(ctx, offset, limit)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading catalog"}
		}
		return CatalogLoadedMsg{Catalog: catalog}
	}
}

// FetchMoreCmd grows the catalog by one page when more results exist
func FetchMoreCmd(svc *service.CatalogService, limit int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		catalog, err := svc.FetchMore(ctx, limit)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading more"}
		}
		return CatalogLoadedMsg{Catalog: catalog}
	}
}

// RefreshCatalogCmd clears the cache and refetches the full catalog
func RefreshCatalogCmd(svc *service.CatalogService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		catalog, err := svc.ClearAndRefetch(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "refreshing catalog"}
		}
		return CatalogLoadedMsg{Catalog: catalog, Refreshed: true}
	}
}

// LoadDetailCmd loads the detail record behind a resource URL
func LoadDetailCmd(svc *service.CatalogService, resourceURL string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		detail, err := svc.FetchDetail(ctx, resourceURL)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading details"}
		}
		return DetailLoadedMsg{Detail: detail}
	}
}

// PlayCryCmd hands the Pokémon's cry to the external audio player
func PlayCryCmd(launcher *player.Launcher, p *domain.Pokemon) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err := launcher.PlayCry(ctx, p.Cries); err != nil {
			return ErrMsg{Err: err, Context: "playing cry"}
		}
		return CryPlayedMsg{Name: p.Name}
	}
}

// WaitForFilterCmd blocks on the projection's update channel and turns the
// next recomputed view into a message. Reissued after every receipt.
func WaitForFilterCmd(proj *search.Projection) tea.Cmd {
	return func() tea.Msg {
		items, ok := <-proj.Updates()
		if !ok {
			return nil
		}
		return FilterUpdatedMsg{Items: items}
	}
}

// ClearStatusCmd clears the status bar after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
