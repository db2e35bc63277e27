package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"dexterm/internal/cache"
	"dexterm/internal/config"
	"dexterm/internal/log"
	"dexterm/internal/player"
	"dexterm/internal/pokeapi"
	"dexterm/internal/search"
	"dexterm/internal/service"
	"dexterm/internal/store"
	"dexterm/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("dexterm %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("dexterm is interactive; run it in a terminal")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting dexterm", "version", Version)

	// The store and gateway are created once here and injected; every
	// component shares this single cache lifecycle.
	db, err := store.Open(cfg.Cache.Dir)
	if err != nil {
		return fmt.Errorf("failed to open cache store: %w", err)
	}
	defer db.Close()

	gateway := cache.NewGateway(db, logger)
	defer gateway.Close()

	client := pokeapi.NewClient(cfg.API.BaseURL, logger)

	catalogSvc := service.NewCatalogService(client, gateway, logger, service.Options{
		FullLimit: cfg.API.FullLimit,
		TTL:       time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
	})

	projection := search.NewProjection(time.Duration(cfg.Search.DebounceMS) * time.Millisecond)
	defer projection.Close()

	launcher := player.NewLauncher(cfg.Player.Command, cfg.Player.Args,
		filepath.Join(cfg.Cache.Dir, "cries"), logger)

	model := tui.NewModel(catalogSvc, projection, launcher, cfg.API.PageLimit, logger)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}
