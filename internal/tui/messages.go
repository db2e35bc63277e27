package tui

import (
	"dexterm/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// CatalogLoadedMsg signals that the catalog snapshot has been loaded
type CatalogLoadedMsg struct {
	Catalog   *domain.Catalog
	Refreshed bool
}

// DetailLoadedMsg signals that a detail record has been loaded
type DetailLoadedMsg struct {
	Detail *domain.Pokemon
}

// FilterUpdatedMsg carries a recomputed filtered view from the projection
type FilterUpdatedMsg struct {
	Items []domain.PokemonRef
}

// CryPlayedMsg signals that a cry was handed to the audio player
type CryPlayedMsg struct {
	Name string
}

// StatusMsg sets a temporary status bar message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
