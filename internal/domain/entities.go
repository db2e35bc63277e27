package domain

import (
	"strconv"
	"strings"
	"time"
)

// Catalog is the persisted snapshot of the paginated Pokémon list.
// At most one snapshot exists in the store at a time; writes replace it
// wholesale rather than merging pages.
type Catalog struct {
	Count    int          `json:"count"`
	Next     *string      `json:"next,omitempty"`
	Previous *string      `json:"previous,omitempty"`
	Items    []PokemonRef `json:"items"`
	CachedAt time.Time    `json:"cachedAt"`
}

// HasMore reports whether the server advertises another page.
func (c *Catalog) HasMore() bool {
	return c.Next != nil && *c.Next != ""
}

// PokemonRef is a single catalog entry. The resource URL is the identity:
// two refs are the same Pokémon iff their URLs are equal.
type PokemonRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ID derives the numeric identifier from the resource URL.
func (r PokemonRef) ID() (int, error) {
	return ExtractID(r.URL)
}

// DisplayName returns the name with the first letter capitalized.
func (r PokemonRef) DisplayName() string {
	return capitalize(r.Name)
}

// Pokemon is the detail record for a single Pokémon, keyed by ID.
type Pokemon struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	Height   int         `json:"height"`
	Weight   int         `json:"weight"`
	Sprites  Sprites     `json:"sprites"`
	Cries    Cries       `json:"cries"`
	Stats    []StatValue `json:"stats"`
	Types    []TypeSlot  `json:"types"`
	CachedAt time.Time   `json:"cachedAt"`
}

// DisplayName returns the name with the first letter capitalized.
func (p *Pokemon) DisplayName() string {
	return capitalize(p.Name)
}

// Sprites holds the artwork URLs for a Pokémon.
type Sprites struct {
	FrontDefault string  `json:"frontDefault"`
	BackDefault  *string `json:"backDefault,omitempty"`
}

// Cries holds the audio URLs for a Pokémon's cry. Either may be empty.
type Cries struct {
	Latest string `json:"latest,omitempty"`
	Legacy string `json:"legacy,omitempty"`
}

// Preferred returns the latest cry URL, falling back to legacy.
func (c Cries) Preferred() string {
	if c.Latest != "" {
		return c.Latest
	}
	return c.Legacy
}

// StatValue is one base stat entry (e.g. "speed" = 45). Order is server-provided.
type StatValue struct {
	BaseStat int    `json:"baseStat"`
	Name     string `json:"name"`
}

// TypeSlot is one type assignment (e.g. slot 1 = "grass").
type TypeSlot struct {
	Slot int    `json:"slot"`
	Name string `json:"name"`
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ExtractID derives the numeric identifier from a resource URL by taking
// the last non-empty path segment: "https://pokeapi.co/api/v2/pokemon/1/"
// and ".../pokemon/1" both yield 1.
func ExtractID(rawURL string) (int, error) {
	trimmed := strings.Trim(rawURL, "/")
	segments := strings.Split(trimmed, "/")
	last := segments[len(segments)-1]
	id, err := strconv.Atoi(last)
	if err != nil {
		return 0, ErrInvalidResourceID
	}
	return id, nil
}
