package pokeapi

import (
	"encoding/json"
	"fmt"

	"dexterm/internal/domain"
)

// Wire types for the PokeAPI JSON payloads (snake_case on the wire).

type catalogDTO struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []refDTO `json:"results"`
}

type refDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type detailDTO struct {
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	Height  int        `json:"height"`
	Weight  int        `json:"weight"`
	Sprites spritesDTO `json:"sprites"`
	Cries   criesDTO   `json:"cries"`
	Stats   []statDTO  `json:"stats"`
	Types   []typeDTO  `json:"types"`
}

type spritesDTO struct {
	FrontDefault string  `json:"front_default"`
	BackDefault  *string `json:"back_default"`
}

type criesDTO struct {
	Latest string `json:"latest"`
	Legacy string `json:"legacy"`
}

type statDTO struct {
	BaseStat int        `json:"base_stat"`
	Stat     speciesDTO `json:"stat"`
}

type typeDTO struct {
	Slot int        `json:"slot"`
	Type speciesDTO `json:"type"`
}

// speciesDTO is the named-resource shape PokeAPI reuses everywhere.
type speciesDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func decodeCatalog(body []byte) (*catalogDTO, error) {
	var dto catalogDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("%w: decoding catalog: %v", domain.ErrFetchFailed, err)
	}
	return &dto, nil
}

func decodeDetail(body []byte) (*detailDTO, error) {
	var dto detailDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("%w: decoding detail: %v", domain.ErrFetchFailed, err)
	}
	return &dto, nil
}
