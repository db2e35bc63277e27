package pokeapi

import (
	"time"

	"dexterm/internal/domain"
)

// mapCatalog converts a wire catalog page to the domain snapshot,
// preserving server order and stamping the fetch time.
func mapCatalog(dto *catalogDTO) *domain.Catalog {
	items := make([]domain.PokemonRef, len(dto.Results))
	for i, r := range dto.Results {
		items[i] = domain.PokemonRef{Name: r.Name, URL: r.URL}
	}

	return &domain.Catalog{
		Count:    dto.Count,
		Next:     dto.Next,
		Previous: dto.Previous,
		Items:    items,
		CachedAt: time.Now(),
	}
}

func mapDetail(dto *detailDTO) *domain.Pokemon {
	stats := make([]domain.StatValue, len(dto.Stats))
	for i, s := range dto.Stats {
		stats[i] = domain.StatValue{BaseStat: s.BaseStat, Name: s.Stat.Name}
	}

	types := make([]domain.TypeSlot, len(dto.Types))
	for i, t := range dto.Types {
		types[i] = domain.TypeSlot{Slot: t.Slot, Name: t.Type.Name}
	}

	return &domain.Pokemon{
		ID:     dto.ID,
		Name:   dto.Name,
		Height: dto.Height,
		Weight: dto.Weight,
		Sprites: domain.Sprites{
			FrontDefault: dto.Sprites.FrontDefault,
			BackDefault:  dto.Sprites.BackDefault,
		},
		Cries: domain.Cries{
			Latest: dto.Cries.Latest,
			Legacy: dto.Cries.Legacy,
		},
		Stats:    stats,
		Types:    types,
		CachedAt: time.Now(),
	}
}
