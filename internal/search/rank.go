package search

import (
	"sort"
	"strings"

	"dexterm/internal/domain"
	"github.com/lithammer/fuzzysearch/fuzzy"
	sahilm "github.com/sahilm/fuzzy"
)

// Match is a fuzzy hit against the catalog with highlight metadata.
type Match struct {
	Index          int   // Index into the searched slice
	MatchedIndexes []int // Character positions that matched
	Score          int   // Higher is better
}

// refSource adapts a ref slice to sahilm/fuzzy.Source without allocating
// per-call strings.
type refSource struct {
	refs []domain.PokemonRef
}

func (s refSource) String(i int) string { return s.refs[i].Name }
func (s refSource) Len() int            { return len(s.refs) }

// Rank fuzzy-matches query against ref names, best matches first, with
// matched character positions for highlighting.
func Rank(query string, refs []domain.PokemonRef) []Match {
	if query == "" || len(refs) == 0 {
		return nil
	}

	hits := sahilm.FindFrom(strings.ToLower(query), refSource{refs: refs})

	matches := make([]Match, len(hits))
	for i, h := range hits {
		matches[i] = Match{
			Index:          h.Index,
			MatchedIndexes: h.MatchedIndexes,
			Score:          h.Score,
		}
	}
	return matches
}

// Suggest returns names close to a query that matched nothing, nearest
// first. Used for a did-you-mean hint when the filtered view is empty.
func Suggest(query string, list []domain.PokemonRef, max int) []string {
	if query == "" {
		return nil
	}

	names := make([]string, len(list))
	for i, ref := range list {
		names[i] = ref.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)

	if max > 0 && len(ranks) > max {
		ranks = ranks[:max]
	}

	suggestions := make([]string, len(ranks))
	for i, r := range ranks {
		suggestions[i] = r.Target
	}
	return suggestions
}
