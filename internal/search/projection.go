package search

import (
	"strings"
	"sync"
	"time"

	"dexterm/internal/domain"
)

// DefaultDebounce is the quiet period a query must survive before the
// filtered view is recomputed.
const DefaultDebounce = 350 * time.Millisecond

// Projection holds the authoritative catalog list and a filtered view
// derived from a debounced search query.
//
// The authoritative list is single-writer: only completed fetch results
// replace it. The filtered view is never mutated independently; it is
// recomputed whenever the list or the settled query changes, under one
// mutex so a recomputation never observes a torn (list, query) pair.
type Projection struct {
	mu       sync.Mutex
	list     []domain.PokemonRef
	query    string // latest raw query
	applied  string // query used by the last recomputation
	filtered []domain.PokemonRef

	interval time.Duration
	timer    *time.Timer
	gen      uint64 // stamps debounce windows so superseded timer fires are ignored
	pending  bool
	closed   bool

	updates chan []domain.PokemonRef
}

// NewProjection creates a projection with the given debounce interval.
// A non-positive interval falls back to DefaultDebounce.
func NewProjection(interval time.Duration) *Projection {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return &Projection{
		interval: interval,
		updates:  make(chan []domain.PokemonRef, 1),
	}
}

// Updates delivers recomputed filtered views. The channel holds only the
// latest value; a slow consumer sees the newest state, not every step.
func (p *Projection) Updates() <-chan []domain.PokemonRef {
	return p.updates
}

// SetList replaces the authoritative list. The view is recomputed
// immediately unless a query change is mid-debounce, in which case the
// pending recomputation picks up the new list so exactly one emission
// reflects the latest of both.
func (p *Projection) SetList(items []domain.PokemonRef) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.list = items
	if p.pending {
		return
	}
	p.recomputeLocked()
}

// SetQuery records a keystroke. Only the value that survives the quiet
// period triggers a recomputation; intermediate values produce nothing.
func (p *Projection) SetQuery(q string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.query = q
	p.pending = true
	p.gen++

	// Each keystroke arms a fresh timer stamped with the current
	// generation. A superseded timer that already fired but is still
	// waiting on the lock fails the generation check in settle, so the
	// new quiet period cannot end early.
	if p.timer != nil {
		p.timer.Stop()
	}
	gen := p.gen
	p.timer = time.AfterFunc(p.interval, func() { p.settle(gen) })
}

// settle runs when the debounce window closes. gen identifies the window
// that armed the timer; stale fires are ignored.
func (p *Projection) settle(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || !p.pending || gen != p.gen {
		return
	}
	p.pending = false
	p.applied = p.query
	p.recomputeLocked()
}

// recomputeLocked rebuilds the filtered view and publishes it.
// Callers must hold p.mu.
func (p *Projection) recomputeLocked() {
	p.filtered = Filter(p.list, p.applied)

	if p.closed {
		return
	}
	// Latest-wins: drop an unconsumed older view before publishing.
	select {
	case <-p.updates:
	default:
	}
	p.updates <- p.filtered
}

// Filtered returns the current filtered view.
func (p *Projection) Filtered() []domain.PokemonRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filtered
}

// List returns the current authoritative list.
func (p *Projection) List() []domain.PokemonRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.list
}

// Query returns the last settled query.
func (p *Projection) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applied
}

// Close stops the debounce timer. Further SetQuery calls are ignored.
func (p *Projection) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
}

// Filter returns the refs whose names contain the query, case-insensitively.
// An empty query returns the list itself in its original order.
func Filter(list []domain.PokemonRef, query string) []domain.PokemonRef {
	if query == "" {
		return list
	}

	needle := strings.ToLower(query)
	filtered := make([]domain.PokemonRef, 0, len(list))
	for _, ref := range list {
		if strings.Contains(strings.ToLower(ref.Name), needle) {
			filtered = append(filtered, ref)
		}
	}
	return filtered
}
