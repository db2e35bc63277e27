package tui

import (
	"fmt"
	"strings"

	"dexterm/internal/search"
	"dexterm/internal/tui/styles"
)

const maxSuggestions = 3

func (m Model) View() string {
	var b strings.Builder

	switch m.active {
	case viewDetail:
		b.WriteString(m.viewDetail())
	default:
		b.WriteString(m.viewList())
	}

	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	b.WriteString("\n")
	b.WriteString(m.viewHelp())
	return b.String()
}

func (m Model) viewList() string {
	var b strings.Builder

	title := "Pokédex"
	if n := len(m.proj.List()); n > 0 {
		title = fmt.Sprintf("Pokédex — %d Pokémon", n)
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")

	if m.filterActive || m.filterInput.Value() != "" {
		b.WriteString(m.filterInput.View())
	}
	b.WriteString("\n")

	if m.loading {
		b.WriteString(m.spin.View())
		b.WriteString(styles.DimStyle.Render(" loading catalog..."))
		return b.String()
	}

	query := m.filterInput.Value()
	if len(m.refs) == 0 {
		if query != "" {
			b.WriteString(styles.DimStyle.Render("no matches"))
			if hints := search.Suggest(query, m.proj.List(), maxSuggestions); len(hints) > 0 {
				b.WriteString(styles.DimStyle.Render(" — did you mean: " + strings.Join(hints, ", ") + "?"))
			}
		} else {
			b.WriteString(styles.DimStyle.Render("catalog is empty"))
		}
		return b.String()
	}

	highlights := m.matchHighlights(query)

	rows := m.visibleRows()
	if rows <= 0 {
		rows = len(m.refs)
	}
	end := m.offset + rows
	if end > len(m.refs) {
		end = len(m.refs)
	}

	for i := m.offset; i < end; i++ {
		ref := m.refs[i]
		name := renderName(ref.DisplayName(), highlights[i])

		if i == m.cursor {
			b.WriteString(styles.SelectedStyle.Render("▸ " + ref.DisplayName()))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString("\n")
	}

	if end < len(m.refs) {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("↓ %d more", len(m.refs)-end)))
	}

	return b.String()
}

// matchHighlights maps filtered-view indexes to matched character positions
// for the current query.
func (m Model) matchHighlights(query string) map[int][]int {
	if query == "" {
		return nil
	}
	highlights := make(map[int][]int)
	for _, match := range search.Rank(query, m.refs) {
		highlights[match.Index] = match.MatchedIndexes
	}
	return highlights
}

// renderName styles the characters that matched the filter query.
func renderName(name string, matched []int) string {
	if len(matched) == 0 {
		return name
	}

	set := make(map[int]bool, len(matched))
	for _, idx := range matched {
		set[idx] = true
	}

	var b strings.Builder
	for i, r := range []rune(name) {
		if set[i] {
			b.WriteString(styles.MatchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (m Model) viewDetail() string {
	var b strings.Builder

	if m.loading || m.detail == nil {
		b.WriteString(m.spin.View())
		b.WriteString(styles.DimStyle.Render(" loading details..."))
		return b.String()
	}

	d := m.detail

	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("#%03d %s", d.ID, d.DisplayName())))
	b.WriteString("\n\n")

	typeNames := make([]string, len(d.Types))
	for i, t := range d.Types {
		typeNames[i] = t.Name
	}
	b.WriteString(styles.SubtitleStyle.Render("Type:   "))
	b.WriteString(styles.AccentStyle.Render(strings.Join(typeNames, " / ")))
	b.WriteString("\n")

	// PokeAPI reports height in decimeters and weight in hectograms.
	b.WriteString(styles.SubtitleStyle.Render("Height: "))
	b.WriteString(fmt.Sprintf("%.1f m", float64(d.Height)/10))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("Weight: "))
	b.WriteString(fmt.Sprintf("%.1f kg", float64(d.Weight)/10))
	b.WriteString("\n\n")

	for _, stat := range d.Stats {
		b.WriteString(fmt.Sprintf("%-16s %3d %s\n", stat.Name, stat.BaseStat, statBar(stat.BaseStat)))
	}

	if d.Sprites.FrontDefault != "" {
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render("sprite: " + d.Sprites.FrontDefault))
		b.WriteString("\n")
	}

	if d.Cries.Preferred() == "" {
		b.WriteString(styles.DimStyle.Render("no cry audio available"))
		b.WriteString("\n")
	}

	return styles.PanelBorder.Render(b.String())
}

// statBar renders a 20-cell gauge; base stats cap at 255.
func statBar(value int) string {
	const cells = 20
	filled := value * cells / 255
	if filled > cells {
		filled = cells
	}
	return styles.AccentStyle.Render(strings.Repeat(styles.StatBarFull, filled)) +
		styles.DimStyle.Render(strings.Repeat(styles.StatBarEmpty, cells-filled))
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusError {
		return styles.ErrorStyle.Render(m.status)
	}
	return styles.SuccessStyle.Render(m.status)
}

func (m Model) viewHelp() string {
	if m.active == viewDetail {
		return styles.DimStyle.Render("c play cry • esc back • q quit")
	}
	return styles.DimStyle.Render("↑/↓ move • enter details • / filter • r refresh • q quit")
}
