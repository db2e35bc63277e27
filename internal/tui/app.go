package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"dexterm/internal/domain"
	"dexterm/internal/player"
	"dexterm/internal/search"
	"dexterm/internal/service"
	"dexterm/internal/tui/styles"
)

// view identifies the active screen
type view int

const (
	viewList view = iota
	viewDetail
)

// Model is the root bubbletea model
type Model struct {
	svc      *service.CatalogService
	proj     *search.Projection
	launcher *player.Launcher
	logger   *slog.Logger

	keys      KeyMap
	pageLimit int

	active view
	width  int
	height int

	// List state: refs is the projection's filtered view
	refs         []domain.PokemonRef
	cursor       int
	offset       int
	hasMore      bool
	fetchingMore bool

	// Filter state
	filterActive bool
	filterInput  textinput.Model

	// Detail state
	detail *domain.Pokemon

	loading bool
	spin    spinner.Model

	status      string
	statusError bool
}

// NewModel creates the root model
func NewModel(svc *service.CatalogService, proj *search.Projection, launcher *player.Launcher, pageLimit int, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	return Model{
		svc:         svc,
		proj:        proj,
		launcher:    launcher,
		logger:      logger,
		keys:        DefaultKeyMap(),
		pageLimit:   pageLimit,
		loading:     true,
		spin:        sp,
		filterInput: ti,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		LoadCatalogCmd(m.svc, 0, m.pageLimit),
		WaitForFilterCmd(m.proj),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case CatalogLoadedMsg:
		m.loading = false
		m.fetchingMore = false
		m.hasMore = msg.Catalog.HasMore()
		m.proj.SetList(msg.Catalog.Items)
		if msg.Refreshed {
			m.status = "Catalog refreshed"
			m.statusError = false
			return m, ClearStatusCmd(3 * time.Second)
		}
		return m, nil

	case FilterUpdatedMsg:
		m.refs = msg.Items
		m.clampCursor()
		return m, WaitForFilterCmd(m.proj)

	case DetailLoadedMsg:
		m.loading = false
		m.detail = msg.Detail
		m.active = viewDetail
		return m, nil

	case CryPlayedMsg:
		m.status = "Playing cry: " + msg.Name
		m.statusError = false
		return m, ClearStatusCmd(3 * time.Second)

	case ErrMsg:
		m.loading = false
		m.fetchingMore = false
		m.logger.Error("tui error", "error", msg.Err, "context", msg.Context)
		m.status = msg.Error()
		m.statusError = true
		return m, ClearStatusCmd(5 * time.Second)

	case StatusMsg:
		m.status = msg.Message
		m.statusError = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Filter input captures keystrokes while active
	if m.filterActive {
		switch msg.String() {
		case "esc":
			m.filterActive = false
			m.filterInput.Blur()
			m.filterInput.SetValue("")
			m.proj.SetQuery("")
			return m, nil
		case "enter":
			m.filterActive = false
			m.filterInput.Blur()
			return m, nil
		}

		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.proj.SetQuery(m.filterInput.Value())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.active == viewList && m.cursor > 0 {
			m.cursor--
			m.scrollIntoView()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.active == viewList && m.cursor < len(m.refs)-1 {
			m.cursor++
			m.scrollIntoView()
		}
		return m, m.maybeFetchMore()

	case key.Matches(msg, m.keys.Filter):
		if m.active == viewList {
			m.filterActive = true
			m.filterInput.Focus()
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.active == viewList && m.cursor < len(m.refs) {
			m.loading = true
			return m, tea.Batch(m.spin.Tick, LoadDetailCmd(m.svc, m.refs[m.cursor].URL))
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.active == viewDetail {
			m.active = viewList
			m.detail = nil
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.active == viewList {
			m.loading = true
			return m, tea.Batch(m.spin.Tick, RefreshCatalogCmd(m.svc))
		}
		return m, nil

	case key.Matches(msg, m.keys.Cry):
		if m.active == viewDetail && m.detail != nil {
			return m, PlayCryCmd(m.launcher, m.detail)
		}
		return m, nil
	}

	return m, nil
}

// fetchAheadRows triggers catalog growth when the cursor gets this close
// to the end of an unfiltered list.
const fetchAheadRows = 5

// maybeFetchMore requests the next catalog page as the cursor approaches
// the end of the list. Filtered views never grow the catalog; the filter
// runs over what is already loaded.
func (m *Model) maybeFetchMore() tea.Cmd {
	if m.active != viewList || !m.hasMore || m.fetchingMore {
		return nil
	}
	if m.filterInput.Value() != "" {
		return nil
	}
	if m.cursor < len(m.refs)-fetchAheadRows {
		return nil
	}
	m.fetchingMore = true
	return FetchMoreCmd(m.svc, m.pageLimit)
}

// clampCursor keeps the cursor inside the (possibly shrunken) filtered view.
func (m *Model) clampCursor() {
	if m.cursor >= len(m.refs) {
		m.cursor = len(m.refs) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scrollIntoView()
}

// scrollIntoView adjusts the scroll offset so the cursor stays visible.
func (m *Model) scrollIntoView() {
	rows := m.visibleRows()
	if rows <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// visibleRows is the list capacity after header, filter, status and help lines.
func (m *Model) visibleRows() int {
	return m.height - 6
}
