package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/pricebook/internal/alert"
	"github.com/abelbrown/pricebook/internal/catalog"
	"github.com/abelbrown/pricebook/internal/logging"
	"github.com/abelbrown/pricebook/internal/otel"
	"github.com/abelbrown/pricebook/internal/search"
	"github.com/abelbrown/pricebook/internal/store"
)

// Mode is the active panel.
type Mode int

const (
	ModeSearch Mode = iota
	ModeIngest
)

// appChrome is the number of lines around the body: header, input,
// separator and status bar.
const appChrome = 4

// AppConfig wires the App. The command funcs are injected so the App never
// touches the store or the network directly.
type AppConfig struct {
	Search search.Machine

	// Ingest validates the spreadsheet at path and replaces the collection.
	// The returned Cmd must produce IngestDone.
	Ingest func(path string) tea.Cmd
	// LoadCollection reads the stored collection for the ingest preview.
	// The returned Cmd must produce CollectionLoaded.
	LoadCollection func() tea.Cmd

	Ring        *otel.RingBuffer
	Events      *otel.Logger
	RegistryURL string
	ShowDebug   bool
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold *store.Store. It receives data via messages.
type App struct {
	search         search.Machine
	ingest         func(path string) tea.Cmd
	loadCollection func() tea.Cmd
	ring           *otel.RingBuffer
	events         *otel.Logger
	registryURL    string

	mode       Mode
	queryInput textinput.Model
	pathInput  textinput.Model
	typed      string
	cursor     int
	results    viewport.Model
	spinner    spinner.Model
	help       help.Model
	alerts     alert.Surface

	batch     *store.Batch
	preview   []catalog.IngestedRow
	ingesting bool

	width     int
	height    int
	ready     bool
	showDebug bool
}

// NewApp creates the App in search mode.
func NewApp(cfg AppConfig) App {
	qi := textinput.New()
	qi.Placeholder = "Search trade, suppliers or products..."
	qi.Prompt = "> "
	qi.PromptStyle = promptStyle
	qi.TextStyle = inputStyle
	qi.Cursor.Style = cursorStyle
	qi.CharLimit = 128
	qi.Focus()

	pi := textinput.New()
	pi.Placeholder = "path/to/pricebook.xlsx"
	pi.Prompt = "file: "
	pi.PromptStyle = promptStyle
	pi.TextStyle = inputStyle
	pi.Cursor.Style = cursorStyle
	pi.CharLimit = 1024

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StatusBarKey

	return App{
		search:         cfg.Search,
		ingest:         cfg.Ingest,
		loadCollection: cfg.LoadCollection,
		ring:           cfg.Ring,
		events:         cfg.Events,
		registryURL:    cfg.RegistryURL,
		mode:           ModeSearch,
		queryInput:     qi,
		pathInput:      pi,
		results:        viewport.New(0, 0),
		spinner:        s,
		help:           help.New(),
		showDebug:      cfg.ShowDebug,
	}
}

// Init starts the spinner and loads the stored collection.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, textinput.Blink}
	if a.loadCollection != nil {
		cmds = append(cmds, a.loadCollection())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.queryInput.Width = msg.Width - 6
		a.pathInput.Width = msg.Width - 9
		a.help.Width = msg.Width
		a.results.Width = msg.Width
		a.results.Height = a.bodyHeight()
		a.refreshResults()
		return a, nil

	case search.CandidatesResolved:
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		a.clampCursor()
		return a, cmd

	case search.SelectionResolved:
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		if a.search.ShowResults() {
			a.refreshResults()
			a.results.GotoTop()
		}
		return a, cmd

	case IngestDone:
		a.ingesting = false
		if msg.Err != nil {
			a.raise(msg.Err)
			return a, nil
		}
		b := msg.Batch
		a.batch = &b
		a.pathInput.SetValue("")
		if a.loadCollection != nil {
			return a, a.loadCollection()
		}
		return a, nil

	case CollectionLoaded:
		if msg.Err != nil {
			if !errors.Is(msg.Err, store.ErrNoCollection) {
				logging.Warn("load collection", "err", msg.Err)
			}
			return a, nil
		}
		b := msg.Batch
		a.batch = &b
		a.preview = msg.Rows
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	// Debounce messages and anything else the search core understands.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	cmds = append(cmds, cmd)
	a.queryInput, cmd = a.queryInput.Update(msg)
	cmds = append(cmds, cmd)
	a.pathInput, cmd = a.pathInput.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		a.search.Stop()
		return a, tea.Quit
	}

	// An open alert swallows the key that dismisses it.
	if a.alerts.Active() != nil {
		a.alerts.Dismiss()
		return a, nil
	}

	switch {
	case key.Matches(msg, keys.Debug):
		a.showDebug = !a.showDebug
		return a, nil
	case key.Matches(msg, keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		a.results.Height = a.bodyHeight()
		return a, nil
	case key.Matches(msg, keys.Mode):
		return a.toggleMode()
	}

	if a.mode == ModeIngest {
		return a.handleIngestKey(msg)
	}
	return a.handleSearchKey(msg)
}

func (a App) toggleMode() (tea.Model, tea.Cmd) {
	if a.mode == ModeSearch {
		a.mode = ModeIngest
		a.queryInput.Blur()
		return a, a.pathInput.Focus()
	}
	a.mode = ModeSearch
	a.pathInput.Blur()
	return a, a.queryInput.Focus()
}

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Clear):
		a.queryInput.SetValue("")
		return a.setQuery("")

	case key.Matches(msg, keys.Enter):
		if cands, ok := a.search.Candidates(); ok && a.search.ShowCandidates() && len(cands) > 0 {
			m, cmd, err := a.search.Select(cands[a.cursor])
			if err != nil {
				logging.Debug("select ignored", "err", err)
				return a, nil
			}
			a.search = m
			return a, cmd
		}
		if !a.search.CanSubmit() {
			return a, nil
		}
		var cmd tea.Cmd
		a.search, cmd = a.search.Submit()
		a.cursor = 0
		return a, cmd

	case key.Matches(msg, keys.Up) && a.search.ShowCandidates():
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case key.Matches(msg, keys.Down) && a.search.ShowCandidates():
		if cands, _ := a.search.Candidates(); a.cursor < len(cands)-1 {
			a.cursor++
		}
		return a, nil

	case key.Matches(msg, keys.Up, keys.Down, keys.PageUp, keys.PageDown):
		if !a.search.ShowResults() {
			return a, nil
		}
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.queryInput, cmd = a.queryInput.Update(msg)
	if v := a.queryInput.Value(); v != a.typed {
		next, qcmd := a.setQuery(v)
		return next, tea.Batch(cmd, qcmd)
	}
	return a, cmd
}

func (a App) setQuery(v string) (App, tea.Cmd) {
	a.typed = v
	var cmd tea.Cmd
	a.search, cmd = a.search.SetQuery(v)
	a.cursor = 0
	return a, cmd
}

func (a App) handleIngestKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Clear):
		a.pathInput.SetValue("")
		return a, nil

	case key.Matches(msg, keys.Enter):
		path := strings.TrimSpace(a.pathInput.Value())
		if path == "" || a.ingesting || a.ingest == nil {
			return a, nil
		}
		a.ingesting = true
		return a, a.ingest(path)
	}

	var cmd tea.Cmd
	a.pathInput, cmd = a.pathInput.Update(msg)
	return a, cmd
}

// raise puts err on the alert surface, replacing any alert already shown.
func (a *App) raise(err error) {
	al, ok := alert.From(err)
	if !ok {
		al = &alert.Alert{Message: err.Error()}
	}
	a.alerts.Raise(al)
}

func (a *App) clampCursor() {
	cands, _ := a.search.Candidates()
	if a.cursor >= len(cands) {
		a.cursor = max(len(cands)-1, 0)
	}
}

func (a *App) refreshResults() {
	if a.width == 0 {
		return
	}
	a.results.SetContent(renderResults(a.search.Table(), a.width))
}

func (a App) bodyHeight() int {
	h := a.height - appChrome
	if a.help.ShowAll {
		h -= 3
	}
	return max(h, 1)
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if al := a.alerts.Active(); al != nil {
		return renderAlert(al, a.width, a.height)
	}

	if a.showDebug {
		overlay := debugOverlay(a.ring, a.width, a.height-1)
		if overlay == "" {
			overlay = EmptyState.Render("No event buffer attached.")
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, overlay),
			debugStatusBar(a.width),
		)
	}

	var input, body string
	switch a.mode {
	case ModeIngest:
		input = SearchBar.Render(a.pathInput.View())
		body = renderIngest(a.batch, a.preview, a.ingesting, a.spinner.View(), a.width)
	default:
		input = SearchBar.Render(a.queryInput.View())
		body = a.searchBody()
	}

	body = lipgloss.NewStyle().Height(a.bodyHeight()).MaxHeight(a.bodyHeight()).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		a.header(),
		input,
		"",
		body,
		a.statusBar(),
	)
}

func (a App) searchBody() string {
	switch {
	case a.search.ShowResults():
		return a.results.View()
	case a.search.ShowCandidates():
		return renderCandidates(a.search, a.cursor, a.width, a.spinner.View())
	}
	if a.search.Query() == "" {
		return EmptyState.Render("Type at least two characters to search the registry.")
	}
	return ""
}

func (a App) header() string {
	tab := func(label string, m Mode) string {
		if a.mode == m {
			return ActiveModeTab.Render(label)
		}
		return ModeTab.Render(label)
	}
	left := Title.Render("PRICEBOOK") + tab("SEARCH", ModeSearch) + tab("INGEST", ModeIngest)
	right := MutedText.Render(a.registryURL)
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a App) statusBar() string {
	stage := StatusBarKey.Render(strings.ToUpper(a.search.Stage().String()))
	if a.search.Pending() {
		stage = a.spinner.View() + " " + stage
	}
	return StatusBar.Width(a.width).Render(stage + "  " + a.help.View(keys))
}

// Mode returns the active panel (for testing).
func (a App) Mode() Mode {
	return a.mode
}

// Search returns the search state (for testing).
func (a App) Search() search.Machine {
	return a.search
}

// Cursor returns the candidate cursor (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Alert returns the active alert, or nil.
func (a App) Alert() *alert.Alert {
	return a.alerts.Active()
}
