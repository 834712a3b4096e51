package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/pricebook/internal/alert"
	"github.com/abelbrown/pricebook/internal/catalog"
	"github.com/abelbrown/pricebook/internal/query"
	"github.com/abelbrown/pricebook/internal/search"
	"github.com/abelbrown/pricebook/internal/store"
)

// stubRegistry answers every search with the same candidates and every
// selection with the same groups.
type stubRegistry struct {
	candidates []catalog.Candidate
	groups     []catalog.TradeGroup
}

func (s stubRegistry) Search(context.Context, string) ([]catalog.Candidate, error) {
	return s.candidates, nil
}

func (s stubRegistry) Results(context.Context, catalog.Selection) ([]catalog.TradeGroup, error) {
	return s.groups, nil
}

// mockCmd tracks calls to the injected command funcs.
type mockCmd struct {
	ingestPath string
	loads      int
}

func (m *mockCmd) ingest(path string) tea.Cmd {
	m.ingestPath = path
	return func() tea.Msg { return IngestDone{Err: alert.New(422, "Missing Columns", "Missing: Brand")} }
}

func (m *mockCmd) loadCollection() tea.Cmd {
	m.loads++
	return func() tea.Msg { return CollectionLoaded{Err: store.ErrNoCollection} }
}

func testApp(t *testing.T) (App, *mockCmd) {
	t.Helper()
	reg := stubRegistry{
		candidates: []catalog.Candidate{
			{Kind: catalog.KindTrade, ID: "PL", DisplayName: "PL"},
			{Kind: catalog.KindProduct, ID: "CP-15", DisplayName: "Copper Pipe"},
		},
		groups: []catalog.TradeGroup{{TradeCode: "PL", TradeName: "PL", Products: []catalog.ProductRecord{
			{ProductID: "1", ProductName: "Copper Pipe", ProductCode: "CP-15", Price: 12.5, SupplierName: "Acme"},
			{ProductID: "2", ProductName: "Copper Pipe", ProductCode: "CP-15", Price: 11, SupplierName: "Bolt"},
		}}},
	}
	// A long debounce keeps timers out of the way; searches are submitted by hand.
	in := query.NewInput(time.Hour)
	t.Cleanup(in.Stop)

	mock := &mockCmd{}
	app := NewApp(AppConfig{
		Search:         search.New(in, reg, search.Options{}),
		Ingest:         mock.ingest,
		LoadCollection: mock.loadCollection,
		RegistryURL:    "http://localhost:8080/",
	})
	m, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m.(App), mock
}

func press(t *testing.T, app App, msg tea.KeyMsg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := app.Update(msg)
	return m.(App), cmd
}

func typeText(t *testing.T, app App, s string) App {
	t.Helper()
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return app
}

// deliver runs cmd and feeds its message back into the app.
func deliver(t *testing.T, app App, cmd tea.Cmd) App {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, _ := app.Update(cmd())
	return m.(App)
}

func TestAppInit(t *testing.T) {
	app, mock := testApp(t)
	if cmd := app.Init(); cmd == nil {
		t.Fatal("Init should return a command")
	}
	if mock.loads != 1 {
		t.Errorf("Init should load the collection once, got %d", mock.loads)
	}
}

func TestAppViewBeforeSize(t *testing.T) {
	in := query.NewInput(time.Hour)
	defer in.Stop()
	app := NewApp(AppConfig{Search: search.New(in, stubRegistry{}, search.Options{})})
	if got := app.View(); got != "Loading..." {
		t.Errorf("View before WindowSizeMsg = %q", got)
	}
}

func TestAppTypingSetsQuery(t *testing.T) {
	app, _ := testApp(t)
	app = typeText(t, app, "copper")

	if got := app.Search().Query(); got != "copper" {
		t.Errorf("query = %q, want %q", got, "copper")
	}
	if app.Search().Stage() != search.StageIdle {
		t.Errorf("typing alone should not leave idle, got %v", app.Search().Stage())
	}
	if !strings.Contains(app.View(), "copper") {
		t.Error("search bar should show the typed query")
	}
}

func TestAppSearchSelectFlow(t *testing.T) {
	app, _ := testApp(t)
	app = typeText(t, app, "copper")

	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.Search().Stage() != search.StageSearching {
		t.Fatalf("enter should start a search, stage = %v", app.Search().Stage())
	}
	app = deliver(t, app, cmd)

	view := app.View()
	for _, want := range []string{"QUERY_MATCHES", "2 UNITS", "Copper Pipe", "TRADE"} {
		if !strings.Contains(view, want) {
			t.Errorf("candidate view missing %q:\n%s", want, view)
		}
	}

	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	if app.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", app.Cursor())
	}
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	if app.Cursor() != 1 {
		t.Errorf("cursor should stop at the last candidate, got %d", app.Cursor())
	}

	app, cmd = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if sel, ok := app.Search().Selecting(); !ok || sel.ID != "CP-15" {
		t.Fatalf("enter should select the highlighted candidate, got %+v %v", sel, ok)
	}
	if !strings.Contains(app.View(), "SCANNING") {
		t.Error("list header should read SCANNING while the selection resolves")
	}
	app = deliver(t, app, cmd)

	if app.Search().Stage() != search.StageResults {
		t.Fatalf("stage = %v, want results", app.Search().Stage())
	}
	view = app.View()
	for _, want := range []string{"Trade Info", "Product Name", "$12.50", "$11.00 BEST", "Bolt"} {
		if !strings.Contains(view, want) {
			t.Errorf("results view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "QUERY_MATCHES") {
		t.Error("candidate list must be hidden once results are shown")
	}
}

func TestAppEmptyCandidateSet(t *testing.T) {
	app, _ := testApp(t)
	app = typeText(t, app, "zz")
	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ := app.Update(search.CandidatesResolved{Gen: 0, Query: "zz"})
	app = m.(App)
	if _, ok := app.Search().Candidates(); ok {
		t.Fatal("a stale resolution must not be applied")
	}

	msg := cmd().(search.CandidatesResolved)
	msg.Candidates = []catalog.Candidate{}
	m, _ = app.Update(msg)
	app = m.(App)
	if !strings.Contains(app.View(), "No Matches Found in Registry") {
		t.Errorf("empty set should render the no-matches line:\n%s", app.View())
	}
}

func TestAppEscClears(t *testing.T) {
	app, _ := testApp(t)
	app = typeText(t, app, "copper")
	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	app = deliver(t, app, cmd)

	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.Search().Stage() != search.StageIdle {
		t.Errorf("esc should return to idle, got %v", app.Search().Stage())
	}
	if app.Search().Query() != "" {
		t.Errorf("esc should clear the query, got %q", app.Search().Query())
	}
	if strings.Contains(app.View(), "QUERY_MATCHES") {
		t.Error("candidates must not render after clearing")
	}
}

func TestAppEnterOnBlankQueryIsNoop(t *testing.T) {
	app, _ := testApp(t)
	app = typeText(t, app, "   ")
	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter on a blank query should not issue a request")
	}
	if app.Search().Stage() != search.StageIdle {
		t.Errorf("stage = %v, want idle", app.Search().Stage())
	}
}

func TestAppModeToggle(t *testing.T) {
	app, _ := testApp(t)
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	if app.Mode() != ModeIngest {
		t.Fatalf("tab should switch to ingest mode")
	}
	if !strings.Contains(app.View(), "No price book ingested") {
		t.Errorf("ingest panel should show the empty state:\n%s", app.View())
	}

	app = typeText(t, app, "abc")
	if app.Search().Query() != "" {
		t.Error("typing in ingest mode must not change the query")
	}

	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	if app.Mode() != ModeSearch {
		t.Error("tab should switch back to search mode")
	}
}

func TestAppIngestFailureRaisesAlert(t *testing.T) {
	app, mock := testApp(t)
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	app = typeText(t, app, "/tmp/prices.xlsx")

	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if mock.ingestPath != "/tmp/prices.xlsx" {
		t.Fatalf("ingest called with %q", mock.ingestPath)
	}
	if !strings.Contains(app.View(), "Validating") {
		t.Error("ingest panel should show progress while validating")
	}
	app = deliver(t, app, cmd)

	a := app.Alert()
	if a == nil || a.Code != 422 {
		t.Fatalf("alert = %+v, want Missing Columns", a)
	}
	view := app.View()
	if !strings.Contains(view, "Missing Columns") || !strings.Contains(view, "Missing: Brand") {
		t.Errorf("alert modal missing content:\n%s", view)
	}

	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if app.Alert() != nil {
		t.Error("any key should dismiss the alert")
	}
	if app.Mode() != ModeIngest {
		t.Error("the dismissing key must not be handled further")
	}
}

func TestAppAlertReplacesPrevious(t *testing.T) {
	app, _ := testApp(t)
	m, _ := app.Update(IngestDone{Err: alert.New(400, "Invalid File", "first")})
	m, _ = m.Update(IngestDone{Err: errors.New("plain failure")})
	app = m.(App)

	a := app.Alert()
	if a == nil || a.Message != "plain failure" {
		t.Fatalf("alert = %+v, want the latest failure", a)
	}
	if a.DisplayTitle() != alert.DefaultTitle || a.DisplayCode() != alert.DefaultCode {
		t.Errorf("non-alert errors should use the default title and code, got %q %q", a.DisplayTitle(), a.DisplayCode())
	}
}

func TestAppIngestSuccessShowsPreview(t *testing.T) {
	app, mock := testApp(t)
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyTab})

	batch := store.Batch{
		ID: "b1", FileName: "book.xlsx", Sheet: "Sheet1",
		Headers: []string{"Supplier Name", "Price"}, RowCount: 1, Size: 2048,
		IngestedAt: time.Now().Add(-2 * time.Minute),
	}
	m, cmd := app.Update(IngestDone{Batch: batch})
	app = m.(App)
	if cmd == nil || mock.loads != 1 {
		t.Fatal("a successful ingestion should reload the collection")
	}

	m, _ = app.Update(CollectionLoaded{Batch: batch, Rows: []catalog.IngestedRow{{"Supplier Name": "Acme", "Price": "12.50"}}})
	app = m.(App)
	view := app.View()
	for _, want := range []string{"CURRENT PRICE BOOK", "book.xlsx", "1 rows", "2.0 kB", "2 minutes ago", "Supplier Name", "Acme", "12.50"} {
		if !strings.Contains(view, want) {
			t.Errorf("ingest view missing %q:\n%s", want, view)
		}
	}
}

func TestAppDebugToggle(t *testing.T) {
	app, _ := testApp(t)
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlT})
	if !strings.Contains(app.View(), "[EVENTS]") {
		t.Error("ctrl+t should open the event overlay")
	}
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlT})
	if strings.Contains(app.View(), "[EVENTS]") {
		t.Error("ctrl+t should close the event overlay")
	}
}

func TestAppQuit(t *testing.T) {
	app, _ := testApp(t)
	_, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}
