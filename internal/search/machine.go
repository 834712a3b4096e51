// Package search is the interaction core of pricebook: it resolves a query
// into candidates, resolves a chosen candidate into trade-grouped results,
// and owns the idle -> searching -> results stage.
//
// Machine is a value type updated Elm-style. Network calls run as tea.Cmds
// and come back as CandidatesResolved / SelectionResolved messages stamped
// with the generation that issued them. A message whose generation is no
// longer current is dropped, so the most recently issued request always wins
// regardless of arrival order.
//
// Visibility is derived from the stage only. The candidate list is shown in
// StageSearching and the result table in StageResults, never both.
package search

import (
	"context"
	"errors"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/pricebook/internal/catalog"
	"github.com/abelbrown/pricebook/internal/grouping"
	"github.com/abelbrown/pricebook/internal/logging"
	"github.com/abelbrown/pricebook/internal/otel"
	"github.com/abelbrown/pricebook/internal/query"
)

// Stage is the interaction stage. Exactly one is active.
type Stage int

const (
	StageIdle Stage = iota
	StageSearching
	StageResults
)

func (s Stage) String() string {
	switch s {
	case StageSearching:
		return "searching"
	case StageResults:
		return "results"
	}
	return "idle"
}

// ErrUnknownCandidate is returned by Select for a candidate that is not in
// the current candidate set.
var ErrUnknownCandidate = errors.New("candidate is not in the current set")

// ErrNotSearching is returned by Select outside StageSearching.
var ErrNotSearching = errors.New("no candidate list is open")

// Registry resolves queries and selections.
// *registry.Client satisfies it.
type Registry interface {
	Search(ctx context.Context, query string) ([]catalog.Candidate, error)
	Results(ctx context.Context, sel catalog.Selection) ([]catalog.TradeGroup, error)
}

// CandidatesResolved is the outcome of a candidate resolution.
type CandidatesResolved struct {
	Gen        uint64
	Query      string
	Candidates []catalog.Candidate
	Dur        time.Duration
	Err        error
}

// SelectionResolved is the outcome of a selection detail fetch.
type SelectionResolved struct {
	Gen       uint64
	Candidate catalog.Candidate
	Groups    []catalog.TradeGroup
	Dur       time.Duration
	Err       error
}

// Options configure a Machine. Zero values are usable.
type Options struct {
	// Context is the parent of every request context. Defaults to Background.
	Context context.Context
	// Timeout bounds each request. Zero means no extra deadline.
	Timeout time.Duration
	// Events receives search/select/stage events. Nil discards them.
	Events *otel.Logger
}

// Machine holds the active query, candidate set and result set.
type Machine struct {
	input   *query.Input
	reg     Registry
	events  *otel.Logger
	ctx     context.Context
	timeout time.Duration

	stage      Stage
	candidates []catalog.Candidate // nil: not resolved; empty: no matches
	results    []catalog.TradeGroup
	table      grouping.Table

	searchGen     uint64
	selectGen     uint64
	searchPending bool
	searchQuery   string // query of the in-flight or last applied search
	selecting     *catalog.Candidate
}

// New creates a Machine in StageIdle.
func New(input *query.Input, reg Registry, opts Options) Machine {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return Machine{
		input:   input,
		reg:     reg,
		events:  opts.Events,
		ctx:     ctx,
		timeout: opts.Timeout,
		table:   grouping.Group(nil),
	}
}

// SetQuery stores a new raw query value. The current candidate set is
// discarded first and any in-flight search or selection becomes stale. A
// blank value returns to StageIdle immediately and drops the result set.
func (m Machine) SetQuery(value string) (Machine, tea.Cmd) {
	m.candidates = nil
	m.searchGen++
	m.searchPending = false
	m.dropSelection()

	if m.input.Set(value) == query.SignalCleared {
		m.results = nil
		m.table = grouping.Group(nil)
		m.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindQueryCleared, Comp: "search", Stage: m.stage.String()})
		m.transition(StageIdle)
	}
	return m, nil
}

// Submit is the manual search action. An empty query is a no-op.
func (m Machine) Submit() (Machine, tea.Cmd) {
	q, err := m.input.Submit()
	if err != nil {
		return m, nil
	}
	return m.beginSearch(q)
}

// CanSubmit reports whether the search action is enabled: the query is not
// blank and no resolution is in flight.
func (m Machine) CanSubmit() bool {
	return m.input.Trimmed() != "" && !m.searchPending
}

// Select requests results for c, which must be one of the current candidates.
// A newer Select supersedes any selection still in flight.
func (m Machine) Select(c catalog.Candidate) (Machine, tea.Cmd, error) {
	if m.stage != StageSearching {
		return m, nil, ErrNotSearching
	}
	if !slices.ContainsFunc(m.candidates, c.Same) {
		return m, nil, ErrUnknownCandidate
	}

	m.selectGen++
	gen := m.selectGen
	sel := c
	m.selecting = &sel
	m.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSelectStart, Comp: "search", Gen: gen, Query: c.DisplayName, Msg: string(c.Kind) + ":" + c.ID})

	reg, ctx, timeout := m.reg, m.ctx, m.timeout
	return m, func() tea.Msg {
		rctx, cancel := withTimeout(ctx, timeout)
		defer cancel()
		start := time.Now()
		groups, err := reg.Results(rctx, catalog.NewSelection(c))
		return SelectionResolved{Gen: gen, Candidate: c, Groups: groups, Dur: time.Since(start), Err: err}
	}, nil
}

// Update applies debounce and resolution messages. Other messages are ignored.
func (m Machine) Update(msg tea.Msg) (Machine, tea.Cmd) {
	switch msg := msg.(type) {
	case query.Ready:
		if !m.input.Current(msg.Gen) {
			return m, nil
		}
		if m.stage != StageIdle {
			// Auto-submit only leaves idle; later edits need a manual submit.
			return m, nil
		}
		m.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindQueryDebounce, Comp: "search", Query: msg.Query})
		return m.beginSearch(msg.Query)

	case CandidatesResolved:
		return m.applyCandidates(msg), nil

	case SelectionResolved:
		return m.applySelection(msg), nil
	}
	return m, nil
}

func (m Machine) beginSearch(q string) (Machine, tea.Cmd) {
	m.searchGen++
	gen := m.searchGen
	m.searchPending = true
	m.searchQuery = q
	m.candidates = nil
	m.dropSelection()
	m.transition(StageSearching)
	m.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchStart, Comp: "search", Gen: gen, Query: q})

	reg, ctx, timeout := m.reg, m.ctx, m.timeout
	return m, func() tea.Msg {
		rctx, cancel := withTimeout(ctx, timeout)
		defer cancel()
		start := time.Now()
		cands, err := reg.Search(rctx, q)
		return CandidatesResolved{Gen: gen, Query: q, Candidates: cands, Dur: time.Since(start), Err: err}
	}
}

func (m Machine) applyCandidates(msg CandidatesResolved) Machine {
	if msg.Gen != m.searchGen {
		m.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchStale, Comp: "search", Gen: msg.Gen, Query: msg.Query})
		return m
	}
	m.searchPending = false

	if msg.Err != nil {
		// Resolution failures are logged, never raised to the alert surface.
		logging.Warn("candidate resolution failed", "query", msg.Query, "err", msg.Err)
		m.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindSearchError, Comp: "search", Gen: msg.Gen, Query: msg.Query, Dur: msg.Dur, Err: msg.Err.Error()})
		return m
	}

	m.candidates = msg.Candidates
	if m.candidates == nil {
		m.candidates = []catalog.Candidate{}
	}
	m.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchComplete, Comp: "search", Gen: msg.Gen, Query: msg.Query, Dur: msg.Dur, Count: len(m.candidates)})
	return m
}

func (m Machine) applySelection(msg SelectionResolved) Machine {
	if msg.Gen != m.selectGen {
		m.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSelectStale, Comp: "search", Gen: msg.Gen, Query: msg.Candidate.DisplayName})
		return m
	}
	m.selecting = nil

	if msg.Err != nil {
		logging.Warn("selection fetch failed", "kind", msg.Candidate.Kind, "id", msg.Candidate.ID, "err", msg.Err)
		m.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindSelectError, Comp: "search", Gen: msg.Gen, Query: msg.Candidate.DisplayName, Dur: msg.Dur, Err: msg.Err.Error()})
		return m
	}

	m.candidates = nil
	m.results = msg.Groups
	if m.results == nil {
		m.results = []catalog.TradeGroup{}
	}
	m.table = grouping.Group(m.results)
	m.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSelectComplete, Comp: "search", Gen: msg.Gen, Query: msg.Candidate.DisplayName, Dur: msg.Dur, Count: len(m.table.Rows)})
	m.transition(StageResults)
	return m
}

// dropSelection makes any selection still in flight stale. Its candidate
// came from a set that no longer exists.
func (m *Machine) dropSelection() {
	m.selectGen++
	m.selecting = nil
}

func (m *Machine) transition(to Stage) {
	if m.stage == to {
		return
	}
	from := m.stage
	m.stage = to
	logging.Debug("stage transition", "from", from, "to", to)
	m.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStageTransition, Comp: "search", Stage: to.String(), Msg: from.String() + " -> " + to.String()})
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Stop cancels the pending debounce. Call on teardown.
func (m Machine) Stop() {
	m.input.Stop()
}

// Stage returns the current interaction stage.
func (m Machine) Stage() Stage { return m.stage }

// Query returns the trimmed query value.
func (m Machine) Query() string { return m.input.Trimmed() }

// SearchedQuery returns the query the current candidate set belongs to.
func (m Machine) SearchedQuery() string { return m.searchQuery }

// Candidates returns the candidate set and whether it has been resolved.
// A resolved set may be empty ("no matches").
func (m Machine) Candidates() ([]catalog.Candidate, bool) {
	return m.candidates, m.candidates != nil
}

// Results returns the active trade-grouped result set, or nil.
func (m Machine) Results() []catalog.TradeGroup { return m.results }

// Table returns the grouped display table of the active result set.
func (m Machine) Table() grouping.Table { return m.table }

// Pending reports whether any resolution is in flight.
func (m Machine) Pending() bool { return m.searchPending || m.selecting != nil }

// Resolving reports whether a candidate resolution is in flight.
func (m Machine) Resolving() bool { return m.searchPending }

// Selecting returns the candidate whose results are being fetched.
func (m Machine) Selecting() (catalog.Candidate, bool) {
	if m.selecting == nil {
		return catalog.Candidate{}, false
	}
	return *m.selecting, true
}

// ShowCandidates reports whether the candidate list is the active view.
func (m Machine) ShowCandidates() bool { return m.stage == StageSearching }

// ShowResults reports whether the result table is the active view. An empty
// result set still renders nothing.
func (m Machine) ShowResults() bool { return m.stage == StageResults }
