package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/pricebook/internal/otel"
)

// eventFilter selects events from the log. Zero fields match everything.
type eventFilter struct {
	kind    string // full kind ("select.stale") or subsystem ("search")
	stage   string
	level   otel.Level
	gen     uint64
	session string // prefix
}

func (f eventFilter) match(e otel.Event) bool {
	if f.kind != "" && string(e.Kind) != f.kind && e.Kind.Subsystem() != f.kind {
		return false
	}
	if f.stage != "" && e.Stage != f.stage {
		return false
	}
	if f.level != "" && severity(e.Level) < severity(f.level) {
		return false
	}
	if f.gen != 0 && e.Gen != f.gen {
		return false
	}
	return f.session == "" || strings.HasPrefix(e.SessionID, f.session)
}

// severity orders levels for -level. Unknown levels sort with debug.
func severity(l otel.Level) int {
	switch l {
	case otel.LevelInfo:
		return 1
	case otel.LevelWarn:
		return 2
	case otel.LevelError:
		return 3
	}
	return 0
}

func runEvents() {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	tail := fs.Int("tail", 50, "Number of recent events to show")
	follow := fs.Bool("f", false, "Keep printing events as they are written")
	summary := fs.Bool("summary", false, "Summarise request outcomes instead of listing events")
	level := fs.String("level", "", "Minimum level: debug, info, warn, error")
	var flt eventFilter
	fs.StringVar(&flt.kind, "kind", "", "Event kind or subsystem (search, select.stale, ingest)")
	fs.StringVar(&flt.stage, "stage", "", "Only events recorded in this stage (idle, searching, results)")
	fs.Uint64Var(&flt.gen, "gen", 0, "Only events for this request generation")
	fs.StringVar(&flt.session, "session", "", "Only events whose session ID starts with this")
	fs.Parse(os.Args[1:])
	flt.level = otel.Level(*level)

	path := eventLogPath()
	f, err := os.Open(path)
	if err != nil {
		fatalf("no event log at %s (run pricebook or 'pb ingest' first): %v", path, err)
	}
	defer f.Close()

	if *summary {
		s := newEventSummary()
		if err := scanEvents(f, func(e otel.Event) {
			if flt.match(e) {
				s.add(e)
			}
		}); err != nil {
			fatalf("read %s: %v", path, err)
		}
		fmt.Println(s.render())
		return
	}

	events, err := tailEvents(f, *tail, flt)
	if err != nil {
		fatalf("read %s: %v", path, err)
	}
	for _, e := range events {
		fmt.Println(formatEvent(e))
	}
	if !*follow {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	followEvents(ctx, f, flt, os.Stdout)
}

// scanEvents decodes every JSONL line of r, skipping lines that are not events.
func scanEvents(r io.Reader, fn func(otel.Event)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for sc.Scan() {
		if e, ok := parseEvent(sc.Bytes()); ok {
			fn(e)
		}
	}
	return sc.Err()
}

func parseEvent(line []byte) (otel.Event, bool) {
	var e otel.Event
	if len(line) == 0 || json.Unmarshal(line, &e) != nil || e.Kind == "" {
		return otel.Event{}, false
	}
	return e, true
}

// tailEvents returns the last n events of r that match f, oldest first.
func tailEvents(r io.Reader, n int, f eventFilter) ([]otel.Event, error) {
	if n <= 0 {
		return nil, nil
	}
	ring := otel.NewRingBuffer(n)
	err := scanEvents(r, func(e otel.Event) {
		if f.match(e) {
			ring.Push(e)
		}
	})
	return ring.Snapshot(), err
}

// followEvents prints matching events appended to r until ctx is done.
// A line still being written is held until its newline arrives.
func followEvents(ctx context.Context, r io.Reader, f eventFilter, w io.Writer) {
	br := bufio.NewReader(r)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	var partial []byte
	for {
		chunk, err := br.ReadBytes('\n')
		partial = append(partial, chunk...)
		switch {
		case err == io.EOF:
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
			}
			continue
		case err != nil:
			return
		}
		if e, ok := parseEvent(partial); ok && f.match(e) {
			fmt.Fprintln(w, formatEvent(e))
		}
		partial = partial[:0]
	}
}

var levelStyles = map[otel.Level]lipgloss.Style{
	otel.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	otel.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	otel.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	otel.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

func formatEvent(e otel.Event) string {
	var b strings.Builder
	lvl := strings.ToUpper(string(e.Level))
	if lvl == "" {
		lvl = "?"
	}
	fmt.Fprintf(&b, "%s %s %-18s", e.Time.Format("15:04:05.000"), levelStyles[e.Level].Render(fmt.Sprintf("%-5s", lvl)), e.Kind)

	attr := func(k, v string) {
		if v != "" {
			b.WriteString(" " + k + "=" + v)
		}
	}
	if e.Gen > 0 {
		attr("gen", strconv.FormatUint(e.Gen, 10))
	}
	if e.Query != "" {
		attr("q", strconv.Quote(truncate(e.Query, 40)))
	}
	attr("stage", e.Stage)
	attr("file", e.File)
	if e.Code != 0 {
		attr("code", strconv.Itoa(e.Code))
	}
	if e.Count > 0 {
		attr("n", strconv.Itoa(e.Count))
	}
	if e.DurMs > 0 {
		attr("dur", msDuration(e.DurMs).String())
	}
	if e.Err != "" {
		attr("err", strconv.Quote(e.Err))
	}
	if e.Msg != "" {
		b.WriteString("  " + e.Msg)
	}
	return b.String()
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond)).Round(100 * time.Microsecond)
}

// requestStats counts the outcomes of one request family.
type requestStats struct {
	Started   int
	Completed int
	Failed    int
	Stale     int
	total     time.Duration
}

func (s requestStats) avg() time.Duration {
	if s.Completed == 0 {
		return 0
	}
	return s.total / time.Duration(s.Completed)
}

// summaryFamilies are the subsystems that follow the start/complete/error
// pattern. Ingest rejections count as failures.
var summaryFamilies = []string{"search", "select", "ingest"}

type eventSummary struct {
	families    map[string]*requestStats
	transitions int
	sessions    map[string]bool
}

func newEventSummary() *eventSummary {
	s := &eventSummary{families: map[string]*requestStats{}, sessions: map[string]bool{}}
	for _, name := range summaryFamilies {
		s.families[name] = &requestStats{}
	}
	return s
}

func (s *eventSummary) add(e otel.Event) {
	if e.SessionID != "" {
		s.sessions[e.SessionID] = true
	}
	if e.Kind == otel.KindStageTransition {
		s.transitions++
		return
	}
	st, ok := s.families[e.Kind.Subsystem()]
	if !ok {
		return
	}
	_, action, _ := strings.Cut(string(e.Kind), ".")
	switch action {
	case "start":
		st.Started++
	case "complete":
		st.Completed++
		st.total += msDuration(e.DurMs)
	case "error", "reject":
		st.Failed++
	case "stale":
		st.Stale++
	}
}

func (s *eventSummary) render() string {
	t := newTable("Request", "Started", "Completed", "Failed", "Stale", "Avg")
	stale := 0
	for _, name := range summaryFamilies {
		st := s.families[name]
		stale += st.Stale
		avg := "-"
		if st.Completed > 0 {
			avg = st.avg().String()
		}
		t.Row(name, strconv.Itoa(st.Started), strconv.Itoa(st.Completed), strconv.Itoa(st.Failed), strconv.Itoa(st.Stale), avg)
	}
	return fmt.Sprintf("%s\n%d sessions, %d stage transitions, %d stale responses dropped",
		t.String(), len(s.sessions), s.transitions, stale)
}
