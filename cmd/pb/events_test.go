package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/pricebook/internal/otel"
	"github.com/abelbrown/pricebook/internal/registry"
)

const sampleLog = `{"t":"2025-01-01T00:00:00Z","level":"info","kind":"search.start","session_id":"s1","gen":1,"query":"copper"}
not json
{"t":"2025-01-01T00:00:01Z","level":"info","kind":"search.complete","session_id":"s1","gen":1,"dur_ms":40,"count":2}

{"t":"2025-01-01T00:00:01Z","level":"info","kind":"stage.transition","session_id":"s1","stage":"searching","msg":"idle -> searching"}
{"t":"2025-01-01T00:00:02Z","level":"warn","kind":"ingest.reject","session_id":"s1","file":"prices.csv","code":400}
{"t":"2025-01-01T00:00:03Z","level":"info","kind":"search.start","session_id":"s2","gen":2}
{"t":"2025-01-01T00:00:04Z","level":"debug","kind":"search.stale","session_id":"s2","gen":1}
{"t":"2025-01-01T00:00:05Z","level":"debug","kind":"select.stale","session_id":"s2","gen":4}
`

func TestTailEventsKeepsLastMatching(t *testing.T) {
	got, err := tailEvents(strings.NewReader(sampleLog), 2, eventFilter{kind: "search"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Kind != otel.KindSearchStart || got[0].Gen != 2 || got[1].Kind != otel.KindSearchStale {
		t.Errorf("wrong tail: %+v, %+v", got[0], got[1])
	}
}

func TestEventFilter(t *testing.T) {
	stale := otel.Event{Kind: otel.KindSelectStale, Level: otel.LevelDebug, Gen: 4, SessionID: "abc123"}
	transition := otel.Event{Kind: otel.KindStageTransition, Level: otel.LevelInfo, Stage: "results"}

	tests := []struct {
		name string
		f    eventFilter
		e    otel.Event
		want bool
	}{
		{"zero filter", eventFilter{}, stale, true},
		{"subsystem", eventFilter{kind: "select"}, stale, true},
		{"full kind", eventFilter{kind: "select.stale"}, stale, true},
		{"other kind", eventFilter{kind: "search.stale"}, stale, false},
		{"stage", eventFilter{stage: "results"}, transition, true},
		{"wrong stage", eventFilter{stage: "idle"}, transition, false},
		{"min level", eventFilter{level: otel.LevelInfo}, stale, false},
		{"gen", eventFilter{gen: 4}, stale, true},
		{"other gen", eventFilter{gen: 5}, stale, false},
		{"session prefix", eventFilter{session: "abc"}, stale, true},
	}
	for _, tt := range tests {
		if got := tt.f.match(tt.e); got != tt.want {
			t.Errorf("%s: match = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSeverity(t *testing.T) {
	if !(severity(otel.LevelError) > severity(otel.LevelWarn) && severity(otel.LevelWarn) > severity(otel.LevelInfo) && severity(otel.LevelInfo) > severity(otel.LevelDebug)) {
		t.Error("levels should rank debug < info < warn < error")
	}
	if severity("bogus") != 0 {
		t.Error("unknown levels rank lowest")
	}
}

func TestSummaryCountsOutcomes(t *testing.T) {
	s := newEventSummary()
	if err := scanEvents(strings.NewReader(sampleLog), s.add); err != nil {
		t.Fatal(err)
	}

	search := s.families["search"]
	if search.Started != 2 || search.Completed != 1 || search.Stale != 1 {
		t.Errorf("search stats = %+v", *search)
	}
	if search.avg() != 40*time.Millisecond {
		t.Errorf("avg = %v, want 40ms", search.avg())
	}
	if s.families["select"].Stale != 1 || s.families["ingest"].Failed != 1 {
		t.Errorf("select %+v ingest %+v", *s.families["select"], *s.families["ingest"])
	}

	out := s.render()
	for _, want := range []string{"Stale", "search", "40ms", "2 sessions, 1 stage transitions, 2 stale responses dropped"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFormatEvent(t *testing.T) {
	e := otel.Event{
		Time:  time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC),
		Level: otel.LevelError,
		Kind:  otel.KindIngestReject,
		File:  "prices.csv",
		Code:  400,
		Err:   "Invalid File",
		DurMs: 1.2,
	}
	out := formatEvent(e)
	for _, want := range []string{"09:30:00.000", "ERROR", "ingest.reject", "file=prices.csv", "code=400", `err="Invalid File"`, "dur=1.2ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatEvent missing %q: %s", want, out)
		}
	}
}

func TestFollowEventsWaitsForWholeLines(t *testing.T) {
	r := strings.NewReader(`{"t":"2025-01-01T00:00:00Z","kind":"search.start","gen":9}` + "\n" + `{"kind":"search.comp`)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	followEvents(ctx, r, eventFilter{}, &out)

	if !strings.Contains(out.String(), "gen=9") {
		t.Errorf("complete line not printed: %q", out.String())
	}
	if strings.Count(out.String(), "\n") != 1 {
		t.Errorf("partial line should be held back: %q", out.String())
	}
}

func TestRecordTableClassifiesColumns(t *testing.T) {
	out := recordTable([]registry.Record{
		{"supplier_name": "Acme", "trade_code": "PL", "avg_price": 11.5, "product_count": 3.0},
		{"supplier_name": "Bolt", "trade_code": "PL", "avg_price": nil, "product_count": 1.0},
	})
	for _, want := range []string{"Supplier Name", "Avg Price", "$11.50", "Acme", "Bolt"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("copper pipe 15mm", 10); got != "copper ..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}
