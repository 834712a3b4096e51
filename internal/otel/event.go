// Package otel records structured pricebook events.
//
// Events are typed structs written as JSONL by an asynchronous Logger.
// Search and selection failures land here instead of on the alert surface,
// so this log is the place to look when the UI "shows nothing".
// An optional RingBuffer keeps recent events for the TUI debug overlay.
package otel

import (
	"encoding/json"
	"strings"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Query input
	KindQueryDebounce EventKind = "query.debounce"
	KindQueryCleared  EventKind = "query.cleared"

	// Candidate resolution
	KindSearchStart    EventKind = "search.start"
	KindSearchComplete EventKind = "search.complete"
	KindSearchError    EventKind = "search.error"
	KindSearchStale    EventKind = "search.stale"

	// Selection detail fetch
	KindSelectStart    EventKind = "select.start"
	KindSelectComplete EventKind = "select.complete"
	KindSelectError    EventKind = "select.error"
	KindSelectStale    EventKind = "select.stale"

	// Interaction stage changes
	KindStageTransition EventKind = "stage.transition"

	// Spreadsheet ingestion
	KindIngestStart    EventKind = "ingest.start"
	KindIngestComplete EventKind = "ingest.complete"
	KindIngestReject   EventKind = "ingest.reject"

	// Store and local registry
	KindStoreError EventKind = "store.error"
	KindServeReq   EventKind = "serve.request"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Message tracing, only when PRICEBOOK_TRACE is set
	KindMsgReceived EventKind = "trace.msg_received"
)

// Subsystem returns the part of the kind before the first dot.
func (k EventKind) Subsystem() string {
	s, _, _ := strings.Cut(string(k), ".")
	return s
}

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // "search", "ui", "ingest", "registry", "serve"
	SessionID string         `json:"session_id,omitempty"` // same for an entire run
	Gen       uint64         `json:"gen,omitempty"`        // request generation for last-request-wins
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Query     string         `json:"query,omitempty"`
	Stage     string         `json:"stage,omitempty"`
	File      string         `json:"file,omitempty"`
	Code      int            `json:"code,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
