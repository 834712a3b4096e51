// Package query turns raw keystrokes into a debounced, trimmed search query.
//
// Input owns exactly one timer. Every Set stops the previous timer before
// arming a new one, and Stop cancels it on teardown, so a session never
// leaks timers. When the timer fires, Input delivers a Ready message through
// the attached sender (tea.Program.Send in the TUI).
package query

import (
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// Product constants.
const (
	// DebounceDelay is how long the value must stay unchanged before an
	// automatic search is requested.
	DebounceDelay = 500 * time.Millisecond

	// MinAutoLength is the shortest trimmed query (in runes) that triggers
	// an automatic search. Manual submission only requires a non-empty query.
	MinAutoLength = 2
)

// ErrEmptyQuery is returned by Submit when the trimmed value is empty.
var ErrEmptyQuery = errors.New("query is empty")

// Signal is what a value change means for the interaction stage.
type Signal int

const (
	// SignalChanged: the value is non-empty; a debounce may be pending.
	SignalChanged Signal = iota
	// SignalCleared: the trimmed value became empty; return to idle now.
	SignalCleared
)

// Ready is delivered when the debounce window elapses on a query long
// enough to auto-submit. Gen identifies the edit that armed the timer.
type Ready struct {
	Query string
	Gen   uint64
}

// Input is the query normalizer. Safe for concurrent use: the timer
// callback runs on its own goroutine.
type Input struct {
	mu    sync.Mutex
	value string
	gen   uint64
	delay time.Duration
	timer *time.Timer
	send  func(tea.Msg)
}

// NewInput creates an Input with the given debounce delay.
// Pass DebounceDelay outside tests.
func NewInput(delay time.Duration) *Input {
	return &Input{delay: delay}
}

// Attach sets where Ready messages go. Until attached, elapsed debounces
// are dropped.
func (in *Input) Attach(send func(tea.Msg)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.send = send
}

// Set stores a new raw value, cancelling any pending debounce. If the trimmed
// value is empty it returns SignalCleared immediately; otherwise it arms a
// fresh timer when the trimmed value is at least MinAutoLength runes.
func (in *Input) Set(value string) Signal {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.stopLocked()
	in.gen++
	in.value = value

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return SignalCleared
	}
	if utf8.RuneCountInString(trimmed) >= MinAutoLength {
		gen := in.gen
		in.timer = time.AfterFunc(in.delay, func() { in.fire(gen, trimmed) })
	}
	return SignalChanged
}

func (in *Input) fire(gen uint64, trimmed string) {
	in.mu.Lock()
	if gen != in.gen {
		in.mu.Unlock()
		return
	}
	in.timer = nil
	send := in.send
	in.mu.Unlock()

	if send != nil {
		send(Ready{Query: trimmed, Gen: gen})
	}
}

// Submit is the manual search action. It bypasses and cancels the debounce
// timer, and fails with ErrEmptyQuery when there is nothing to search for.
func (in *Input) Submit() (string, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	trimmed := strings.TrimSpace(in.value)
	if trimmed == "" {
		return "", ErrEmptyQuery
	}
	in.stopLocked()
	return trimmed, nil
}

// Current reports whether gen is the latest edit. A Ready already queued
// when a newer keystroke arrived is stale.
func (in *Input) Current(gen uint64) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return gen == in.gen
}

// Value returns the raw current value.
func (in *Input) Value() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.value
}

// Trimmed returns the current value without surrounding whitespace.
func (in *Input) Trimmed() string {
	return strings.TrimSpace(in.Value())
}

// Pending reports whether a debounce timer is armed.
func (in *Input) Pending() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.timer != nil
}

// Stop cancels any pending debounce. Call on teardown.
func (in *Input) Stop() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.stopLocked()
}

func (in *Input) stopLocked() {
	if in.timer != nil {
		in.timer.Stop()
		in.timer = nil
	}
}
