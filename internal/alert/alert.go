// Package alert holds the single global alert surface.
//
// Only user-facing failures travel here (spreadsheet ingestion). Search and
// selection transport errors are logged and never raised.
package alert

import (
	"errors"
	"fmt"
	"strconv"
)

// Defaults shown when an alert arrives without a title or code.
const (
	DefaultTitle = "Input Validation Failed"
	DefaultCode  = "ERR_FILE_PARSE"
)

// Alert is the payload shown to the user: {title, message, code}.
// It implements error so validators can return it directly.
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// New returns an alert with the given fields.
func New(code int, title, message string) *Alert {
	return &Alert{Title: title, Message: message, Code: code}
}

func (a *Alert) Error() string {
	return fmt.Sprintf("%s (%d): %s", a.DisplayTitle(), a.Code, a.Message)
}

// DisplayTitle returns the title, falling back to DefaultTitle.
func (a *Alert) DisplayTitle() string {
	if a.Title == "" {
		return DefaultTitle
	}
	return a.Title
}

// DisplayCode returns the numeric code as text, falling back to DefaultCode.
func (a *Alert) DisplayCode() string {
	if a.Code == 0 {
		return DefaultCode
	}
	return strconv.Itoa(a.Code)
}

// From extracts an *Alert from err's chain.
func From(err error) (*Alert, bool) {
	var a *Alert
	if errors.As(err, &a) {
		return a, true
	}
	return nil, false
}

// Surface displays at most one alert. A new alert replaces the current one;
// there is no queue.
type Surface struct {
	active *Alert
}

// Raise makes a the active alert.
func (s *Surface) Raise(a *Alert) {
	s.active = a
}

// Dismiss clears the active alert.
func (s *Surface) Dismiss() {
	s.active = nil
}

// Active returns the current alert, or nil.
func (s Surface) Active() *Alert {
	return s.active
}
