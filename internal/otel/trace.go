package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled is read on every UI message, so it is a single atomic load.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("PRICEBOOK_TRACE") != "")
}

// TraceEnabled reports whether PRICEBOOK_TRACE is set.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// setTraceEnabled overrides the flag in tests.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
