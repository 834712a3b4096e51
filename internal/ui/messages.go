// Package ui provides the Bubble Tea TUI for pricebook.
package ui

import (
	"github.com/abelbrown/pricebook/internal/catalog"
	"github.com/abelbrown/pricebook/internal/store"
)

// IngestDone is sent when a spreadsheet ingestion finishes. Err is an
// *alert.Alert for every validation failure.
type IngestDone struct {
	Batch store.Batch
	Err   error
}

// CollectionLoaded is sent when the stored collection has been read for
// the ingest preview. Err wraps store.ErrNoCollection before the first
// ingestion.
type CollectionLoaded struct {
	Batch store.Batch
	Rows  []catalog.IngestedRow
	Err   error
}
