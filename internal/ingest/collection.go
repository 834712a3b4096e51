package ingest

import (
	"time"

	"github.com/abelbrown/pricebook/internal/alert"
	"github.com/abelbrown/pricebook/internal/catalog"
	"github.com/abelbrown/pricebook/internal/logging"
	"github.com/abelbrown/pricebook/internal/otel"
	"github.com/abelbrown/pricebook/internal/store"
)

// Collection receives accepted spreadsheets. *store.Store satisfies it.
type Collection interface {
	ReplaceCollection(meta store.Batch, rows []catalog.IngestedRow) (store.Batch, error)
}

// IntoCollection ingests the spreadsheet at path and, if it is accepted,
// replaces dst's collection with it. Every error is an *alert.Alert; a
// rejected file leaves the previous collection untouched.
func IntoCollection(path string, dst Collection, events *otel.Logger) (store.Batch, error) {
	start := time.Now()
	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindIngestStart, Comp: "ingest", File: path})

	res, err := IngestFile(path)
	if err != nil {
		a, _ := alert.From(err)
		logging.Warn("spreadsheet rejected", "file", path, "code", a.Code, "reason", a.Message)
		events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindIngestReject, Comp: "ingest", File: path, Code: a.Code, Msg: a.Title, Err: a.Message, Dur: time.Since(start)})
		return store.Batch{}, err
	}

	batch, err := dst.ReplaceCollection(store.Batch{
		FileName: res.Name,
		Sheet:    res.Sheet,
		Headers:  res.Headers,
		Size:     res.Size,
	}, res.Rows)
	if err != nil {
		logging.Error("store collection", "file", path, "err", err)
		events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindStoreError, Comp: "ingest", File: path, Err: err.Error()})
		return store.Batch{}, alert.New(CodeProcessingError, "Processing Error", "Failed to save file content")
	}

	logging.Info("collection replaced", "file", res.Name, "rows", batch.RowCount, "batch", batch.ID)
	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindIngestComplete, Comp: "ingest", File: res.Name, Count: batch.RowCount, Dur: time.Since(start)})
	return batch, nil
}
