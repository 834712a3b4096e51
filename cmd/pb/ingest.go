package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/pricebook/internal/alert"
	"github.com/abelbrown/pricebook/internal/ingest"
	"github.com/abelbrown/pricebook/internal/store"
)

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	dryRun := fs.Bool("n", false, "Validate only, do not replace the stored price book")
	fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pb ingest [-n] <file.xlsx|file.xls>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	if *dryRun {
		res, err := ingest.IngestFile(path)
		if err != nil {
			exitAlert(err)
		}
		fmt.Printf("%s: %s rows, %d columns, sheet %q\n", res.Name, humanize.Comma(int64(len(res.Rows))), len(res.Headers), res.Sheet)
		return
	}

	cfg := loadConfig()
	st := openDB(cfg)
	defer st.Close()
	events := openEvents()
	defer events.Close()

	batch, err := ingest.IntoCollection(path, st, events)
	if err != nil {
		events.Close()
		st.Close()
		exitAlert(err)
	}
	fmt.Printf("Stored %s: %s rows (%s), batch %s\n",
		batch.FileName, humanize.Comma(int64(batch.RowCount)), humanize.Bytes(uint64(batch.Size)), batch.ID)
}

// exitAlert prints an ingestion alert as title, code and message, then exits.
func exitAlert(err error) {
	a, ok := alert.From(err)
	if !ok {
		fatalf("%v", err)
	}
	fmt.Fprintf(os.Stderr, "%s [%s]\n  %s\n", a.DisplayTitle(), a.DisplayCode(), a.Message)
	os.Exit(1)
}

func runRows() {
	fs := flag.NewFlagSet("rows", flag.ExitOnError)
	limit := fs.Int("limit", 0, "Rows to show (default: ui.preview_rows from config)")
	cols := fs.Int("cols", 6, "Maximum columns to show")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	st := openDB(cfg)
	defer st.Close()

	n := *limit
	if n <= 0 {
		n = cfg.UI.PreviewRows
	}
	batch, rows, err := st.Collection(n)
	if errors.Is(err, store.ErrNoCollection) {
		fmt.Println("No price book ingested. Run 'pb ingest <file>' first.")
		return
	}
	if err != nil {
		fatalf("read collection: %v", err)
	}

	fmt.Printf("%s (sheet %q): %s rows, %s, ingested %s\n",
		batch.FileName, batch.Sheet, humanize.Comma(int64(batch.RowCount)),
		humanize.Bytes(uint64(batch.Size)), humanize.Time(batch.IngestedAt))

	headers := batch.Headers
	if *cols > 0 && len(headers) > *cols {
		headers = headers[:*cols]
	}
	t := newTable(headers...)
	for _, r := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = truncate(r.Get(h), 30)
		}
		t.Row(cells...)
	}
	fmt.Println(t.String())
	if hidden := len(batch.Headers) - len(headers); hidden > 0 {
		fmt.Printf("+%d more columns\n", hidden)
	}
}
