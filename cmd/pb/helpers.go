package main

import (
	"fmt"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/abelbrown/pricebook/internal/config"
	"github.com/abelbrown/pricebook/internal/grouping"
	"github.com/abelbrown/pricebook/internal/logging"
	"github.com/abelbrown/pricebook/internal/otel"
	"github.com/abelbrown/pricebook/internal/registry"
	"github.com/abelbrown/pricebook/internal/store"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// loadConfig loads the config and points the human log at stderr.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logging.Logger = logging.New(os.Stderr, cfg.Log.Level)
	return cfg
}

// eventLogPath returns the path to events.jsonl.
func eventLogPath() string {
	return filepath.Join(config.DataDir(), "events.jsonl")
}

// openEvents opens the shared event log or fatals.
func openEvents() *otel.Logger {
	events, err := otel.OpenFile(eventLogPath())
	if err != nil {
		log.Fatalf("failed to open event log: %v", err)
	}
	return events
}

// openDB opens the store or fatals.
func openDB(cfg *config.Config) *store.Store {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	return st
}

// newClient creates a registry client from config or fatals.
func newClient(cfg *config.Config) *registry.Client {
	c, err := registry.New(cfg.Registry.BaseURL, registry.Options{
		Timeout:    cfg.Registry.Timeout(),
		RatePerSec: cfg.Registry.RatePerSec,
		Retries:    cfg.Registry.Retries,
	})
	if err != nil {
		log.Fatalf("invalid registry URL: %v", err)
	}
	return c
}

// newTable returns a bordered table with the CLI's header style.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// recordTable renders free-form records. Columns are the sorted union of
// record keys, classified by name like the result table.
func recordTable(recs []registry.Record) string {
	keySet := map[string]bool{}
	for _, r := range recs {
		for k := range r {
			keySet[k] = true
		}
	}
	cols := grouping.Visible(grouping.InferColumns(slices.Sorted(maps.Keys(keySet))))

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Title
	}
	t := newTable(headers...)
	for _, r := range recs {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = grouping.FormatCell(c.Role, r[c.Key])
		}
		t.Row(cells...)
	}
	return t.String()
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
