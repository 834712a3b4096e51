package main

import (
	"context"
	"log"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/pricebook/internal/config"
	"github.com/abelbrown/pricebook/internal/ingest"
	"github.com/abelbrown/pricebook/internal/logging"
	"github.com/abelbrown/pricebook/internal/otel"
	"github.com/abelbrown/pricebook/internal/query"
	"github.com/abelbrown/pricebook/internal/registry"
	"github.com/abelbrown/pricebook/internal/search"
	"github.com/abelbrown/pricebook/internal/store"
	"github.com/abelbrown/pricebook/internal/ui"
)

// ringSize is the number of recent events kept for the debug overlay.
const ringSize = 256

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dataDir := config.DataDir()
	if err := logging.Init(filepath.Join(dataDir, "logs"), cfg.Log.Level); err != nil {
		log.Fatalf("Failed to init logging: %v", err)
	}
	defer logging.Close()

	events, err := otel.OpenFile(filepath.Join(dataDir, "events.jsonl"))
	if err != nil {
		log.Fatalf("Failed to open event log: %v", err)
	}
	defer events.Close()
	ring := otel.NewRingBuffer(ringSize)
	events.SetRingBuffer(ring)
	events.Info(otel.KindStartup, "main", "pricebook started")

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	client, err := registry.New(cfg.Registry.BaseURL, registry.Options{
		Timeout:    cfg.Registry.Timeout(),
		RatePerSec: cfg.Registry.RatePerSec,
		Retries:    cfg.Registry.Retries,
	})
	if err != nil {
		log.Fatalf("Invalid registry URL: %v", err)
	}

	input := query.NewInput(query.DebounceDelay)
	defer input.Stop()

	machine := search.New(input, client, search.Options{
		Context: ctx,
		Timeout: cfg.Registry.Timeout(),
		Events:  events,
	})

	app := ui.NewApp(ui.AppConfig{
		Search: machine,
		Ingest: func(path string) tea.Cmd {
			return func() tea.Msg {
				batch, err := ingest.IntoCollection(path, st, events)
				return ui.IngestDone{Batch: batch, Err: err}
			}
		},
		LoadCollection: func() tea.Cmd {
			return func() tea.Msg {
				batch, rows, err := st.Collection(cfg.UI.PreviewRows)
				return ui.CollectionLoaded{Batch: batch, Rows: rows, Err: err}
			}
		},
		Ring:        ring,
		Events:      events,
		RegistryURL: client.BaseURL(),
		ShowDebug:   cfg.UI.ShowDebug,
	})

	program := tea.NewProgram(app, tea.WithAltScreen())
	input.Attach(program.Send)

	// Run UI (blocks until quit)
	if _, err := program.Run(); err != nil {
		logging.Error("program exited", "err", err)
		log.Printf("Error running program: %v", err)
	}

	events.Info(otel.KindShutdown, "main", "pricebook stopped")
}
