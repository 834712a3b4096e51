package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abelbrown/pricebook/internal/localreg"
	"github.com/abelbrown/pricebook/internal/logging"
	"github.com/abelbrown/pricebook/internal/otel"
)

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "Listen address (default: server.addr from config)")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	if *addr == "" {
		*addr = cfg.Server.Addr
	}

	st := openDB(cfg)
	defer st.Close()
	events := openEvents()
	defer events.Close()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           localreg.NewServer(st, events),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Info("local registry listening", "addr", *addr, "db", cfg.Store.Path)
	events.Info(otel.KindStartup, "serve", "listening on "+*addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error("serve", "err", err)
		fatalf("serve: %v", err)
	}
	events.Info(otel.KindShutdown, "serve", "stopped")
}
