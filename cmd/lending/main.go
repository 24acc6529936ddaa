// cmd/lending/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"stufflending/internal/adminapi"
	"stufflending/internal/calendar"
	"stufflending/internal/circulation"
	"stufflending/internal/config"
	"stufflending/internal/console"
	"stufflending/internal/journal"
	"stufflending/internal/membership"
	"stufflending/internal/seed"
	"stufflending/internal/telemetry"
)

func main() {
	log.SetPrefix("[lending] ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsDev() {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, cfg.AppMode)
	if err != nil {
		log.Fatalf("Failed to set up telemetry: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Printf("Failed to flush telemetry: %v", err)
		}
	}()

	events := journal.New()
	directory := membership.NewDirectory(
		membership.WithRecorder(events),
		membership.WithLoginLimit(cfg.LoginsPerMin),
	)
	clock := calendar.NewClockAt(cfg.ClockStart)
	engine := circulation.NewService(directory, clock, events)

	if err := seed.Administrator(directory, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email, cfg.Admin.Phone); err != nil {
		log.Fatalf("Failed to create administrator: %v", err)
	}
	if cfg.SeedDemoData {
		if err := seed.DemoData(ctx, directory, clock.Today()); err != nil {
			log.Fatalf("Failed to load demo data: %v", err)
		}
	}

	var mu sync.Mutex
	if cfg.AdminHTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.AdminHTTPAddr,
			Handler:           adminapi.NewHandler(directory, engine, events, &mu).Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Printf("Admin API listening on %s", cfg.AdminHTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Admin API stopped: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	if err := console.New(os.Stdin, os.Stdout, directory, engine, &mu).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Console stopped: %v", err)
	}
}
