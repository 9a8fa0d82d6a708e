// Package main is the entry point for the todo CLI.
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"todo/internal/backend/googletasks"
	"todo/internal/cli"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/importer"
	"todo/internal/service"
	"todo/internal/store"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newService)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

// newService opens the task store and wires the importer selected in cfg.
// A store that cannot be opened is fatal.
func newService(ctx context.Context, cfg *config.Config) (service.Service, error) {
	logger := log.New(io.Discard, "", 0)
	if cfg.Debug {
		logger = log.New(os.Stderr, "debug: ", log.LstdFlags)
	}

	if err := cfg.EnsureDir(); err != nil {
		log.Fatalf("fatal: cannot create config directory %s: %v", cfg.Dir, err)
	}
	st, err := store.OpenSQLite(cfg.DatabasePath(), store.WithLogger(logger))
	if err != nil {
		log.Fatalf("fatal: cannot open task store %s: %v", cfg.DatabasePath(), err)
	}

	bootstrap := service.NewBootstrapState(st)

	// Once the import has run the remote source is never consulted again,
	// so a missing Google token must not block local commands.
	if done, err := bootstrap.Done(ctx); err == nil && done {
		return service.New(st, nil, bootstrap, service.WithLogger(logger)), nil
	}

	source, err := newSource(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	imp := importer.New(source, st, cfg.Import.Timeout, logger)
	return service.New(st, imp, bootstrap, service.WithLogger(logger)), nil
}

func newSource(ctx context.Context, cfg *config.Config) (importer.Source, error) {
	if cfg.Import.Source == config.SourceGoogleTasks {
		return googletasks.New(ctx, cfg)
	}
	return importer.NewDummyJSONSource(cfg.Import.URL, nil), nil
}
