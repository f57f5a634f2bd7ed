package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"bookbrain/internal/bootstrap"
	"bookbrain/internal/cli"
	"bookbrain/internal/config"
	"bookbrain/internal/contextutil"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// Logs go to stderr so command output stays pipeable.
	logger := bootstrap.NewLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = contextutil.WithLogger(ctx, logger)

	app, err := bootstrap.New(ctx, cfg, "bookbrain-cli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		return 1
	}
	defer func() {
		_ = app.Close()
	}()

	cli.SetServices(app.QA, app.Library)
	if err := cli.Root().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
