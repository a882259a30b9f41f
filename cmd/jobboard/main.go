package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/app"
	"github.com/garnizeh/jobboard/internal/cli"
	"github.com/garnizeh/jobboard/internal/config"
	"github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/internal/lifecycle"
	"github.com/garnizeh/jobboard/internal/repository/sqlite"
	"github.com/garnizeh/jobboard/pkg/recordstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("JOBBOARD_CONFIG"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// stdout belongs to the user; diagnostics go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	lifecycle.SetLogger(logger)
	recordstore.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := db.New(ctx, cfg.SessionPath, logger)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer d.Close()
	if err := db.Migrate(ctx, d, dbfs.Migrations, nil); err != nil {
		return fmt.Errorf("migrate session store: %w", err)
	}

	client, err := recordstore.NewDefaultClient(recordstore.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.Gateway.Timeout,
		UserAgent: cfg.Gateway.UserAgent,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	a := app.New(client, sqlite.New(d, logger), app.Options{
		TokenSecret: cfg.TokenSecret,
		PageSize:    cfg.PageSize,
		Logger:      logger,
	})
	if err := a.Boot(ctx); err != nil {
		return err
	}

	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"shell"}
	}
	root := cli.RootCmd(a, os.Stdout)
	root.SetIn(os.Stdin)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
