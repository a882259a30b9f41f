package main

import (
	"context"
	"fmt"
	"os"

	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/config"
	"github.com/garnizeh/jobboard/internal/db"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Getenv("JOBBOARD_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// The record store gets the sample jobs, the session store only the schema.
	targets := []struct {
		path string
		seed bool
	}{
		{cfg.RecordStore.DatabasePath, true},
		{cfg.SessionPath, false},
	}
	for _, t := range targets {
		if err := initDB(ctx, t.path, t.seed); err != nil {
			fmt.Fprintf(os.Stderr, "DB init error (%s): %v\n", t.path, err)
			os.Exit(1)
		}
		fmt.Printf("Initialized %s\n", t.path)
	}
	fmt.Println("Databases initialized successfully.")
}

func initDB(ctx context.Context, path string, seed bool) error {
	database, err := db.New(ctx, path, nil)
	if err != nil {
		return err
	}
	defer database.Close()

	if seed {
		return db.Migrate(ctx, database, dbfs.Migrations, dbfs.SeedFiles)
	}
	return db.Migrate(ctx, database, dbfs.Migrations, nil)
}
