package main

import (
	"context"
	"flag"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/garnizeh/jobboard/api"
	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/config"
	"github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/internal/repository/sqlite"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config YAML file")
		seed       = flag.Bool("seed", false, "Load sample jobs into empty collections")
	)
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)

	log.Printf("Starting record store version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	d, err := db.New(ctx, cfg.RecordStore.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}

	var seedFS fs.FS
	if *seed {
		seedFS = dbfs.SeedFiles
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations, seedFS); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	schemas, err := api.DefaultSchemas()
	if err != nil {
		log.Fatalf("Failed to load schemas: %v", err)
	}

	handler := api.SetupRoutes(version, buildTime, sqlite.New(d, logger), schemas)

	server := &http.Server{
		Addr:         cfg.RecordStore.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.RecordStore.APITimeout,
		WriteTimeout: cfg.RecordStore.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s (collections under %s)", cfg.RecordStore.Addr, api.BasePath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := d.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}
