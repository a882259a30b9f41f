package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Migrate applies migrations and optional seed files. It creates a
// `schema_migrations` table to track applied migrations and applies any SQL
// files under `migrations/` that have not yet been recorded.
//
// seedFS may be nil. Each `seed/<collection>.json` file holds a JSON array of
// documents; a collection is seeded only while it is still empty, with ids
// "1", "2", ... in array order.
func Migrate(ctx context.Context, d *DB, migrationFS fs.FS, seedFS fs.FS) error {
	if _, err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	migDir := "migrations"

	entries, err := fs.ReadDir(migrationFS, migDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	for _, fname := range files {
		// filename without extension is the version key
		version := strings.TrimSuffix(fname, path.Ext(fname))

		var count int
		row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, version)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration applied count: %w", err)
		}
		if count > 0 {
			continue
		}

		b, err := fs.ReadFile(migrationFS, path.Join(migDir, fname))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", fname, err)
		}
		if _, err := d.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec migration %s: %w", fname, err)
		}

		if _, err := d.Exec(ctx, `INSERT INTO schema_migrations (version, applied) VALUES (?, strftime('%s','now'))`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", fname, err)
		}
		d.logger.Info("db: migration applied", "version", version)
	}

	if seedFS == nil {
		return nil
	}
	return seed(ctx, d, seedFS)
}

func seed(ctx context.Context, d *DB, seedFS fs.FS) error {
	entries, err := fs.ReadDir(seedFS, "seed")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read seed dir: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".json" {
			continue
		}
		collection := strings.TrimSuffix(name, ".json")

		var count int
		if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM records WHERE collection = ?`, collection).Scan(&count); err != nil {
			return fmt.Errorf("seed %s: count: %w", collection, err)
		}
		if count > 0 {
			continue
		}

		b, err := fs.ReadFile(seedFS, path.Join("seed", name))
		if err != nil {
			return fmt.Errorf("seed %s: read: %w", collection, err)
		}
		var docs []map[string]any
		if err := json.Unmarshal(b, &docs); err != nil {
			return fmt.Errorf("seed %s: decode: %w", collection, err)
		}

		for i, doc := range docs {
			id := strconv.Itoa(i + 1)
			doc["id"] = id
			body, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("seed %s/%s: encode: %w", collection, id, err)
			}
			if _, err := d.Exec(ctx, `INSERT OR IGNORE INTO records (collection, id, body, created, updated) VALUES (?, ?, ?, strftime('%s','now'), strftime('%s','now'))`, collection, id, string(body)); err != nil {
				return fmt.Errorf("seed %s/%s: insert: %w", collection, id, err)
			}
		}
		d.logger.Info("db: collection seeded", "collection", collection, "count", len(docs))
	}
	return nil
}
