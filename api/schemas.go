package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// SchemaSet holds one compiled JSON schema per collection. Collections
// without a schema are not served.
type SchemaSet struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// LoadSchemas compiles every schemas/<collection>.json found in fsys.
func LoadSchemas(fsys fs.FS) (*SchemaSet, error) {
	entries, err := fs.ReadDir(fsys, "schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}

	cache := make(map[string]*jsonschema.Schema)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".json" {
			continue
		}
		b, err := fs.ReadFile(fsys, path.Join("schemas", name))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		cache[strings.TrimSuffix(name, ".json")] = rs
	}

	return &SchemaSet{cache: cache}, nil
}

// DefaultSchemas returns the schemas for users and jobs.
func DefaultSchemas() (*SchemaSet, error) {
	return LoadSchemas(schemaFiles)
}

// Has reports whether collection is served.
func (s *SchemaSet) Has(collection string) bool {
	s.mu.RLock()
	_, ok := s.cache[collection]
	s.mu.RUnlock()
	return ok
}

// Collections lists the served collection names in order.
func (s *SchemaSet) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.cache))
	for name := range s.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks body against the collection's schema and returns one
// message per violation.
func (s *SchemaSet) Validate(ctx context.Context, collection string, body []byte) ([]string, error) {
	s.mu.RLock()
	rs, ok := s.cache[collection]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no schema for collection %q", collection)
	}

	verrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("schema validate: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, v := range verrs {
		msgs = append(msgs, strings.TrimSpace(v.PropertyPath+" "+v.Message))
	}
	return msgs, nil
}
