package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/garnizeh/jobboard/internal/apperr"
)

// Gateway is an in-memory RecordGateway. Records are stored as JSON so callers
// never share memory with the store, just like a real remote.
type Gateway struct {
	mu      sync.Mutex
	records map[string]map[string][]byte
	order   map[string][]string
	nextID  map[string]int

	ListErr    error
	GetErr     error
	CreateErr  error
	ReplaceErr error

	// AfterGet runs once a Get has read its record and released the lock.
	// Tests use it to interleave a competing writer.
	AfterGet func(collection, id string)

	ListCalls    int
	GetCalls     int
	CreateCalls  int
	ReplaceCalls int
}

func NewGateway() *Gateway {
	return &Gateway{
		records: make(map[string]map[string][]byte),
		order:   make(map[string][]string),
		nextID:  make(map[string]int),
	}
}

// Seed stores v under collection. The id is read from v's "id" field, or
// assigned when empty. It returns the id used.
func (g *Gateway) Seed(collection string, v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("mock: seed marshal: %v", err))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	id, b := g.assignID(collection, b)
	g.put(collection, id, b)
	return id
}

// Load decodes the stored record into out. It does not count as a call.
func (g *Gateway) Load(collection, id string, out any) bool {
	g.mu.Lock()
	b, ok := g.records[collection][id]
	g.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

func (g *Gateway) List(ctx context.Context, collection string, out any) error {
	g.mu.Lock()
	g.ListCalls++
	if g.ListErr != nil {
		g.mu.Unlock()
		return g.ListErr
	}
	items := make([]json.RawMessage, 0, len(g.order[collection]))
	for _, id := range g.order[collection] {
		items = append(items, g.records[collection][id])
	}
	g.mu.Unlock()

	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (g *Gateway) Get(ctx context.Context, collection, id string, out any) error {
	g.mu.Lock()
	g.GetCalls++
	if g.GetErr != nil {
		g.mu.Unlock()
		return g.GetErr
	}
	b, ok := g.records[collection][id]
	g.mu.Unlock()
	if !ok {
		return &apperr.RemoteError{Op: "GET " + collection + "/" + id, StatusCode: http.StatusNotFound, Body: `"Not found"`}
	}
	if err := json.Unmarshal(b, out); err != nil {
		return err
	}
	if g.AfterGet != nil {
		g.AfterGet(collection, id)
	}
	return nil
}

func (g *Gateway) Create(ctx context.Context, collection string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.CreateCalls++
	if g.CreateErr != nil {
		g.mu.Unlock()
		return g.CreateErr
	}
	id, b := g.assignID(collection, b)
	g.put(collection, id, b)
	g.mu.Unlock()

	if out == nil {
		return nil
	}
	return json.Unmarshal(b, out)
}

func (g *Gateway) Replace(ctx context.Context, collection, id string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.ReplaceCalls++
	if g.ReplaceErr != nil {
		g.mu.Unlock()
		return g.ReplaceErr
	}
	if _, ok := g.records[collection][id]; !ok {
		g.mu.Unlock()
		return &apperr.RemoteError{Op: "PUT " + collection + "/" + id, StatusCode: http.StatusNotFound}
	}
	b = withID(b, id)
	g.put(collection, id, b)
	g.mu.Unlock()

	if out == nil {
		return nil
	}
	return json.Unmarshal(b, out)
}

func (g *Gateway) assignID(collection string, b []byte) (string, []byte) {
	var probe struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(b, &probe)
	if probe.ID != "" {
		return probe.ID, b
	}
	g.nextID[collection]++
	id := strconv.Itoa(g.nextID[collection])
	for g.records[collection][id] != nil {
		g.nextID[collection]++
		id = strconv.Itoa(g.nextID[collection])
	}
	return id, withID(b, id)
}

func (g *Gateway) put(collection, id string, b []byte) {
	if g.records[collection] == nil {
		g.records[collection] = make(map[string][]byte)
	}
	if _, exists := g.records[collection][id]; !exists {
		g.order[collection] = append(g.order[collection], id)
	}
	g.records[collection][id] = b
}

func withID(b []byte, id string) []byte {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return b
	}
	m["id"] = id
	out, err := json.Marshal(m)
	if err != nil {
		return b
	}
	return out
}

// KV is an in-memory KVRepo.
type KV struct {
	mu     sync.Mutex
	Values map[string]string
	SetErr error
	// KeyErr fails SetValue for the listed keys only.
	KeyErr map[string]error
}

func NewKV() *KV {
	return &KV{Values: make(map[string]string)}
}

func (m *KV) GetValue(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Values[key]
	return v, ok, nil
}

func (m *KV) SetValue(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if err := m.KeyErr[key]; err != nil {
		return err
	}
	m.Values[key] = value
	return nil
}

func (m *KV) DeleteValues(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.Values, k)
	}
	return nil
}
