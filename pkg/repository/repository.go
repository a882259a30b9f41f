package repository

import (
	"context"
	"encoding/json"
	"errors"
)

// Repository interfaces for the client and the development record store.
// These are the public contracts consumers should depend on; concrete
// implementations live under pkg/recordstore and internal/.

// RecordGateway is the client's view of the remote CRUD API. Implementations
// are pure I/O: no caching, no retries.
type RecordGateway interface {
	List(ctx context.Context, collection string, out any) error
	Get(ctx context.Context, collection, id string, out any) error
	Create(ctx context.Context, collection string, in, out any) error
	Replace(ctx context.Context, collection, id string, in, out any) error
}

// ErrRecordNotFound is returned by RecordRepo implementations for unknown ids.
var ErrRecordNotFound = errors.New("record not found")

// Record is one stored JSON document.
type Record struct {
	Collection string
	ID         string
	Body       json.RawMessage
	Created    int64
	Updated    int64
}

// RecordRepo persists the documents served by the development record store.
type RecordRepo interface {
	ListRecords(ctx context.Context, collection string) ([]Record, error)
	GetRecord(ctx context.Context, collection, id string) (*Record, error)
	CreateRecord(ctx context.Context, collection string, body json.RawMessage) (*Record, error)
	ReplaceRecord(ctx context.Context, collection, id string, body json.RawMessage) (*Record, error)
}

// KVRepo is a durable string key-value store used for the local session.
type KVRepo interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValues(ctx context.Context, keys ...string) error
}
