package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/garnizeh/jobboard/pkg/repository"
)

// ListRecords returns a collection in id order. ids are decimal strings, so
// they are ordered numerically.
func (r *SQLiteRepo) ListRecords(ctx context.Context, collection string) ([]repository.Record, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, body, created, updated FROM records WHERE collection = ? ORDER BY CAST(id AS INTEGER), id`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	out := make([]repository.Record, 0)
	for rows.Next() {
		rec := repository.Record{Collection: collection}
		var body string
		if err := rows.Scan(&rec.ID, &body, &rec.Created, &rec.Updated); err != nil {
			return nil, fmt.Errorf("list %s: scan: %w", collection, err)
		}
		rec.Body = json.RawMessage(body)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return out, nil
}

func (r *SQLiteRepo) GetRecord(ctx context.Context, collection, id string) (*repository.Record, error) {
	rec := repository.Record{Collection: collection, ID: id}
	var body string
	err := r.conn.QueryRow(ctx, `SELECT body, created, updated FROM records WHERE collection = ? AND id = ?`, collection, id).
		Scan(&body, &rec.Created, &rec.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	rec.Body = json.RawMessage(body)
	return &rec, nil
}

// CreateRecord stores body under the next sequential id of the collection.
// Any "id" in body is overwritten with the assigned one.
func (r *SQLiteRepo) CreateRecord(ctx context.Context, collection string, body json.RawMessage) (*repository.Record, error) {
	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s: begin: %w", collection, err)
	}

	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(CAST(id AS INTEGER)), 0) + 1 FROM records WHERE collection = ?`, collection).Scan(&next); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("create %s: next id: %w", collection, err)
	}
	id := strconv.FormatInt(next, 10)

	stored, err := withID(body, id)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("create %s: %w", collection, err)
	}

	ts := now()
	if _, err := tx.ExecContext(ctx, `INSERT INTO records (collection, id, body, created, updated) VALUES (?, ?, ?, ?, ?)`, collection, id, string(stored), ts, ts); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("create %s: insert: %w", collection, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create %s: commit: %w", collection, err)
	}

	r.logger.Debug("record created", "collection", collection, "id", id)
	return &repository.Record{Collection: collection, ID: id, Body: stored, Created: ts, Updated: ts}, nil
}

// ReplaceRecord overwrites the whole document. There is no version check; the
// last writer wins.
func (r *SQLiteRepo) ReplaceRecord(ctx context.Context, collection, id string, body json.RawMessage) (*repository.Record, error) {
	stored, err := withID(body, id)
	if err != nil {
		return nil, fmt.Errorf("replace %s/%s: %w", collection, id, err)
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `UPDATE records SET body = ?, updated = ? WHERE collection = ? AND id = ?`, string(stored), ts, collection, id)
	if err != nil {
		return nil, fmt.Errorf("replace %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("replace %s/%s: rows affected: %w", collection, id, err)
	}
	if n == 0 {
		return nil, repository.ErrRecordNotFound
	}

	return r.GetRecord(ctx, collection, id)
}

func withID(body json.RawMessage, id string) (json.RawMessage, error) {
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("body is not a JSON object: %w", err)
	}
	if doc == nil {
		return nil, errors.New("body is not a JSON object")
	}
	doc["id"] = id
	return json.Marshal(doc)
}
