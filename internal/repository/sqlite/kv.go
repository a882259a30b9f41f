package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

func (r *SQLiteRepo) GetValue(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.conn.QueryRow(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}

func (r *SQLiteRepo) SetValue(ctx context.Context, key, value string) error {
	q := `INSERT INTO kv (key, value, updated) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated = excluded.updated`
	if _, err := r.conn.Exec(ctx, q, key, value, now()); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// DeleteValues removes every given key in one statement. Unknown keys are
// ignored.
func (r *SQLiteRepo) DeleteValues(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := `DELETE FROM kv WHERE key IN (?` + strings.Repeat(",?", len(keys)-1) + `)`
	if _, err := r.conn.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("delete %v: %w", keys, err)
	}
	return nil
}
