package sqlite_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	dbfs "github.com/garnizeh/jobboard/db"
	dbpkg "github.com/garnizeh/jobboard/internal/db"
	sqlite "github.com/garnizeh/jobboard/internal/repository/sqlite"
	"github.com/garnizeh/jobboard/pkg/repository"
)

func setupRepo(t *testing.T) (*sqlite.SQLiteRepo, func()) {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations, nil); err != nil {
		d.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	repo := sqlite.New(d, nil)
	return repo, func() { d.Close() }
}

func decode(t *testing.T, body json.RawMessage) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("decode body %s: %v", body, err)
	}
	return m
}

func TestRecordCRUD(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	list, err := repo.ListRecords(ctx, "users")
	if err != nil {
		t.Fatalf("ListRecords empty: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty collection, got %d", len(list))
	}

	if _, err := repo.GetRecord(ctx, "users", "1"); !errors.Is(err, repository.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	rec, err := repo.CreateRecord(ctx, "users", json.RawMessage(`{"id":"999","email":"a@example.com"}`))
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if rec.ID != "1" {
		t.Fatalf("expected first id to be \"1\", got %q", rec.ID)
	}
	if got := decode(t, rec.Body)["id"]; got != "1" {
		t.Fatalf("client-supplied id must be overwritten, got %v", got)
	}

	rec2, err := repo.CreateRecord(ctx, "users", json.RawMessage(`{"email":"b@example.com"}`))
	if err != nil {
		t.Fatalf("CreateRecord second: %v", err)
	}
	if rec2.ID != "2" {
		t.Fatalf("expected sequential id \"2\", got %q", rec2.ID)
	}

	// ids are per collection
	job, err := repo.CreateRecord(ctx, "jobs", json.RawMessage(`{"title":"x"}`))
	if err != nil {
		t.Fatalf("CreateRecord job: %v", err)
	}
	if job.ID != "1" {
		t.Fatalf("expected jobs to start at \"1\", got %q", job.ID)
	}

	got, err := repo.GetRecord(ctx, "users", "2")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if decode(t, got.Body)["email"] != "b@example.com" {
		t.Fatalf("unexpected body: %s", got.Body)
	}

	updated, err := repo.ReplaceRecord(ctx, "users", "2", json.RawMessage(`{"email":"c@example.com","applications":[{"jobId":"1"}]}`))
	if err != nil {
		t.Fatalf("ReplaceRecord: %v", err)
	}
	m := decode(t, updated.Body)
	if m["id"] != "2" || m["email"] != "c@example.com" {
		t.Fatalf("unexpected replaced body: %s", updated.Body)
	}
	if _, ok := m["applications"]; !ok {
		t.Fatalf("expected full record echoed: %s", updated.Body)
	}

	if _, err := repo.ReplaceRecord(ctx, "users", "404", json.RawMessage(`{}`)); !errors.Is(err, repository.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on replace, got %v", err)
	}

	list, err = repo.ListRecords(ctx, "users")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(list) != 2 || list[0].ID != "1" || list[1].ID != "2" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestRecord_NonObjectBodyRejected(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	for _, body := range []string{`[1,2]`, `"str"`, `null`, `{`} {
		if _, err := repo.CreateRecord(ctx, "jobs", json.RawMessage(body)); err == nil {
			t.Fatalf("expected error for body %s", body)
		}
	}
}

func TestRecord_ListOrdersNumerically(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		if _, err := repo.CreateRecord(ctx, "jobs", json.RawMessage(`{}`)); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	list, err := repo.ListRecords(ctx, "jobs")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if list[1].ID != "2" || list[10].ID != "11" {
		t.Fatalf("expected numeric ordering, got %s then %s", list[1].ID, list[10].ID)
	}
}

func TestRecord_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]bool{}
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := repo.CreateRecord(ctx, "users", json.RawMessage(`{}`))
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			mu.Lock()
			ids[rec.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(ids) != 10 {
		t.Fatalf("expected 10 distinct ids, got %d", len(ids))
	}
}

func TestKV(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	if _, ok, err := repo.GetValue(ctx, "authToken"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := repo.SetValue(ctx, "authToken", "t1"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := repo.SetValue(ctx, "authToken", "t2"); err != nil {
		t.Fatalf("SetValue overwrite: %v", err)
	}
	if err := repo.SetValue(ctx, "userData", `{"id":"1"}`); err != nil {
		t.Fatalf("SetValue userData: %v", err)
	}

	v, ok, err := repo.GetValue(ctx, "authToken")
	if err != nil || !ok || v != "t2" {
		t.Fatalf("GetValue: got %q ok=%v err=%v", v, ok, err)
	}

	if err := repo.DeleteValues(ctx); err != nil {
		t.Fatalf("DeleteValues no keys: %v", err)
	}
	if err := repo.DeleteValues(ctx, "authToken", "userData", "unknown"); err != nil {
		t.Fatalf("DeleteValues: %v", err)
	}
	for _, k := range []string{"authToken", "userData"} {
		if _, ok, _ := repo.GetValue(ctx, k); ok {
			t.Fatalf("expected %s deleted", k)
		}
	}
}
