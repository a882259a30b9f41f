package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/api"
	"github.com/garnizeh/jobboard/internal/applications"
	"github.com/garnizeh/jobboard/internal/apperr"
	"github.com/garnizeh/jobboard/internal/auth"
	"github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/internal/repository/sqlite"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/recordstore"
)

func newStoreServer(t *testing.T, seed bool) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	d, err := db.New(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	var seedFS fs.FS
	if seed {
		seedFS = dbfs.SeedFiles
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations, seedFS); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	schemas, err := api.DefaultSchemas()
	if err != nil {
		t.Fatalf("schemas: %v", err)
	}
	srv := httptest.NewServer(api.SetupRoutes("test", "now", sqlite.New(d, nil), schemas))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	b, _ := io.ReadAll(res.Body)
	return res, string(bytes.TrimSpace(b))
}

func TestRecords_CRUD(t *testing.T) {
	srv := newStoreServer(t, false)
	base := srv.URL + api.BasePath

	res, body := do(t, http.MethodGet, base+"/users", "")
	if res.StatusCode != http.StatusOK || body != "[]" {
		t.Fatalf("empty list: %d %s", res.StatusCode, body)
	}

	res, body = do(t, http.MethodPost, base+"/users", `{"email":"a@example.com","password":"pw"}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", res.StatusCode, body)
	}
	var created map[string]any
	if err := json.Unmarshal([]byte(body), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created["id"] != "1" {
		t.Fatalf("expected id \"1\", got %v", created["id"])
	}

	res, body = do(t, http.MethodGet, base+"/users/1", "")
	if res.StatusCode != http.StatusOK || !strings.Contains(body, `"email":"a@example.com"`) {
		t.Fatalf("get: %d %s", res.StatusCode, body)
	}
	if res.Header.Get(api.HeaderRequestID) == "" {
		t.Fatalf("expected request id header")
	}

	res, body = do(t, http.MethodPut, base+"/users/1", `{"email":"b@example.com","password":"pw","applications":[]}`)
	if res.StatusCode != http.StatusOK || !strings.Contains(body, `"email":"b@example.com"`) || !strings.Contains(body, `"id":"1"`) {
		t.Fatalf("replace: %d %s", res.StatusCode, body)
	}

	res, body = do(t, http.MethodGet, base+"/users/99", "")
	if res.StatusCode != http.StatusNotFound || body != `"Not found"` {
		t.Fatalf("missing: %d %s", res.StatusCode, body)
	}

	res, _ = do(t, http.MethodPut, base+"/users/99", `{"email":"x","password":"y"}`)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("replace missing: expected 404 got %d", res.StatusCode)
	}

	res, _ = do(t, http.MethodGet, base+"/widgets", "")
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown collection: expected 404 got %d", res.StatusCode)
	}
}

func TestRecords_Validation(t *testing.T) {
	srv := newStoreServer(t, false)
	base := srv.URL + api.BasePath

	cases := []struct {
		name string
		path string
		body string
	}{
		{"NotJSON", "/users", `{"email":`},
		{"NotObject", "/jobs", `["a"]`},
		{"MissingPassword", "/users", `{"email":"a@example.com"}`},
		{"BadApplicationStatus", "/users", `{"email":"a","password":"b","applications":[{"jobId":"1","status":"ghosted","appliedAt":"x"}]}`},
		{"EmptyJobTitle", "/jobs", `{"title":"","company":"c"}`},
		{"RemoteNotBool", "/jobs", `{"title":"t","company":"c","remote":"yes"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, body := do(t, http.MethodPost, base+c.path, c.body)
			if res.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d: %s", res.StatusCode, body)
			}
		})
	}

	res, _ := do(t, http.MethodGet, base+"/users", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list after rejects: %d", res.StatusCode)
	}
}

func TestRecords_SeededJobs(t *testing.T) {
	srv := newStoreServer(t, true)
	client, err := recordstore.NewClient(recordstore.Config{BaseURL: srv.URL + api.BasePath}, srv.Client())
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer client.Close()

	var jobs []models.Job
	if err := client.List(context.Background(), recordstore.Jobs, &jobs); err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) == 0 || jobs[0].ID != "1" || jobs[0].Title == "" {
		t.Fatalf("unexpected seeded jobs: %+v", jobs)
	}
}

func TestSchemas_Load(t *testing.T) {
	fsys := fstest.MapFS{
		"schemas/things.json": {Data: []byte(`{"type":"object","required":["name"]}`)},
	}
	s, err := api.LoadSchemas(fsys)
	if err != nil {
		t.Fatalf("LoadSchemas: %v", err)
	}
	if !s.Has("things") || s.Has("users") {
		t.Fatalf("unexpected collections")
	}
	problems, err := s.Validate(context.Background(), "things", []byte(`{}`))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(problems) != 1 {
		t.Fatalf("expected one problem, got %v", problems)
	}
	if _, err := s.Validate(context.Background(), "users", []byte(`{}`)); err == nil {
		t.Fatalf("expected error for unknown collection")
	}

	if _, err := api.LoadSchemas(fstest.MapFS{"schemas/bad.json": {Data: []byte(`{`)}}); err == nil {
		t.Fatalf("expected compile error")
	}
}

// The full client stack against the real server: register, log in, apply,
// read back, update status.
func TestRecords_ClientRoundTrip(t *testing.T) {
	srv := newStoreServer(t, true)
	client, err := recordstore.NewClient(recordstore.Config{BaseURL: srv.URL + api.BasePath}, srv.Client())
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer client.Close()
	ctx := context.Background()

	creds := auth.NewCredentialService(client, nil)
	u, err := creds.Register(ctx, models.RegisterForm{
		FirstName: "John", LastName: "Doe", Email: "john.doe@example.com",
		PhoneNumber: "+1234567890", Gender: "male", Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := creds.Login(ctx, "JOHN.DOE@example.com", "password123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	engine := applications.NewEngine(client, nil)
	if _, err := engine.Apply(ctx, u.ID, "1", "Software Engineer", "Tech Corp"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := engine.Apply(ctx, u.ID, "1", "Software Engineer", "Tech Corp"); !errors.Is(err, apperr.ErrAlreadyApplied) {
		t.Fatalf("expected already applied, got %v", err)
	}

	fresh := applications.NewEngine(client, nil)
	apps, err := fresh.FetchUserApplications(ctx, u.ID)
	if err != nil || len(apps) != 1 {
		t.Fatalf("fetch: %v %+v", err, apps)
	}
	if err := fresh.UpdateApplicationStatus(ctx, u.ID, "1", models.StatusInterview); err != nil {
		t.Fatalf("update status: %v", err)
	}

	var stored models.User
	if err := client.Get(ctx, recordstore.Users, u.ID, &stored); err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(stored.Applications) != 1 || stored.Applications[0].Status != models.StatusInterview {
		t.Fatalf("unexpected stored applications: %+v", stored.Applications)
	}
	if stored.PhoneNumber != "+1234567890" {
		t.Fatalf("other fields must survive the full replace: %+v", stored)
	}

	ok, err := fresh.HasApplied(ctx, "404", "1")
	if err != nil || ok {
		t.Fatalf("missing user: ok=%v err=%v", ok, err)
	}
}
