package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/garnizeh/jobboard/api"
	"github.com/garnizeh/jobboard/pkg/repository"
)

func TestHealthHandler_CountsRecords(t *testing.T) {
	srv := newStoreServer(t, true)

	res, body := do(t, http.MethodGet, srv.URL+"/health", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health: expected 200 got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("health: expected json content-type, got %q", ct)
	}

	var got struct {
		Status      string         `json:"status"`
		Service     string         `json:"service"`
		Collections map[string]int `json:"collections"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("health: decode %s: %v", body, err)
	}
	if got.Status != "ok" || got.Service != "recordstore" {
		t.Fatalf("health: unexpected body %s", body)
	}
	if got.Collections["jobs"] != 12 || got.Collections["users"] != 0 {
		t.Fatalf("health: unexpected counts %v", got.Collections)
	}
}

type brokenRepo struct{ repository.RecordRepo }

func (brokenRepo) ListRecords(context.Context, string) ([]repository.Record, error) {
	return nil, errors.New("disk on fire")
}

func TestHealthHandler_Degraded(t *testing.T) {
	schemas, err := api.DefaultSchemas()
	if err != nil {
		t.Fatalf("schemas: %v", err)
	}
	h := api.NewSystemHandler(brokenRepo{}, schemas)

	w := httptest.NewRecorder()
	h.HealthHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", res.StatusCode)
	}
	if body := w.Body.String(); !strings.Contains(body, `"status":"degraded"`) || strings.Contains(body, "disk on fire") {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestVersionHandler(t *testing.T) {
	h := api.NewSystemHandler(nil, nil)
	w := httptest.NewRecorder()
	h.VersionHandler("1.2.3", "2025-08-24T00:00:00Z")(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("version: expected 200 got %d", res.StatusCode)
	}
	var got map[string]string
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("version: decode: %v", err)
	}
	if got["version"] != "1.2.3" || got["buildTime"] != "2025-08-24T00:00:00Z" {
		t.Fatalf("version: unexpected body %v", got)
	}
}
