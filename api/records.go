package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/jobboard/pkg/repository"
)

// maxBodyBytes bounds one stored document.
const maxBodyBytes = 1 << 20

// RecordsHandler serves the generic CRUD surface the job board client talks
// to: list, get, create and full replace of JSON documents per collection.
// ids are strings assigned by the store. Writes are unconditional.
type RecordsHandler struct {
	repo    repository.RecordRepo
	schemas *SchemaSet
}

func NewRecordsHandler(repo repository.RecordRepo, schemas *SchemaSet) *RecordsHandler {
	return &RecordsHandler{repo: repo, schemas: schemas}
}

func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.collection(w, r)
	if !ok {
		return
	}

	recs, err := h.repo.ListRecords(r.Context(), collection)
	if err != nil {
		logger.Error("list records", slog.String("collection", collection), slog.Any("err", err))
		http.Error(w, "failed to list records", http.StatusInternalServerError)
		return
	}

	bodies := make([]json.RawMessage, len(recs))
	for i := range recs {
		bodies[i] = recs[i].Body
	}
	writeJSON(w, bodies, http.StatusOK)
}

func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.collection(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	rec, err := h.repo.GetRecord(r.Context(), collection, id)
	if errors.Is(err, repository.ErrRecordNotFound) {
		writeJSON(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("get record", slog.String("collection", collection), slog.String("id", id), slog.Any("err", err))
		http.Error(w, "failed to load record", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rec.Body, http.StatusOK)
}

func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.collection(w, r)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r, collection)
	if !ok {
		return
	}

	rec, err := h.repo.CreateRecord(r.Context(), collection, body)
	if err != nil {
		logger.Error("create record", slog.String("collection", collection), slog.Any("err", err))
		http.Error(w, "failed to store record", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rec.Body, http.StatusCreated)
}

// Replace overwrites the whole record and echoes it back.
func (h *RecordsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.collection(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	body, ok := h.readBody(w, r, collection)
	if !ok {
		return
	}

	rec, err := h.repo.ReplaceRecord(r.Context(), collection, id, body)
	if errors.Is(err, repository.ErrRecordNotFound) {
		writeJSON(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("replace record", slog.String("collection", collection), slog.String("id", id), slog.Any("err", err))
		http.Error(w, "failed to store record", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rec.Body, http.StatusOK)
}

func (h *RecordsHandler) collection(w http.ResponseWriter, r *http.Request) (string, bool) {
	c := mux.Vars(r)["collection"]
	if !h.schemas.Has(c) {
		writeJSON(w, "Not found", http.StatusNotFound)
		return "", false
	}
	return c, true
}

func (h *RecordsHandler) readBody(w http.ResponseWriter, r *http.Request, collection string) (json.RawMessage, bool) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return nil, false
	}
	if !json.Valid(b) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return nil, false
	}

	problems, err := h.schemas.Validate(r.Context(), collection, b)
	if err != nil {
		logger.Error("validate record", slog.String("collection", collection), slog.Any("err", err))
		http.Error(w, "invalid request", http.StatusBadRequest)
		return nil, false
	}
	if len(problems) > 0 {
		writeJSON(w, map[string]any{"error": "validation failed", "details": problems}, http.StatusBadRequest)
		return nil, false
	}
	return json.RawMessage(b), true
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write response", slog.Any("err", err))
	}
}
