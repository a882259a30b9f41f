package api

import (
	"log/slog"
	"net/http"

	"github.com/garnizeh/jobboard/pkg/repository"
)

// SystemHandler serves the health and version endpoints.
type SystemHandler struct {
	repo    repository.RecordRepo
	schemas *SchemaSet
}

func NewSystemHandler(repo repository.RecordRepo, schemas *SchemaSet) *SystemHandler {
	return &SystemHandler{repo: repo, schemas: schemas}
}

type healthResponse struct {
	Status      string         `json:"status"`
	Service     string         `json:"service"`
	Collections map[string]int `json:"collections,omitempty"`
}

// HealthHandler reports the record count of every served collection. A
// storage failure turns the answer into 503 "degraded".
func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Service: "recordstore", Collections: map[string]int{}}
	for _, c := range h.schemas.Collections() {
		recs, err := h.repo.ListRecords(r.Context(), c)
		if err != nil {
			logger.Error("health: list records", slog.String("collection", c), slog.Any("err", err))
			writeJSON(w, healthResponse{Status: "degraded", Service: "recordstore"}, http.StatusServiceUnavailable)
			return
		}
		resp.Collections[c] = len(recs)
	}
	writeJSON(w, resp, http.StatusOK)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"version": version, "buildTime": buildTime}, http.StatusOK)
	}
}
