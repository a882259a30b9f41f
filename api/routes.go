package api

import (
	"github.com/gorilla/mux"

	"github.com/garnizeh/jobboard/pkg/repository"
)

// BasePath is where the record collections are mounted, mirroring the path
// of the hosted API.
const BasePath = "/api/v1"

func SetupRoutes(version, buildTime string, repo repository.RecordRepo, schemas *SchemaSet) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	systemHandler := NewSystemHandler(repo, schemas)
	records := NewRecordsHandler(repo, schemas)

	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")

	v1 := r.PathPrefix(BasePath).Subrouter()
	v1.HandleFunc("/{collection}", records.List).Methods("GET")
	v1.HandleFunc("/{collection}", records.Create).Methods("POST")
	v1.HandleFunc("/{collection}/{id}", records.Get).Methods("GET")
	v1.HandleFunc("/{collection}/{id}", records.Replace).Methods("PUT")

	return r
}
