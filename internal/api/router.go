// Package api is the thin HTTP presentation boundary over the catalog,
// engine, settings and search services. Authentication is delegated to an
// external identity provider; this layer only requires the resolved user id
// in the X-User-ID header.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"readtrack/internal/catalog"
	"readtrack/internal/engine"
	"readtrack/internal/search"
	"readtrack/internal/settings"
)

// Server bundles the services behind the HTTP API.
type Server struct {
	catalog  *catalog.Service
	engine   *engine.Engine
	settings *settings.Service
	search   *search.Client
	logger   *zap.Logger
}

// NewServer creates the API server.
func NewServer(cat *catalog.Service, eng *engine.Engine, prefs *settings.Service, searcher *search.Client, logger *zap.Logger) *Server {
	return &Server{
		catalog:  cat,
		engine:   eng,
		settings: prefs,
		search:   searcher,
		logger:   logger,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireUser)

	api.HandleFunc("/books", s.handleListBooks).Methods("GET")
	api.HandleFunc("/books", s.handleAddBook).Methods("POST")
	api.HandleFunc("/books/{id}", s.handleGetBook).Methods("GET")
	api.HandleFunc("/books/{id}", s.handleDeleteBook).Methods("DELETE")
	api.HandleFunc("/books/{id}/progress", s.handleRecordProgress).Methods("POST")

	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/streak", s.handleStreak).Methods("GET")

	api.HandleFunc("/search", s.handleSearch).Methods("GET")

	api.HandleFunc("/settings/theme", s.handleGetTheme).Methods("GET")
	api.HandleFunc("/settings/theme", s.handleSetTheme).Methods("PUT")
	api.HandleFunc("/settings/notifications", s.handleGetNotifications).Methods("GET")
	api.HandleFunc("/settings/notifications", s.handleSetNotifications).Methods("PUT")

	return r
}
