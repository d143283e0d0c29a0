package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/milassn/fitness-tracker/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	log    *slog.Logger
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/api/v1/health", s.handleHealth)

	// Sync endpoints (API key required, resolved to a user)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.db, s.log))
		r.Get("/me", s.handleMe)
		r.Get("/tables/{table}", s.handleSelect)
		r.Post("/tables/{table}", s.handleUpsert)
		r.Delete("/tables/{table}/{id}", s.handleDelete)
	})
}
