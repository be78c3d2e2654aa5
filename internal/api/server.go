package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/jerry/internal/config"
	"github.com/dgallion1/jerry/internal/pathstore"
	"github.com/dgallion1/jerry/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for jerry.
type Server struct {
	router chi.Router
	store  *session.Store
	ps     *pathstore.Client // nil when persistence is disabled
	stats  *RouteStats
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. ps may be nil.
func NewServer(store *session.Store, ps *pathstore.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store: store,
		ps:    ps,
		stats: NewRouteStats(),
		log:   log,
		cfg:   cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(ObserveRequests(s.log, s.stats))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.JerryAPIKey, s.log))

		r.Get("/api/stats", s.handleStats)
		r.Post("/api/documents", s.handleUpload)
		r.Route("/api/documents/{docID}", func(r chi.Router) {
			r.Get("/", s.handleGetDocument)
			r.Delete("/", s.handleDeleteDocument)
			r.Get("/html", s.handleDocumentHTML)
			r.Post("/selection", s.handleSelection)
			r.Post("/highlights", s.handleToggleHighlight)
			r.Get("/tokens", s.handleGetTokens)
			r.Put("/tokens", s.handlePutTokens)
			r.Post("/save", s.handleSave)
			r.Post("/load", s.handleLoad)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.store.Len(),
	})
}
