package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/meur/tiermaker/internal/logging"
	"github.com/meur/tiermaker/internal/models"
	"github.com/meur/tiermaker/internal/scraper"
	"github.com/meur/tiermaker/internal/storage"
	"github.com/meur/tiermaker/internal/tierlist"
	"github.com/meur/tiermaker/internal/workspace"
	"github.com/rs/zerolog"
)

// Server exposes the workspace operations to the front end over HTTP
type Server struct {
	ws             *workspace.Workspace
	router         chi.Router
	log            zerolog.Logger
	allowedOrigins []string
}

// New creates a new API server
func New(ws *workspace.Workspace, log zerolog.Logger, allowedOrigins []string) *Server {
	s := &Server{
		ws:             ws,
		router:         chi.NewRouter(),
		log:            log,
		allowedOrigins: allowedOrigins,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router returns the underlying router so callers can mount extra handlers
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Whole list
		r.Get("/tierlist", s.handleGetTierList)
		r.Put("/tierlist/title", s.handleSetTitle)

		// Items
		r.Post("/items", s.handleCreateItem)
		r.Post("/items/scrape", s.handleScrapeItem)
		r.Get("/items/{id}", s.handleGetItem)
		r.Put("/items/{id}", s.handleUpdateItem)
		r.Delete("/items/{id}", s.handleDeleteItem)
		r.Post("/items/{id}/move", s.handleMoveItem)

		// Tiers
		r.Post("/tiers", s.handleCreateTier)
		r.Put("/tiers/{id}", s.handleRenameTier)
		r.Delete("/tiers/{id}", s.handleDeleteTier)
		r.Post("/tiers/{id}/move", s.handleMoveTier)

		// Persistence
		r.Get("/store", s.handleStoreStatus)
		r.Post("/store/load", s.handleLoad)
		r.Post("/store/save", s.handleSave)
	})

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// requestLogger attaches a per-request logger to the context and logs the outcome
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		logger := s.log.With().Str("request_id", reqID).Logger()
		ctx := logging.WithContext(r.Context(), logger)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("X-Request-Id", reqID)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.FromContext(logging.WithComponent(ctx, "api")).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr maps domain errors to HTTP statuses
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tierlist.ErrUnknownItem), errors.Is(err, tierlist.ErrUnknownTier):
		status = http.StatusNotFound
	case errors.Is(err, tierlist.ErrOutOfRange), errors.Is(err, tierlist.ErrNotPlaced),
		errors.Is(err, tierlist.ErrAlreadyPlaced), errors.Is(err, storage.ErrOpen):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotOpen):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrConsistency), errors.Is(err, models.ErrInvariant),
		errors.Is(err, scraper.ErrNotFound):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		logging.FromContext(logging.WithComponent(r.Context(), "api")).Error().Err(err).Msg("request failed")
	}
	respondError(w, status, err.Error())
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
