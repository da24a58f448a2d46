// Package httpadapter serves the journal's JSON API alongside health,
// readiness, and metrics endpoints.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/travel-journal/internal/domain"
	"github.com/couchcryptid/travel-journal/internal/journal"
	"github.com/couchcryptid/travel-journal/internal/observability"
)

const maxJSONBody = 1 << 20

// Deps are the collaborators the API routes delegate to.
type Deps struct {
	Journal  *journal.Service
	Verifier domain.TokenVerifier
	// Images is optional; image routes are only mounted when it is set.
	Images        domain.ImageStore
	MaxUploadSize int64
	Metrics       *observability.Metrics
	Logger        *slog.Logger
}

// Server exposes the journal API plus health, readiness, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	journal    *journal.Service
	verifier   domain.TokenVerifier
	images     domain.ImageStore
	maxUpload  int64
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with every API route registered.
func NewServer(addr string, d Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		journal:   d.Journal,
		verifier:  d.Verifier,
		images:    d.Images,
		maxUpload: d.MaxUploadSize,
		metrics:   d.Metrics,
		logger:    d.Logger,
	}
	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.instrument(mux),
		ReadTimeout: 30 * time.Second,
		// Boundary batches are paced against the geocoder's rate limit.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(d.Journal))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/posts", s.handleListPosts)
	mux.HandleFunc("GET /api/posts/{id}", s.handleGetPost)
	mux.HandleFunc("POST /api/posts", s.requireAuth(s.handleCreatePost))
	mux.HandleFunc("PUT /api/posts/{id}", s.requireAuth(s.handleUpdatePost))
	mux.HandleFunc("DELETE /api/posts/{id}", s.requireAuth(s.handleDeletePost))

	mux.HandleFunc("GET /api/gallery", s.handleListGallery)
	mux.HandleFunc("POST /api/gallery", s.requireAuth(s.handleCreateGalleryItem))
	mux.HandleFunc("PUT /api/gallery/{id}", s.requireAuth(s.handleUpdateGalleryItem))
	mux.HandleFunc("DELETE /api/gallery/{id}", s.requireAuth(s.handleDeleteGalleryItem))

	mux.HandleFunc("GET /api/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /api/profile", s.requireAuth(s.handleSaveProfile))

	mux.HandleFunc("GET /api/countries", s.handleCountries)
	mux.HandleFunc("GET /api/boundaries", s.handleBoundaries)
	mux.HandleFunc("GET /api/boundary", s.handleBoundary)

	if d.Images != nil {
		mux.HandleFunc("POST /api/images/upload", s.requireAuth(s.handleUploadImage))
		mux.HandleFunc("GET /api/images", s.handleListImages)
		mux.HandleFunc("POST /api/images/delete", s.requireAuth(s.handleDeleteImage))
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// --- middleware ---

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// instrument counts requests by matched route pattern and status code.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}

type principalKey struct{}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.authenticate(r)
		if err != nil {
			s.logger.Debug("auth rejected", "path", r.URL.Path, "error", err)
			s.writeError(w, domain.ErrUnauthorized)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
	}
}

func (s *Server) authenticate(r *http.Request) (domain.Principal, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return s.verifier.Verify(r.Context(), strings.TrimSpace(token))
}

// isAdmin reports whether the request carries a valid token. Used by public
// routes that show more to the author.
func (s *Server) isAdmin(r *http.Request) bool {
	if r.Header.Get("Authorization") == "" {
		return false
	}
	_, err := s.authenticate(r)
	return err == nil
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

// writeError maps domain errors onto status codes. Unexpected errors are
// logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbiddenKey):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrTooLarge), errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
