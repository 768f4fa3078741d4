// Package server hosts one diagram over HTTP.
//
// The server owns a Designer backed by a diagram file. Every committed change
// is written back to the file, autosaved to the cache when one is configured,
// and pushed to connected browsers as a server-sent event. Edits made to the
// file by other programs are picked up by Watch.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/cache"
	"github.com/hlop3z/erdpad/internal/codec"
	"github.com/hlop3z/erdpad/internal/server/middleware"
	"github.com/hlop3z/erdpad/pkg/erdpad"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host              string
	Port              int
	ShutdownTimeout   time.Duration
	CORSOrigins       []string
	RequestsPerMinute int   // per client IP, 0 disables limiting
	MaxBodySize       int64 // bytes
}

// DefaultConfig returns a Config suited to a local editing session.
func DefaultConfig() Config {
	return Config{
		Host:              "127.0.0.1",
		Port:              8080,
		ShutdownTimeout:   10 * time.Second,
		CORSOrigins:       []string{"*"},
		RequestsPerMinute: 600,
		MaxBodySize:       5 * 1024 * 1024, // 5MB
	}
}

// Options wires the server to its diagram.
type Options struct {
	// File is the backing diagram file. Empty keeps the diagram in memory.
	File string
	// Cache receives an autosave after every change. Optional.
	Cache *cache.Cache
	// Designer options, e.g. the id strategy.
	Designer []erdpad.Option
	Logger   *slog.Logger
}

// Server is the HTTP host for one diagram. All Designer calls are serialized
// by mu.
type Server struct {
	cfg        Config
	file       string
	cache      *cache.Cache
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	events     *hub

	mu       sync.Mutex
	designer *erdpad.Designer

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a Server. An existing backing file must be a valid diagram;
// a missing one starts an empty diagram that is created on the first change.
func New(cfg Config, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		cache:  opts.Cache,
		logger: logger,
		events: newHub(),
		done:   make(chan struct{}),
	}
	if opts.File != "" {
		s.file = filepath.Clean(opts.File)
	}

	initial, err := s.readInitial()
	if err != nil {
		return nil, err
	}

	designerOpts := append([]erdpad.Option{erdpad.WithLogger(logger)}, opts.Designer...)
	s.designer = erdpad.New(initial, s.handleChange, designerOpts...)

	s.setupRouter()
	return s, nil
}

// readInitial returns the backing document after checking it strictly, so a
// malformed file is reported instead of silently replaced by an empty diagram.
func (s *Server) readInitial() (string, error) {
	if s.file == "" {
		return "", nil
	}
	data, err := os.ReadFile(s.file)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info("diagram file does not exist yet", "file", s.file)
		return "", nil
	}
	if err != nil {
		return "", alerr.Wrap(alerr.ErrDocumentRead, err, "failed to read diagram").WithFile(s.file)
	}
	if _, err := codec.Import(data); err != nil {
		var e *alerr.Error
		if errors.As(err, &e) {
			e.WithFile(s.file)
		}
		return "", err
	}
	return string(data), nil
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-Match", "If-None-Match", "X-Request-ID"},
		ExposedHeaders: []string{"ETag", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(s.cfg.RequestsPerMinute))

		r.Get("/document", s.handleGetDocument)
		r.Put("/document", s.handlePutDocument)

		r.Post("/tables", s.handleCreateTable)
		r.Put("/tables/{id}", s.handleUpdateTable)
		r.Delete("/tables/{id}", s.handleDeleteTable)
		r.Patch("/tables/{id}/position", s.handleMoveTable)

		r.Patch("/relationships/{id}", s.handleSetRelationshipKind)

		r.Get("/connectors", s.handleConnectors)
		r.Get("/diagram.svg", s.handleSVG)
		r.Get("/events", s.handleEvents)
	})

	s.router = r
}

// handleChange runs inside a Designer call, so mu is already held.
func (s *Server) handleChange(doc string) {
	if s.file != "" {
		if err := writeFileAtomic(s.file, []byte(doc)); err != nil {
			s.logger.Error("failed to write diagram", "file", s.file, "error", err)
		}
		if s.cache != nil {
			if err := s.cache.Save(cache.Key(s.file), s.designer.Graph()); err != nil {
				s.logger.Warn("autosave failed", "file", s.file, "error", err)
			}
		}
	}
	s.events.broadcast(doc)
}

// writeFileAtomic replaces path through a temporary file in the same
// directory so readers never see a partial document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}

// handleHealthz is a liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// ListenAndServe starts the HTTP server and the file watcher, and blocks
// until ctx is cancelled. It then drains in-flight requests and closes open
// event streams.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		if err := s.Watch(watchCtx); err != nil {
			s.logger.Error("file watcher stopped", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr, "file", s.file)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return alerr.Wrap(alerr.ErrServe, err, "server listen failed").With("addr", addr)
	case <-ctx.Done():
		s.logger.Info("shutting down, draining connections...")
	}

	s.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return alerr.Wrap(alerr.ErrServe, err, "server shutdown failed")
	}
	s.logger.Info("server stopped")
	return nil
}

// Close ends open event streams and stops change notifications.
func (s *Server) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.designer.Close()
		s.mu.Unlock()
	})
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// File returns the backing file, or "" for an in-memory diagram.
func (s *Server) File() string { return s.file }

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// etag quotes a fingerprint for use in ETag and If-Match headers.
func etag(fingerprint string) string {
	return `"` + fingerprint + `"`
}

// matchesETag reports whether header lists tag, honouring "*".
func matchesETag(header, tag string) bool {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "W/")
		if part == "*" || part == tag {
			return true
		}
	}
	return false
}
