// Package devserver serves a transit map site during development. It
// rebuilds the WebAssembly client when Go sources change and tells open
// pages to reload through the livereload hub.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/recera/transitmap/internal/config"
	"github.com/recera/transitmap/internal/livereload"
)

// BuildFunc rebuilds the WebAssembly client
type BuildFunc func(ctx context.Context) error

// Server is the development server
type Server struct {
	cfg      *config.Config
	build    BuildFunc
	wasmExec string
	hub      *livereload.Hub
	router   chi.Router

	// root is the directory watched for changes
	root string
}

// New creates a dev server. wasmExec is the path of the wasm_exec.js that
// matches the compiler; it may be empty when none was found.
func New(cfg *config.Config, build BuildFunc, wasmExec string) *Server {
	s := &Server{
		cfg:      cfg,
		build:    build,
		wasmExec: wasmExec,
		hub:      livereload.NewHub(cfg.Dev.AllowAllOrigins),
		root:     ".",
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the livereload hub
func (s *Server) Hub() *livereload.Hub { return s.hub }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.Dev.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle(livereload.Path, s.hub)
	r.Get("/"+filepath.ToSlash(s.cfg.Site.WasmOutput), s.serveWASM)
	r.Get("/wasm_exec.js", s.serveWasmExec)
	r.Get("/favicon.ico", s.serveFavicon)
	r.Handle("/*", noCache(http.FileServer(http.Dir(s.cfg.Site.PublicDir))))
	return r
}

func (s *Server) serveWASM(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/wasm")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filepath.Join(s.cfg.Site.PublicDir, s.cfg.Site.WasmOutput))
}

func (s *Server) serveWasmExec(w http.ResponseWriter, r *http.Request) {
	if s.wasmExec == "" {
		http.Error(w, "wasm_exec.js not available", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, s.wasmExec)
}

// serveFavicon serves a project favicon if present, otherwise returns 204 to avoid noisy 404s
func (s *Server) serveFavicon(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.cfg.Site.PublicDir, "favicon.ico")
	if _, err := os.Stat(path); err == nil {
		http.ServeFile(w, r, path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		next.ServeHTTP(w, r)
	})
}

// Run builds the client once, then serves and watches until ctx is done
func (s *Server) Run(ctx context.Context) error {
	log.Println("🔨 Building WASM...")
	if err := s.build(ctx); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	w, err := newWatcher(s.root, s.cfg.Debounce())
	if err != nil {
		return err
	}
	defer w.Close()
	go w.Run(ctx, s.handleChanges)

	addr := fmt.Sprintf("%s:%d", s.cfg.Dev.Host, s.cfg.Dev.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("✨ Dev server running at http://%s\n", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.hub.Close()
		return err
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down dev server...")
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleChanges rebuilds or reloads for a batch of debounced file events
func (s *Server) handleChanges(ctx context.Context, paths []string) {
	c := Classify(paths)
	switch {
	case c.Rebuild:
		log.Printf("🔄 Go files changed (%d), rebuilding...", len(c.Go))
		if err := s.build(ctx); err != nil {
			log.Printf("❌ Build failed: %v", err)
			s.hub.Notify("error", map[string]interface{}{"error": err.Error()})
			return
		}
		log.Println("✅ Rebuild complete")
		s.hub.Notify("rebuild", map[string]interface{}{"path": c.Go[0]})
	case c.Reload:
		log.Printf("🎨 Assets changed: %v", c.Assets)
		s.hub.Notify("reload", map[string]interface{}{"path": c.Assets[0]})
	}
}
