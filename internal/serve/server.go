// Package serve hosts the trainer page locally with the offline cache
// controller in front of the page directory.
package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mkondo/kikitori/internal/offline"
)

// Options configures the local page server.
type Options struct {
	Addr      string
	Dir       string
	Version   string
	CacheFile string
	Logger    *slog.Logger
}

// Server serves the page directory through an offline cache controller.
type Server struct {
	opts Options
	log  *slog.Logger
	ctrl *offline.Controller
}

// New wires a controller over the page directory. With a CacheFile the
// cache persists across runs, otherwise it lives in memory.
func New(opts Options) (*Server, error) {
	if opts.Addr == "" {
		opts.Addr = ":8000"
	}
	if opts.Version == "" {
		opts.Version = "v1"
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	var store offline.Store
	if opts.CacheFile != "" {
		s, err := offline.NewSQLiteStore(opts.CacheFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache file: %w", err)
		}
		store = s
	} else {
		store = offline.NewMemoryStore()
	}

	ctrlOpts := offline.DefaultOptions(opts.Version)
	ctrlOpts.Logger = log
	origin := &fileOrigin{
		inner: http.NewFileTransport(http.Dir(opts.Dir)),
		shell: ctrlOpts.ShellFile,
	}
	ctrl := offline.New(store, origin, ctrlOpts)

	return &Server{opts: opts, log: log, ctrl: ctrl}, nil
}

// Handler exposes the controller-backed handler for the page.
func (s *Server) Handler() http.Handler {
	return s.ctrl.Handler()
}

// Install precaches the page into the current cache version and purges
// stale versions.
func (s *Server) Install(ctx context.Context) error {
	if err := s.ctrl.Install(ctx); err != nil {
		return fmt.Errorf("cache install failed: %w", err)
	}
	if err := s.ctrl.Activate(ctx); err != nil {
		return fmt.Errorf("cache activate failed: %w", err)
	}
	return nil
}

// Run installs the cache and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Install(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving page", "addr", s.opts.Addr, "dir", s.opts.Dir, "version", s.opts.Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("shutdown incomplete", "error", err)
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			s.closeController()
			return err
		}
	}

	return s.closeController()
}

func (s *Server) closeController() error {
	if err := s.ctrl.Close(); err != nil {
		return fmt.Errorf("failed to close cache: %w", err)
	}
	return nil
}

// fileOrigin serves the page directory. The file server answers direct
// shell requests with a redirect, so those are mapped onto the
// directory path instead.
type fileOrigin struct {
	inner http.RoundTripper
	shell string
}

func (o *fileOrigin) RoundTrip(req *http.Request) (*http.Response, error) {
	if o.shell != "" && strings.HasSuffix(req.URL.Path, "/"+o.shell) {
		clone := req.Clone(req.Context())
		clone.URL.Path = strings.TrimSuffix(req.URL.Path, o.shell)
		return o.inner.RoundTrip(clone)
	}
	return o.inner.RoundTrip(req)
}
