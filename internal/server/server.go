// Package server wires the designer application from its configuration and
// runs the HTTP server next to the session sweeper.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formdesigner/components/designer"
	"github.com/goliatone/go-formdesigner/internal/config"
	"github.com/goliatone/go-formdesigner/internal/logging"
	"github.com/goliatone/go-formdesigner/pkg/auth"
	"github.com/goliatone/go-formdesigner/pkg/designdoc"
	"github.com/goliatone/go-formdesigner/pkg/elements"
	"github.com/goliatone/go-formdesigner/pkg/elements/builtin"
	"github.com/goliatone/go-formdesigner/pkg/orchestrator"
	"github.com/goliatone/go-formdesigner/pkg/renderers/vanilla"
	"github.com/goliatone/go-formdesigner/pkg/session"
	"github.com/goliatone/go-formdesigner/pkg/shell"
	"github.com/goliatone/go-formdesigner/pkg/theming"
)

// AssetsPath is where the stylesheet and script are served. It matches the
// asset prefix of the built-in theme manifest.
const AssetsPath = "/assets/"

const readHeaderTimeout = 10 * time.Second

type Option func(*Server)

// WithElements replaces the built-in element registry.
func WithElements(registry *elements.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.elements = registry
		}
	}
}

// WithAuthenticator overrides the authenticator derived from auth.mode.
func WithAuthenticator(authenticator auth.Authenticator) Option {
	return func(s *Server) {
		s.authenticator = authenticator
	}
}

// Server is the assembled application.
type Server struct {
	cfg           config.Config
	logger        *zap.Logger
	elements      *elements.Registry
	authenticator auth.Authenticator

	store      *session.Store
	watcher    *seedWatcher
	designPath string
	handler    http.Handler
	http       *http.Server
}

// New assembles the application: seed design, session store, theme catalog,
// shell, designer component, health check and static assets.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, logger: logger, elements: builtin.Registry()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	storeOpts := []session.Option{
		session.WithTTL(cfg.Session.TTL),
		session.WithTypeChecker(s.elements),
	}
	seed := strings.TrimSpace(cfg.Design.Seed)
	loader := designdoc.New(designdoc.WithTypeChecker(s.elements))
	if seed != "" {
		design, err := loader.Load(ctx, designdoc.SourceFromFile(seed))
		if err != nil {
			return nil, fmt.Errorf("server: seed design: %w", err)
		}
		storeOpts = append(storeOpts, session.WithSeed(design))
		logger.Info("seed design loaded", zap.String("path", seed), zap.Int("elements", len(design.Elements)))
	}
	s.store = session.NewStore(storeOpts...)
	if seed != "" && cfg.Design.Watch {
		s.watcher = &seedWatcher{path: seed, loader: loader, store: s.store, logger: logger}
	}

	catalog, err := theming.NewCatalog(cfg.Theme.Default, cfg.Theme.Variant, theming.DefaultManifest())
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	if s.authenticator == nil {
		s.authenticator, err = authenticator(cfg.Auth)
		if err != nil {
			return nil, err
		}
	}

	sh, err := shell.New(
		shell.WithAuthenticator(s.authenticator),
		shell.WithSessions(s.store),
		shell.WithSessionCookie(cfg.Session.Cookie),
		shell.WithThemes(catalog),
	)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	orch := orchestrator.New(
		orchestrator.WithElements(s.elements),
		orchestrator.WithThemeSelector(catalog),
	)

	app := http.NewServeMux()
	pattern, err := designer.RegisterRoutes(app, cfg.Server.BasePath,
		designer.WithLayout(sh),
		designer.WithOrchestrator(orch),
	)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.designPath = pattern

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", s.healthz)
	root.Handle(AssetsPath, http.StripPrefix(AssetsPath, http.FileServerFS(vanilla.AssetsFS())))
	if pattern != "/" {
		root.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, pattern, http.StatusFound)
		})
	}
	root.Handle("/", sh.Wrap(app))

	s.handler = logging.Middleware(logger)(gzhttp.GzipHandler(root))
	s.http = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s, nil
}

func authenticator(cfg config.AuthConfig) (auth.Authenticator, error) {
	switch cfg.Mode {
	case config.AuthToken:
		token, err := auth.NewToken(cfg.TokenHash, "designer")
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		return token, nil
	case "", config.AuthNone:
		return auth.Anonymous(), nil
	}
	return nil, fmt.Errorf("server: unknown auth mode %q", cfg.Mode)
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// DesignerPath is the mount pattern of the designer component.
func (s *Server) DesignerPath() string {
	return s.designPath
}

// Sessions returns the session store.
func (s *Server) Sessions() *session.Store {
	return s.store
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln next to the session sweeper and, when
// design.watch is set, the seed watcher. When ctx is done the server is shut
// down gracefully within server.shutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()), zap.String("designer", s.designPath))
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := s.store.Run(gctx, s.cfg.Session.SweepInterval); err != nil && gctx.Err() == nil {
			return fmt.Errorf("server: sweeper: %w", err)
		}
		return nil
	})

	if s.watcher != nil {
		g.Go(func() error {
			return s.watcher.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	err := json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
	if err != nil {
		s.logger.Warn("healthz write failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
	}
}
