// Package shell composes the application root: every request passes through
// authentication, the design context, theme resolution and the toast host
// before reaching the child handler. Page renders the HTML layout around a
// body fragment produced by the children.
package shell

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formdesigner/pkg/auth"
	rendertemplate "github.com/goliatone/go-formdesigner/pkg/render/template"
	gotemplate "github.com/goliatone/go-formdesigner/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formdesigner/pkg/session"
	"github.com/goliatone/go-formdesigner/pkg/theming"
	"github.com/goliatone/go-formdesigner/pkg/toast"
)

//go:embed templates/*.tmpl
var layoutFS embed.FS

// Provider names.
const (
	ProviderAuth   = "auth"
	ProviderDesign = "design"
	ProviderTheme  = "theme"
	ProviderToasts = "toasts"
)

// DefaultTitle is the page title used when neither the page nor the shell
// sets one.
const DefaultTitle = "Form designer"

// Provider is one layer of the shell.
type Provider struct {
	Name       string
	Middleware func(http.Handler) http.Handler
}

// Page is the content rendered inside the layout.
type Page struct {
	Title string
	// Body is trusted HTML produced by a renderer.
	Body string
}

type Option func(*config)

type config struct {
	authenticator auth.Authenticator
	store         *session.Store
	cookie        string
	selector      theme.ThemeSelector
	fallbacks     map[string]string
	title         string
	templates     rendertemplate.TemplateRenderer
}

// WithAuthenticator sets the authenticator. Defaults to auth.Anonymous.
func WithAuthenticator(authenticator auth.Authenticator) Option {
	return func(cfg *config) {
		if authenticator != nil {
			cfg.authenticator = authenticator
		}
	}
}

// WithSessions sets the session store holding the design contexts.
func WithSessions(store *session.Store) Option {
	return func(cfg *config) {
		if store != nil {
			cfg.store = store
		}
	}
}

// WithSessionCookie overrides the session cookie name.
func WithSessionCookie(name string) Option {
	return func(cfg *config) {
		cfg.cookie = strings.TrimSpace(name)
	}
}

// WithThemes sets the theme selector. Defaults to a catalog holding the
// built-in manifest.
func WithThemes(selector theme.ThemeSelector) Option {
	return func(cfg *config) {
		if selector != nil {
			cfg.selector = selector
		}
	}
}

// WithThemeFallbacks sets partial fallbacks merged into every resolution.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(cfg *config) {
		cfg.fallbacks = fallbacks
	}
}

// WithTitle sets the default page title.
func WithTitle(title string) Option {
	return func(cfg *config) {
		cfg.title = strings.TrimSpace(title)
	}
}

// WithLayoutRenderer replaces the embedded layout. The renderer must provide
// a "layout" template.
func WithLayoutRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templates = renderer
		}
	}
}

// Shell is the composed application root.
type Shell struct {
	providers []Provider
	store     *session.Store
	title     string
	templates rendertemplate.TemplateRenderer
}

// New builds the shell.
func New(options ...Option) (*Shell, error) {
	cfg := config{
		authenticator: auth.Anonymous(),
		cookie:        session.DefaultCookie,
		title:         DefaultTitle,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.store == nil {
		cfg.store = session.NewStore()
	}
	if cfg.selector == nil {
		catalog, err := theming.NewCatalog(theming.DefaultTheme, theming.VariantSystem, theming.DefaultManifest())
		if err != nil {
			return nil, fmt.Errorf("shell: theme catalog: %w", err)
		}
		cfg.selector = catalog
	}
	if cfg.templates == nil {
		files, err := fs.Sub(layoutFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("shell: layout templates: %w", err)
		}
		engine, err := gotemplate.New(
			gotemplate.WithFS(files),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithSetName("shell"),
		)
		if err != nil {
			return nil, fmt.Errorf("shell: layout renderer: %w", err)
		}
		cfg.templates = engine
	}

	return &Shell{
		providers: []Provider{
			{Name: ProviderAuth, Middleware: auth.Middleware(cfg.authenticator)},
			{Name: ProviderDesign, Middleware: session.Middleware(cfg.store, cfg.cookie)},
			{Name: ProviderTheme, Middleware: theming.Middleware(cfg.selector, cfg.fallbacks)},
			{Name: ProviderToasts, Middleware: toastHost},
		},
		store:     cfg.store,
		title:     cfg.title,
		templates: cfg.templates,
	}, nil
}

// Providers returns the layers in the order a request passes through them.
func (s *Shell) Providers() []Provider {
	return append([]Provider(nil), s.providers...)
}

// Sessions returns the store backing the design context.
func (s *Shell) Sessions() *session.Store {
	return s.store
}

// Wrap composes the providers around children, the first provider outermost.
func (s *Shell) Wrap(children http.Handler) http.Handler {
	handler := children
	for i := len(s.providers) - 1; i >= 0; i-- {
		handler = s.providers[i].Middleware(handler)
	}
	return handler
}

// Page writes the HTML layout with page.Body as the main content. Pending
// toasts of the request's session are drained and rendered after the body.
func (s *Shell) Page(w http.ResponseWriter, r *http.Request, page Page) error {
	markup, err := s.RenderPage(r.Context(), page)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, err = w.Write([]byte(markup))
	return err
}

// RenderPage renders the layout for the request context ctx.
func (s *Shell) RenderPage(ctx context.Context, page Page) (string, error) {
	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = s.title
	}

	data := map[string]any{
		"title":      title,
		"body":       page.Body,
		"html_class": "fd-theme",
		"toasts":     Toasts(ctx).Drain(),
	}
	if res, ok := theming.FromContext(ctx); ok {
		layoutTheme(data, res)
	}

	out, err := s.templates.RenderTemplate("layout", data)
	if err != nil {
		return "", fmt.Errorf("shell: render layout: %w", err)
	}
	return out, nil
}

func layoutTheme(data map[string]any, res theming.Resolution) {
	if res.Selection == nil || res.Config == nil {
		return
	}
	cfg := res.Config
	data["variant"] = cfg.Variant
	data["html_class"] = "fd-theme fd-theme-" + cfg.Theme + " fd-variant-" + cfg.Variant
	data["light_vars"] = cssDeclarations(cfg.CSSVars)
	if cfg.Variant == theming.VariantSystem {
		data["dark_vars"] = cssDeclarations(theming.VariantCSSVars(res.Selection.Manifest, theming.VariantDark))
	}
	if cfg.AssetURL != nil {
		data["stylesheet"] = cfg.AssetURL("stylesheet")
		data["script"] = cfg.AssetURL("script")
	}
}

// cssDeclarations drops values that could close the style element.
func cssDeclarations(vars map[string]string) string {
	clean := make(map[string]string, len(vars))
	for key, value := range vars {
		if strings.ContainsAny(key+value, "<>{}") {
			continue
		}
		clean[key] = value
	}
	return theming.CSSVarsStyle(clean)
}

type toastsKey struct{}

// toastHost binds the session's toast queue to the request.
func toastHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var queue *toast.Queue
		if sess, ok := session.FromContext(r.Context()); ok {
			queue = sess.Toasts
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), toastsKey{}, queue)))
	})
}

// Toasts returns the toast queue bound to ctx. The nil queue it returns
// outside the shell discards pushes and drains empty.
func Toasts(ctx context.Context) *toast.Queue {
	queue, _ := ctx.Value(toastsKey{}).(*toast.Queue)
	return queue
}
