package shell

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formdesigner/pkg/auth"
	"github.com/goliatone/go-formdesigner/pkg/session"
	"github.com/goliatone/go-formdesigner/pkg/testsupport"
	"github.com/goliatone/go-formdesigner/pkg/theming"
)

type recordingSelector struct {
	next  theme.ThemeSelector
	trace func()
}

func (s recordingSelector) Select(name, variant string, opts ...theme.QueryOption) (*theme.Selection, error) {
	s.trace()
	return s.next.Select(name, variant, opts...)
}

func defaultCatalog(t *testing.T) *theming.Catalog {
	t.Helper()
	catalog, err := theming.NewCatalog(theming.DefaultTheme, theming.VariantSystem, theming.DefaultManifest())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return catalog
}

func TestProvidersOrder(t *testing.T) {
	sh, err := New()
	if err != nil {
		t.Fatalf("new shell: %v", err)
	}
	var names []string
	for _, provider := range sh.Providers() {
		names = append(names, provider.Name)
	}
	want := []string{ProviderAuth, ProviderDesign, ProviderTheme, ProviderToasts}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("providers mismatch (-want +got):\n%s", diff)
	}
}

func TestWrapRunsProvidersInOrder(t *testing.T) {
	store := session.NewStore()
	var trace []string

	authenticator := auth.AuthenticatorFunc(func(r *http.Request) (auth.Principal, error) {
		if _, ok := session.FromContext(r.Context()); ok {
			t.Errorf("session resolved before auth")
		}
		trace = append(trace, "auth")
		return auth.Principal{Subject: "ada"}, nil
	})
	selector := recordingSelector{
		next: defaultCatalog(t),
		trace: func() {
			if store.Len() != 1 {
				t.Errorf("theme resolved before the design context")
			}
			trace = append(trace, "theme")
		},
	}

	sh, err := New(WithAuthenticator(authenticator), WithSessions(store), WithThemes(selector))
	if err != nil {
		t.Fatalf("new shell: %v", err)
	}

	handler := sh.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trace = append(trace, "children")
		ctx := r.Context()

		principal, ok := auth.FromContext(ctx)
		if !ok || principal.Subject != "ada" {
			t.Errorf("unexpected principal %+v", principal)
		}
		sess, ok := session.FromContext(ctx)
		if !ok {
			t.Fatalf("session missing")
		}
		if Toasts(ctx) != sess.Toasts {
			t.Errorf("toast host not bound to the session queue")
		}
		res, ok := theming.FromContext(ctx)
		if !ok || res.Selection.Theme != theming.DefaultTheme || res.Selection.Variant != theming.VariantSystem {
			t.Errorf("unexpected theme resolution %+v", res.Selection)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if diff := cmp.Diff([]string{"auth", "theme", "children"}, trace); diff != "" {
		t.Fatalf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestWrapStopsAtAuth(t *testing.T) {
	store := session.NewStore()
	sh, err := New(
		WithSessions(store),
		WithAuthenticator(auth.AuthenticatorFunc(func(*http.Request) (auth.Principal, error) {
			return auth.Principal{}, auth.ErrUnauthenticated
		})),
	)
	if err != nil {
		t.Fatalf("new shell: %v", err)
	}

	called := false
	handler := sh.Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("expected 401 without reaching children, got %d (called=%v)", rec.Code, called)
	}
	if store.Len() != 0 {
		t.Fatalf("rejected request must not create a session")
	}
}

func TestPageRendersLayoutAndDrainsToasts(t *testing.T) {
	sh, err := New(WithTitle("Designer"))
	if err != nil {
		t.Fatalf("new shell: %v", err)
	}
	handler := sh.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("toast") != "" {
			Toasts(r.Context()).Success("Field added", "Text field")
		}
		if err := sh.Page(w, r, Page{Body: `<div id="body-marker">content</div>`}); err != nil {
			t.Errorf("page: %v", err)
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?toast=1", nil))
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	doc := testsupport.MustParseHTML(t, []byte(body))

	htmlNodes := doc.All("html")
	if len(htmlNodes) != 1 {
		t.Fatalf("expected one html element")
	}
	if lang, _ := htmlNodes[0].Attr("lang"); lang != "en" {
		t.Fatalf("expected lang=en, got %q", lang)
	}
	if class, _ := htmlNodes[0].Attr("class"); !strings.Contains(class, "fd-theme-formdesigner") || !strings.Contains(class, "fd-variant-system") {
		t.Fatalf("unexpected html class %q", class)
	}
	if titles := doc.All("title"); len(titles) != 1 || titles[0].Text() != "Designer" {
		t.Fatalf("unexpected title")
	}

	style, ok := doc.ByID("fd-theme-vars")
	if !ok {
		t.Fatalf("theme variables missing")
	}
	css := style.Text()
	if !strings.Contains(css, "--background: #ffffff;") {
		t.Fatalf("light variables missing: %s", css)
	}
	if !strings.Contains(css, "prefers-color-scheme: dark") || !strings.Contains(css, "--background: #0a0a0a;") {
		t.Fatalf("dark variables missing: %s", css)
	}

	if links := doc.WithAttr("href", "/assets/formdesigner.css"); len(links) != 1 {
		t.Fatalf("stylesheet link missing")
	}
	if scripts := doc.WithAttr("src", "/assets/formdesigner.js"); len(scripts) != 1 {
		t.Fatalf("script missing")
	}

	mainNode, ok := doc.ByID("fd-main")
	if !ok {
		t.Fatalf("main missing")
	}
	if _, ok := mainNode.ByID("body-marker"); !ok {
		t.Fatalf("body not rendered inside main")
	}

	host, ok := doc.ByID("fd-toasts")
	if !ok {
		t.Fatalf("toast host missing")
	}
	toasts := host.WithAttr("role", "status")
	if len(toasts) != 1 || toasts[0].Text() != "Field added Text field" {
		t.Fatalf("unexpected toasts %q", host.Text())
	}
	if strings.Index(body, `id="fd-toasts"`) < strings.Index(body, `id="body-marker"`) {
		t.Fatalf("toast host must follow the children")
	}

	// Toasts are shown once.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	doc = testsupport.MustParseHTML(t, rec.Body.Bytes())
	host, _ = doc.ByID("fd-toasts")
	if got := host.WithAttr("role", "status"); len(got) != 0 {
		t.Fatalf("toasts should be drained, got %d", len(got))
	}
}

func TestPageExplicitVariantSkipsDarkBlock(t *testing.T) {
	sh, err := New()
	if err != nil {
		t.Fatalf("new shell: %v", err)
	}
	handler := sh.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = sh.Page(w, r, Page{Title: "Preview"})
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?variant=dark", nil))
	doc := testsupport.MustParseHTML(t, rec.Body.Bytes())
	style, ok := doc.ByID("fd-theme-vars")
	if !ok {
		t.Fatalf("theme variables missing")
	}
	css := style.Text()
	if strings.Contains(css, "prefers-color-scheme") {
		t.Fatalf("explicit variant should not emit a media block: %s", css)
	}
	if !strings.Contains(css, "--background: #0a0a0a;") {
		t.Fatalf("dark tokens expected: %s", css)
	}
}

func TestCSSDeclarationsDropsUnsafeValues(t *testing.T) {
	got := cssDeclarations(map[string]string{
		"--ok":  "#fff",
		"--bad": "red</style><script>",
	})
	if got != "--ok: #fff;" {
		t.Fatalf("unexpected declarations %q", got)
	}
}

func TestToastsOutsideShell(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	queue := Toasts(req.Context())
	queue.Info("ignored", "")
	if queue.Drain() != nil {
		t.Fatalf("nil queue should drain empty")
	}
}
