package theming

import (
	"context"
	"net/http"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Cookie stores the last explicit theme choice as "name:variant".
const Cookie = "formdesigner_theme"

// Resolution is the theme state installed in the request context.
type Resolution struct {
	Selection *theme.Selection
	Config    *theme.RendererConfig
}

type contextKey struct{}

// WithResolution stores res in ctx.
func WithResolution(ctx context.Context, res Resolution) context.Context {
	return context.WithValue(ctx, contextKey{}, res)
}

// FromContext returns the resolution installed by Middleware.
func FromContext(ctx context.Context) (Resolution, bool) {
	res, ok := ctx.Value(contextKey{}).(Resolution)
	return res, ok
}

// Middleware resolves the theme for each request from the "theme" and
// "variant" query parameters, then the cookie, then the selector defaults.
// An explicit query choice is remembered in the cookie. Unknown themes fall
// back to the defaults instead of failing the request.
func Middleware(selector theme.ThemeSelector, fallbacks map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, variant := fromCookie(r)
			query := r.URL.Query()
			explicit := false
			if q := strings.TrimSpace(query.Get("theme")); q != "" {
				name, explicit = q, true
			}
			if q := strings.TrimSpace(query.Get("variant")); q != "" {
				variant, explicit = q, true
			}

			selection, err := selector.Select(name, variant)
			if err != nil {
				selection, err = selector.Select("", "")
			}
			if err != nil || selection == nil {
				next.ServeHTTP(w, r)
				return
			}
			if explicit {
				http.SetCookie(w, &http.Cookie{
					Name:     Cookie,
					Value:    selection.Theme + ":" + selection.Variant,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			res := Resolution{Selection: selection, Config: RendererConfig(selection, fallbacks)}
			next.ServeHTTP(w, r.WithContext(WithResolution(r.Context(), res)))
		})
	}
}

func fromCookie(r *http.Request) (string, string) {
	cookie, err := r.Cookie(Cookie)
	if err != nil {
		return "", ""
	}
	name, variant, _ := strings.Cut(cookie.Value, ":")
	return strings.TrimSpace(name), strings.TrimSpace(variant)
}
