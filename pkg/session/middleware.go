package session

import (
	"context"
	"net/http"
	"time"
)

// DefaultCookie names the session cookie.
const DefaultCookie = "formdesigner_session"

type contextKey struct{}

// WithSession stores sess in ctx.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session installed by Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*Session)
	return sess, ok && sess != nil
}

// Middleware loads the session named by the cookie, creating one (and setting
// the cookie) when it is absent or expired.
func Middleware(store *Store, cookieName string) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = DefaultCookie
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *Session
			if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
				sess, _ = store.Get(cookie.Value)
			}
			if sess == nil {
				created, err := store.Create()
				if err != nil {
					http.Error(w, "unable to start session", http.StatusInternalServerError)
					return
				}
				sess = created
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(store.TTL() / time.Second),
				})
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}
