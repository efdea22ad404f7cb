package middleware

import (
	"context"
	"net/http"

	"github.com/iconidentify/agobackup/internal/session"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "agobackup_session"

type contextKey struct{}

// SessionAuth requires a valid session cookie and injects the session into
// the request context.
func SessionAuth(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				unauthenticated(w)
				return
			}
			sess, ok := store.Get(cookie.Value)
			if !ok {
				unauthenticated(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), contextKey{}, sess)))
		})
	}
}

// SessionFrom returns the session injected by SessionAuth, or nil.
func SessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(contextKey{}).(*session.Session)
	return sess
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"please log in first"}`))
}
