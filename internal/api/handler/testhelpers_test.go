package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/iconidentify/agobackup/internal/api/middleware"
	"github.com/iconidentify/agobackup/internal/portal"
	"github.com/iconidentify/agobackup/internal/session"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serveAuthed runs the handler behind the session middleware with a live
// session for conn, the way the router wires it.
func serveAuthed(conn portal.Connection, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	store := session.NewStore(time.Hour)
	sess := store.Create(conn)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: sess.Token})

	w := httptest.NewRecorder()
	middleware.SessionAuth(store)(h).ServeHTTP(w, req)
	return w
}

// serveUnauthed runs the handler behind the session middleware with no
// session cookie at all.
func serveUnauthed(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	store := session.NewStore(time.Hour)
	w := httptest.NewRecorder()
	middleware.SessionAuth(store)(h).ServeHTTP(w, req)
	return w
}
