package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/agobackup/internal/api/handler"
	mw "github.com/iconidentify/agobackup/internal/api/middleware"
	"github.com/iconidentify/agobackup/internal/session"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	authHandler *handler.AuthHandler,
	backupHandler *handler.BackupHandler,
	searchHandler *handler.SearchHandler,
	historyHandler *handler.HistoryHandler,
	healthHandler *handler.HealthHandler,
	uiHandler *handler.UIHandler,
	sessions *session.Store,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(middleware.Timeout(5 * time.Minute))

	// Health endpoints (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	// Web UI (login happens in the page via /api/v1/login)
	r.Get("/", uiHandler.Index)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		// Everything below requires a portal session.
		r.Group(func(r chi.Router) {
			r.Use(mw.SessionAuth(sessions))

			r.Get("/folders", searchHandler.Folders)
			r.Post("/search", searchHandler.Search)

			r.Post("/backup", backupHandler.Run)
			r.Post("/backup/merge-ids", backupHandler.MergeSelected)
			r.Post("/backup/default-path", backupHandler.DefaultPath)

			r.Get("/history", historyHandler.List)
		})
	})

	return r
}
