package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iconidentify/agobackup/internal/api/middleware"
	"github.com/iconidentify/agobackup/internal/portal"
	"github.com/iconidentify/agobackup/internal/session"
)

// Connector authenticates against the portal and returns a connection.
// Injectable so tests can supply a fake.
type Connector func(ctx context.Context, url, username, password string) (portal.Connection, error)

// AuthHandler handles login and logout.
type AuthHandler struct {
	connect    Connector
	sessions   *session.Store
	defaultURL string
	logger     *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(connect Connector, sessions *session.Store, defaultURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		connect:    connect,
		sessions:   sessions,
		defaultURL: defaultURL,
		logger:     logger,
	}
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	URL      string `json:"url,omitempty"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Login handles POST /api/v1/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		url = h.defaultURL
	}

	conn, err := h.connect(r.Context(), url, req.Username, req.Password)
	if err != nil {
		h.logger.Warn("login failed", "username", req.Username, "error", err)
		writeError(w, http.StatusUnauthorized, "login failed: "+err.Error())
		return
	}

	sess := h.sessions.Create(conn)
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("login", "username", conn.Username())
	writeJSON(w, http.StatusOK, LoginResponse{
		Username: conn.Username(),
		Message:  "Logged in as " + conn.Username() + ".",
	})
}

// Logout handles POST /api/v1/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		h.sessions.Delete(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out."})
}
