package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iconidentify/agobackup/internal/api/middleware"
	"github.com/iconidentify/agobackup/internal/portal"
	"github.com/iconidentify/agobackup/internal/session"
)

func fakeConnector(conn portal.Connection, err error) Connector {
	return func(ctx context.Context, url, username, password string) (portal.Connection, error) {
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	store := session.NewStore(time.Hour)
	handler := NewAuthHandler(fakeConnector(portal.NewFake("alice"), nil), store, "https://www.arcgis.com", testLogger())

	body := `{"username":"alice","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp LoginResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Username != "alice" {
		t.Errorf("username = %q, want %q", resp.Username, "alice")
	}
	if resp.Message != "Logged in as alice." {
		t.Errorf("message = %q", resp.Message)
	}

	cookies := w.Result().Cookies()
	var found *http.Cookie
	for _, c := range cookies {
		if c.Name == middleware.SessionCookie {
			found = c
		}
	}
	if found == nil {
		t.Fatal("session cookie not set")
	}
	if !found.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if _, ok := store.Get(found.Value); !ok {
		t.Error("cookie token should resolve to a live session")
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	store := session.NewStore(time.Hour)
	handler := NewAuthHandler(fakeConnector(portal.NewFake("alice"), nil), store, "", testLogger())

	for _, body := range []string{
		`{"username":"","password":"secret"}`,
		`{"username":"   ","password":"secret"}`,
		`{"username":"alice","password":""}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
	}
	if store.Len() != 0 {
		t.Errorf("sessions = %d, want 0", store.Len())
	}
}

func TestAuthHandler_Login_PortalRejects(t *testing.T) {
	store := session.NewStore(time.Hour)
	handler := NewAuthHandler(fakeConnector(nil, errors.New("invalid credentials")), store, "", testLogger())

	body := `{"username":"alice","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(w.Body.String(), "login failed") {
		t.Errorf("body = %s, want a login failed message", w.Body.String())
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	store := session.NewStore(time.Hour)
	sess := store.Create(portal.NewFake("alice"))
	handler := NewAuthHandler(fakeConnector(nil, nil), store, "", testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: sess.Token})
	w := httptest.NewRecorder()

	handler.Logout(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if store.Len() != 0 {
		t.Errorf("sessions = %d, want 0 after logout", store.Len())
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie && c.MaxAge >= 0 {
			t.Error("session cookie should be expired")
		}
	}
}
