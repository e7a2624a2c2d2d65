package api

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.doAnon(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("session cookie not set")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	var payload struct {
		User struct {
			Email   string   `json:"email"`
			Role    string   `json:"role"`
			Plugins []string `json:"plugins"`
		} `json:"user"`
	}
	decodeData(t, w, &payload)
	if payload.User.Email != "admin@example.com" || payload.User.Role != "admin" {
		t.Errorf("unexpected user payload: %+v", payload.User)
	}
	if len(payload.User.Plugins) == 0 {
		t.Error("plugins missing from login payload")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.doAnon(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("no cookie should be set on failed login")
	}
}

func TestMeRequiresAuth(t *testing.T) {
	env := newTestEnv(t, nil)

	if w := env.doAnon(t, http.MethodGet, "/api/auth/me", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anon status = %d, want 401", w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/auth/me", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var payload struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeData(t, w, &payload)
	if payload.User.Email != "admin@example.com" {
		t.Errorf("email = %q", payload.User.Email)
	}
}

func TestLogoutDeactivatesSession(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/auth/logout", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}

	// The old cookie no longer authenticates.
	if w := env.do(t, http.MethodGet, "/api/auth/me", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("status after logout = %d, want 401", w.Code)
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	env := newTestEnv(t, nil)

	env.session.ExpiresAt = time.Now().Add(-time.Minute)
	if err := env.stores.Sessions.Update(context.Background(), env.session); err != nil {
		t.Fatalf("expire session: %v", err)
	}

	if w := env.do(t, http.MethodGet, "/api/auth/me", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("status with expired session = %d, want 401", w.Code)
	}
}

func TestBearerTokenFallback(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/auth/token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("token status = %d, body %s", w.Code, w.Body.String())
	}
	var payload struct {
		Token string `json:"token"`
	}
	decodeData(t, w, &payload)
	if payload.Token == "" {
		t.Fatal("empty token")
	}

	req, w2 := newBearerRequest(t, http.MethodGet, "/api/auth/me", payload.Token)
	env.handler.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Errorf("bearer status = %d, body %s", w2.Code, w2.Body.String())
	}
}
