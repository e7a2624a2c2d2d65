package api

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/homebasehq/homebase/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	users      store.UserStore
	sessions   store.SessionStore
	jwtSecret  []byte
	issuer     string
	sessionTTL time.Duration
	secure     bool
}

// NewAuthHandler creates a new AuthHandler. secure controls the cookie's
// Secure flag; disable it only for plain-HTTP local development.
func NewAuthHandler(users store.UserStore, sessions store.SessionStore, jwtSecret []byte, issuer string, sessionTTL time.Duration, secure bool) *AuthHandler {
	if sessionTTL == 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthHandler{
		users:      users,
		sessions:   sessions,
		jwtSecret:  jwtSecret,
		issuer:     issuer,
		sessionTTL: sessionTTL,
		secure:     secure,
	}
}

// userPayload is the user shape returned by the auth endpoints.
type userPayload struct {
	User struct {
		ID          uuid.UUID  `json:"id"`
		Email       string     `json:"email"`
		DisplayName string     `json:"display_name"`
		Role        store.Role `json:"role"`
		Plugins     []string   `json:"plugins"`
	} `json:"user"`
}

func toUserPayload(u *store.User) userPayload {
	var p userPayload
	p.User.ID = u.ID
	p.User.Email = u.Email
	p.User.DisplayName = u.DisplayName
	p.User.Role = u.Role
	p.User.Plugins = u.Plugins
	if p.User.Plugins == nil {
		p.User.Plugins = []string{}
	}
	return p
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"` //nolint:gosec // G117: request DTO field
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !user.Active {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := randomToken()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	now := time.Now()
	session := &store.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     token,
		IPAddress: realIP(r),
		UserAgent: r.UserAgent(),
		Active:    true,
		CreatedAt: now,
		ExpiresAt: now.Add(h.sessionTTL),
	}
	if err := h.sessions.Create(r.Context(), session); err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user.LastLoginAt = &now
	user.UpdatedAt = now
	_ = h.users.Update(r.Context(), user)

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	WriteJSON(w, http.StatusOK, toUserPayload(user))
}

// Logout handles POST /api/auth/logout. It deactivates the current
// session and clears the cookie. Logging out without a session is fine.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if session, err := h.sessions.GetByToken(r.Context(), cookie.Value); err == nil {
			session.Active = false
			_ = h.sessions.Update(r.Context(), session)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	WriteJSON(w, http.StatusOK, toUserPayload(user))
}

// Token handles POST /api/auth/token. It mints a JWT bearer token for
// non-browser API access, scoped to the authenticated user.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		Issuer:    h.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.sessionTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"token":      signed,
		"expires_at": claims.ExpiresAt.Time,
	})
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
