package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"kakeibo/internal/models"

	"github.com/gorilla/securecookie"
)

const (
	cookieName      = "kakeibo_session"
	flashCookieName = "kakeibo_flash"
)

type ctxKey string

const principalKey ctxKey = "principal"

// Principal identifies the authenticated caller bound into a session
// cookie. It is a transient reference; the store owns the user row.
type Principal struct {
	UserID   int64
	Username string
}

// Manager issues and verifies signed session cookies.
type Manager struct {
	sc     *securecookie.SecureCookie
	secure bool
}

// NewManager creates a session manager. hashKey signs cookies and is
// required; blockKey additionally encrypts them and may be nil.
func NewManager(hashKey, blockKey []byte, secure bool) *Manager {
	return &Manager{sc: securecookie.New(hashKey, blockKey), secure: secure}
}

// Establish binds the user into a signed session cookie. The cookie has
// no explicit expiry, so the session lasts for the browser session.
func (m *Manager) Establish(w http.ResponseWriter, user *models.User) error {
	encoded, err := m.sc.Encode(cookieName, Principal{UserID: user.ID, Username: user.Username})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Current decodes and verifies the session cookie. An absent or
// tampered cookie yields ok == false.
func (m *Manager) Current(r *http.Request) (Principal, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return Principal{}, false
	}
	var p Principal
	if err := m.sc.Decode(cookieName, c.Value, &p); err != nil {
		return Principal{}, false
	}
	if p.UserID <= 0 {
		return Principal{}, false
	}
	return p, true
}

// Clear invalidates the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequirePage wraps page handlers, redirecting unauthenticated callers
// to /login.
func (m *Manager) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := m.Current(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

// RequireJSON wraps JSON handlers, answering 401 for unauthenticated
// callers.
func (m *Manager) RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := m.Current(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext returns the principal stored by the middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// SetFlash stores a one-shot message for the next page render.
func SetFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the flash message, if any.
func PopFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	decoded, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}
