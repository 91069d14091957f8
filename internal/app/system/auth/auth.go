package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	userNameKey  = "user_name"
	userEmailKey = "user_email"
)

// SessionUser is what we cache in the session & inject into r.Context().
type SessionUser struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// UserFetcher loads fresh user data for a session on each request, so
// deleted accounts and profile updates take effect immediately.
type UserFetcher interface {
	Fetch(ctx context.Context, userID string) (*SessionUser, error)
}

// SessionManager wraps the cookie session store. It is constructed once
// at startup and injected into the handlers that need it; there is no
// package-level store.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher UserFetcher
}

// NewSessionManager builds a cookie-backed session manager. The secure
// flag controls the Secure attribute and SameSite mode: production uses
// Secure + SameSite=None for cross-site HTTPS, dev uses Lax so cookies
// are accepted over http://localhost.
func NewSessionManager(sessionKey, sessionName, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	keyBytes := []byte(sessionKey)
	if sessionKey == "" {
		keyBytes = securecookie.GenerateRandomKey(32)
		if keyBytes == nil {
			return nil, fmt.Errorf("session key is empty and random key generation failed")
		}
		logger.Warn("session key is empty; generated an ephemeral key, sessions will not survive restarts")
	} else if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore(keyBytes)
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: sessionName, log: logger}, nil
}

// SetUserFetcher installs a fetcher used by LoadSessionUser to refresh
// the session user from the record store on every request.
func (m *SessionManager) SetUserFetcher(f UserFetcher) {
	m.fetcher = f
}

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// SignIn marks the session authenticated and stores the user's identity.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[userEmailKey] = u.Email
	return sess.Save(r, w)
}

// SignOut clears the session.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context if they are logged in.
// When a UserFetcher is installed the user is re-fetched from the
// record store; a fetch miss leaves the request signed out (fail
// closed) rather than trusting stale session data.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.store.Get(r, m.name)

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				ID:    getString(sess, userIDKey),
				Name:  getString(sess, userNameKey),
				Email: getString(sess, userEmailKey),
			}
			if m.fetcher != nil && u.ID != "" {
				fresh, err := m.fetcher.Fetch(r.Context(), u.ID)
				if err != nil {
					m.log.Warn("session user fetch failed", zap.Error(err))
					u = nil
				} else {
					u = fresh
				}
			}
			if u != nil && u.ID != "" {
				r = withUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by
// LoadSessionUser). If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		ret := url.QueryEscape(currentURI(r))

		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", "/login?return="+ret)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		if wantsHTML(r) {
			http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
			return
		}

		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// WithTestUser injects a SessionUser directly into the request context.
// Only for tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
