// internal/app/system/auth/auth.go

// Package auth establishes the caller identity for every request. Identity
// comes from the cookie session when one exists, otherwise from a bearer
// token in the Authorization header. In both cases the user is re-fetched
// from the store on each request, so a deleted account or changed profile
// takes effect immediately rather than living on in a stale session.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/fairwaylog/fairwaylog/internal/app/system/httpapi"
	"github.com/fairwaylog/fairwaylog/internal/app/system/token"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
)

// SessionUser is the authenticated identity injected into r.Context().
type SessionUser struct {
	ID    string
	Name  string
	Email string
}

// UserFetcher loads a fresh SessionUser by user id hex. A malformed id or a
// user that no longer exists yields (nil, nil) — the request simply stays
// anonymous. Errors are reserved for store failures.
type UserFetcher interface {
	FetchByID(ctx context.Context, id string) (*SessionUser, error)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// SessionManager wraps the cookie store plus the request middleware that
// resolves identity.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher UserFetcher
	tokens  *token.Manager
}

// NewSessionManager builds a SessionManager. In production (secure=true)
// cookies are Secure + SameSite=None so the SPA can send them cross-site
// over HTTPS; in dev, Lax over plain http.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher wires the store-backed fetcher used to load fresh user
// data on each request.
func (m *SessionManager) SetUserFetcher(f UserFetcher) { m.fetcher = f }

// SetTokenManager enables the bearer-credential fallback path.
func (m *SessionManager) SetTokenManager(t *token.Manager) { m.tokens = t }

// Store exposes the underlying cookie store (logout needs its options).
func (m *SessionManager) Store() *sessions.CookieStore { return m.store }

// GetSession returns the request's session, a fresh one if none exists.
func (m *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, m.name)
}

// Establish marks the session authenticated for the given user and saves it.
func (m *SessionManager) Establish(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, err := m.GetSession(r)
	if err != nil {
		// sessions.Get already handed back a fresh session, so log and
		// continue either way.
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			m.log.Warn("session cookie invalid, using fresh session", zap.Error(err))
		} else {
			m.log.Error("session store error, using fresh session", zap.Error(err))
		}
	}
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.GetSession(r)
	if err != nil {
		m.log.Warn("session decode failed during logout", zap.Error(err))
	}
	if opts := m.store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser resolves identity and injects it into context. Session
// first; bearer token as fallback. Resolution failures leave the request
// anonymous — RequireSignedIn decides whether that is an error.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := m.sessionUserID(r); ok {
			if u := m.fetch(r.Context(), userID); u != nil {
				r = withUser(r, u)
			}
			next.ServeHTTP(w, r)
			return
		}

		if m.tokens != nil {
			if raw, ok := token.FromHeader(r); ok {
				userID, err := m.tokens.Verify(raw)
				if err != nil {
					m.log.Debug("bearer token rejected", zap.Error(err))
				} else if u := m.fetch(r.Context(), userID); u != nil {
					r = withUser(r, u)
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (m *SessionManager) sessionUserID(r *http.Request) (string, bool) {
	sess, _ := m.store.Get(r, m.name)
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return "", false
	}
	id, _ := sess.Values[userIDKey].(string)
	return id, id != ""
}

func (m *SessionManager) fetch(ctx context.Context, userID string) *SessionUser {
	if m.fetcher == nil {
		return nil
	}
	u, err := m.fetcher.FetchByID(ctx, userID)
	if err != nil {
		m.log.Debug("session user fetch failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil
	}
	return u
}

// CurrentUser returns the identity placed in context by LoadSessionUser.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// RequireSignedIn rejects anonymous requests with a JSON 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			httpapi.Unauthorized(w, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithTestUser injects a SessionUser into the request context. Test use only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
