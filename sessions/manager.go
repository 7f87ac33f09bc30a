// Package sessions implements server-side login sessions. A session is
// referenced by an opaque id carried either in an HttpOnly cookie or in the
// sid claim of a signed bearer token; both resolve through the same store, so
// deleting the session revokes every form of it.
package sessions

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"geniustrading/models"
	"geniustrading/storage"
	"geniustrading/utils"
)

var ErrNoSession = errors.New("no valid session")

type Options struct {
	TTL        time.Duration
	TouchAfter time.Duration
	CookieName string
	Secure     bool
}

type Manager struct {
	store  Store
	signer *utils.TokenSigner
	opts   Options
	now    func() time.Time
}

func NewManager(store Store, signer *utils.TokenSigner, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	if opts.CookieName == "" {
		opts.CookieName = "gt_session"
	}
	return &Manager{store: store, signer: signer, opts: opts, now: time.Now}
}

// Issued describes a newly started session.
type Issued struct {
	Session   *models.Session
	Token     string
	ExpiresAt time.Time
}

// Start creates a session for user, sets the cookie and returns the bearer
// token for non-browser clients.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, user *models.User) (*Issued, error) {
	sess, err := models.NewSession(user.ID, m.opts.TTL)
	if err != nil {
		return nil, err
	}
	now := m.now()
	sess.CreatedAt, sess.LastSeenAt, sess.ExpiresAt = now, now, now.Add(m.opts.TTL)
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	token, err := m.signer.Issue(user.ID, user.Role, sess.ID, sess.ExpiresAt)
	if err != nil {
		_ = m.store.Delete(ctx, sess.ID)
		return nil, err
	}
	m.setCookie(w, sess.ID, sess.ExpiresAt)
	return &Issued{Session: sess, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

// Resolve returns the live session referenced by the request. Sessions are
// rolling: activity pushes the expiry forward, at most once per TouchAfter.
func (m *Manager) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Session, error) {
	id, fromCookie := m.sessionID(r)
	if id == "" {
		return nil, ErrNoSession
	}
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	now := m.now()
	if sess.Expired(now) {
		_ = m.store.Delete(ctx, id)
		return nil, ErrNoSession
	}
	if now.Sub(sess.LastSeenAt) >= m.opts.TouchAfter {
		exp := now.Add(m.opts.TTL)
		if err := m.store.Touch(ctx, id, now, exp); err != nil {
			return nil, err
		}
		sess.LastSeenAt, sess.ExpiresAt = now, exp
		if fromCookie {
			m.setCookie(w, id, exp)
		}
	}
	return sess, nil
}

// Destroy deletes the request's session, if any, and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, _ := m.sessionID(r)
	m.clearCookie(w)
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, id)
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	if c, err := r.Cookie(m.opts.CookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	claims, err := m.signer.Validate(strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")))
	if err != nil {
		return "", false
	}
	return claims.SessionID, false
}

func (m *Manager) setCookie(w http.ResponseWriter, id string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    id,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
