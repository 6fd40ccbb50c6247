package session

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"storefront-dashboard/storage"
)

const (
	CookieName = "dashboard_session"

	tokenKey  = "token"
	userIDKey = "userId"
)

// Session is the per-browser context passed to views: the access token and
// user id persisted in an injectable store under the session's namespace.
type Session struct {
	ID    string
	store storage.Store
}

func New(id string, store storage.Store) *Session {
	return &Session{ID: id, store: store}
}

// Renew returns a session under a new id that shares this session's store.
func (s *Session) Renew(id string) *Session {
	return New(id, s.store)
}

func (s *Session) key(k string) string {
	return "session:" + s.ID + ":" + k
}

// Token returns the stored token, or "" when the session has none.
func (s *Session) Token(ctx context.Context) (string, error) {
	v, err := s.store.Get(ctx, s.key(tokenKey))
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return v, err
}

// UserID returns the stored user id, or 0 when absent or unparseable.
func (s *Session) UserID(ctx context.Context) (int64, error) {
	v, err := s.store.Get(ctx, s.key(userIDKey))
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, nil
	}
	return id, nil
}

func (s *Session) Save(ctx context.Context, token string, userID int64) error {
	if err := s.store.Set(ctx, s.key(tokenKey), token); err != nil {
		return err
	}
	return s.store.Set(ctx, s.key(userIDKey), strconv.FormatInt(userID, 10))
}

// Clear discards everything the session persisted.
func (s *Session) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, s.key(tokenKey), s.key(userIDKey))
}

// Valid reports whether the session holds a token the guard accepts.
func (s *Session) Valid(ctx context.Context, g *Guard) bool {
	token, err := s.Token(ctx)
	if err != nil || token == "" {
		return false
	}
	return !g.IsExpired(token)
}

// Cookie builds the browser cookie that carries the session id.
func Cookie(id string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}
