package services

import (
	"sync"
	"time"

	"storefront-dashboard/clients"
)

// DefaultIdleTTL is how long an untouched workspace is kept.
const DefaultIdleTTL = 24 * time.Hour

// Workspace is the in-memory dashboard state of one browser session.
type Workspace struct {
	UserID  int64
	Catalog *CatalogCache
	Cart    *CartReconciler

	tokens   clients.TokenSource
	mu       sync.RWMutex
	username string
	lastSeen time.Time
}

func (w *Workspace) Username() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.username
}

func (w *Workspace) setUsername(name string) {
	w.mu.Lock()
	w.username = name
	w.mu.Unlock()
}

// Workspaces indexes workspaces by session id. Workspaces idle for longer
// than the ttl are dropped.
type Workspaces struct {
	api StorefrontAPI
	ttl time.Duration
	now func() time.Time

	mu sync.Mutex
	m  map[string]*Workspace
}

func NewWorkspaces(api StorefrontAPI, ttl time.Duration) *Workspaces {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &Workspaces{api: api, ttl: ttl, now: time.Now, m: make(map[string]*Workspace)}
}

// Get returns the session's workspace, creating a fresh one when none exists
// or when the session now belongs to a different user. Idle workspaces of
// other sessions are dropped on the way.
func (ws *Workspaces) Get(sessionID string, userID int64, ts clients.TokenSource) *Workspace {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	now := ws.now()
	for id, w := range ws.m {
		if id != sessionID && now.Sub(w.lastSeen) > ws.ttl {
			delete(ws.m, id)
		}
	}

	if w, ok := ws.m[sessionID]; ok && w.UserID == userID {
		w.lastSeen = now
		return w
	}
	w := &Workspace{
		UserID:   userID,
		Catalog:  NewCatalogCache(ws.api, ts),
		Cart:     NewCartReconciler(ws.api, ts, userID),
		tokens:   ts,
		lastSeen: now,
	}
	ws.m[sessionID] = w
	return w
}

// Drop discards the session's workspace.
func (ws *Workspaces) Drop(sessionID string) {
	ws.mu.Lock()
	delete(ws.m, sessionID)
	ws.mu.Unlock()
}

func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.m)
}
