package memory

import (
	"context"
	"sync"

	"github.com/Leopold1975/gis_console/internal/console/repository/sessionstore"
)

type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]string
}

func New() *SessionStore {
	return &SessionStore{ //nolint:exhaustruct
		entries: make(map[string]map[string]string),
	}
}

func (ss *SessionStore) Get(_ context.Context, profile, key string) (string, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	v, ok := ss.entries[profile][key]
	if !ok {
		return "", sessionstore.ErrNotFound
	}

	return v, nil
}

func (ss *SessionStore) Set(_ context.Context, profile, key, value string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	p, ok := ss.entries[profile]
	if !ok {
		p = make(map[string]string)
		ss.entries[profile] = p
	}

	p[key] = value

	return nil
}

func (ss *SessionStore) Delete(_ context.Context, profile string, keys ...string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	p := ss.entries[profile]
	for _, k := range keys {
		delete(p, k)
	}

	if len(p) == 0 {
		delete(ss.entries, profile)
	}

	return nil
}

func (ss *SessionStore) Shutdown(context.Context) error {
	return nil
}
