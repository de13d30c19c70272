// Package session owns the anonymous session token that partitions widgets.
// The token has no authentication meaning.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// StorageKey is the local key holding the process session token.
const StorageKey = "session_id"

type kvStore interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
}

// Provider lazily creates and caches the process session token. It is built
// once at bootstrap and injected wherever a default session is needed.
type Provider struct {
	store kvStore
	newID func() string

	mu sync.Mutex
	id string
}

func NewProvider(store kvStore) *Provider {
	return &Provider{store: store, newID: uuid.NewString}
}

// SessionID returns the persisted token, creating and storing one on first use.
func (p *Provider) SessionID(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.id != "" {
		return p.id, nil
	}

	id, ok, err := p.store.GetItem(ctx, StorageKey)
	if err != nil {
		return "", fmt.Errorf("read session id: %w", err)
	}
	if !ok || id == "" {
		id = p.newID()
		if err := p.store.SetItem(ctx, StorageKey, id); err != nil {
			return "", fmt.Errorf("store session id: %w", err)
		}
	}
	p.id = id
	return id, nil
}

// Reset drops the cached token so the next call re-reads storage. Tests only.
func (p *Provider) Reset() {
	p.mu.Lock()
	p.id = ""
	p.mu.Unlock()
}

// Active returns the request's session when one is set on ctx, otherwise the
// process token.
func (p *Provider) Active(ctx context.Context) (string, error) {
	if id := FromContext(ctx); id != "" {
		return id, nil
	}
	return p.SessionID(ctx)
}
