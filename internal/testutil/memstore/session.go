package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/projectshelf/internal/application/service"
)

// Denylist is an in-memory service.TokenRevoker.
type Denylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewDenylist() *Denylist {
	return &Denylist{revoked: map[string]time.Time{}}
}

func (d *Denylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = time.Now().Add(ttl)
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.revoked[tokenID]
	return ok && time.Now().Before(until), nil
}

// Hub is an in-memory service.SessionNotifier that also records everything published.
type Hub struct {
	mu        sync.Mutex
	published []service.SessionEvent
	subs      map[uuid.UUID][]chan service.SessionEvent
}

func NewHub() *Hub {
	return &Hub{subs: map[uuid.UUID][]chan service.SessionEvent{}}
}

func (h *Hub) Publish(_ context.Context, e service.SessionEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.published = append(h.published, e)
	for _, ch := range h.subs[e.UserID] {
		select {
		case ch <- e:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan service.SessionEvent, error) {
	ch := make(chan service.SessionEvent, 8)
	h.mu.Lock()
	h.subs[userID] = append(h.subs[userID], ch)
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subs[userID]
		for i, c := range subs {
			if c == ch {
				h.subs[userID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

func (h *Hub) Published() []service.SessionEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]service.SessionEvent{}, h.published...)
}
