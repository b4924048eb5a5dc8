package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type SessionEventKind string

const (
	SessionSignedUp  SessionEventKind = "signed_up"
	SessionSignedIn  SessionEventKind = "signed_in"
	SessionSignedOut SessionEventKind = "signed_out"
)

type SessionEvent struct {
	UserID uuid.UUID        `json:"user_id"`
	Kind   SessionEventKind `json:"kind"`
	At     time.Time        `json:"at"`
}

// SessionNotifier fans session changes out to subscribers of the same user.
type SessionNotifier interface {
	Publish(ctx context.Context, e SessionEvent) error
	// Subscribe streams events for userID until ctx is done; the channel is then closed.
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan SessionEvent, error)
}

// TokenRevoker remembers signed-out tokens until they would have expired anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// VisitorIdentity resolves the pseudonymous visitor id of a public request, issuing one when absent.
type VisitorIdentity interface {
	GetOrCreateVisitorID(w http.ResponseWriter, r *http.Request) string
}
