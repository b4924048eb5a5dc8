package analytics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventPageView EventType = "page_view"
	EventClick    EventType = "click"
	EventScroll   EventType = "scroll"
	EventHover    EventType = "hover"
)

// Click element names emitted by the public pages.
const (
	ElementContactButton = "contact_button"
	ElementWebsiteLink   = "website_link"
	ElementCaseStudyView = "case_study_view"
)

var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrMissingPath      = errors.New("page path is required")
	ErrMissingVisitor   = errors.New("visitor id is required")
)

func (t EventType) Known() bool {
	switch t {
	case EventPageView, EventClick, EventScroll, EventHover:
		return true
	}
	return false
}

// Interaction is true for the event types counted as engagement.
func (t EventType) Interaction() bool {
	return t == EventClick || t == EventScroll || t == EventHover
}

// Event is one immutable row of the analytics log. UserID is the observed portfolio owner;
// VisitorID is the pseudonymous browser identity.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	EventType EventType      `json:"event_type"`
	PagePath  string         `json:"page_path"`
	VisitorID string         `json:"visitor_id"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewEvent(owner uuid.UUID, t EventType, path, visitorID string, metadata map[string]any, now time.Time) (*Event, error) {
	e := &Event{
		ID:        uuid.New(),
		UserID:    owner,
		EventType: t,
		PagePath:  path,
		VisitorID: visitorID,
		Metadata:  metadata,
		CreatedAt: now.UTC(),
	}
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}
	return e, e.Validate()
}

func (e *Event) Validate() error {
	if !e.EventType.Known() {
		return ErrUnknownEventType
	}
	if strings.TrimSpace(e.PagePath) == "" || !strings.HasPrefix(e.PagePath, "/") {
		return ErrMissingPath
	}
	if strings.TrimSpace(e.VisitorID) == "" {
		return ErrMissingVisitor
	}
	return nil
}

// Element returns metadata.element for click events.
func (e *Event) Element() string {
	if v, ok := e.Metadata["element"].(string); ok {
		return v
	}
	return ""
}

// TimeOnSite returns metadata.timeOnSite in seconds when present and numeric.
func (e *Event) TimeOnSite() float64 {
	switch v := e.Metadata["timeOnSite"].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Repository is append-only: there is no update or delete path.
type Repository interface {
	Append(ctx context.Context, e *Event) error
	// ListByOwner returns events with from <= created_at < to ordered by created_at ascending.
	// A zero from or to leaves that side open.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]Event, error)
}
