package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/khoahotran/projectshelf/internal/domain/analytics"
)

type MediaEventType string

const (
	MediaEventUploaded MediaEventType = "media.uploaded"
	MediaEventDeleted  MediaEventType = "media.deleted"
)

type MediaEvent struct {
	EventType  MediaEventType `json:"event_type"`
	MediaID    uuid.UUID      `json:"media_id"`
	OwnerID    uuid.UUID      `json:"owner_id"`
	Provider   string         `json:"provider"`
	StorageKey string         `json:"storage_key"`
	URL        string         `json:"url"`
}

type MediaEventPublisher interface {
	PublishMediaEvent(ctx context.Context, e MediaEvent) error
}

// AnalyticsSink accepts tracked events, either queueing them or storing them directly.
type AnalyticsSink interface {
	Submit(ctx context.Context, e *analytics.Event) error
}
