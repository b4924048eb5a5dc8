package media

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
)

type MediaStatus string

const (
	StatusPending MediaStatus = "pending"
	StatusReady   MediaStatus = "ready"
	StatusError   MediaStatus = "error"
)

// Media is an uploaded asset in an owner's library. Case studies reference it by URL
// through a MediaItem.
type Media struct {
	ID           uuid.UUID           `json:"id"`
	OwnerID      uuid.UUID           `json:"owner_id"`
	Provider     string              `json:"provider"`
	StorageKey   string              `json:"storage_key"`
	Kind         casestudy.MediaType `json:"kind"`
	URL          string              `json:"url"`
	ThumbnailURL *string             `json:"thumbnail_url"`
	Status       MediaStatus         `json:"status"`
	Metadata     map[string]any      `json:"metadata"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// AsItem is the gallery form of the asset.
func (m *Media) AsItem(caption string) casestudy.MediaItem {
	return casestudy.MediaItem{ID: m.ID.String(), Type: m.Kind, URL: m.URL, Caption: caption}
}

type Repository interface {
	Save(ctx context.Context, media *Media) error
	Update(ctx context.Context, media *Media) error
	Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (*Media, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Media, error)
}
