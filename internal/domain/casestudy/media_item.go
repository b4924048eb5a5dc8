package casestudy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// MediaItem is one gallery asset.
type MediaItem struct {
	ID      string    `json:"id" validate:"required"`
	Type    MediaType `json:"type" validate:"required,oneof=image video"`
	URL     string    `json:"url" validate:"required,url"`
	Caption string    `json:"caption,omitempty"`
}

var legacyMediaNamespace = uuid.MustParse("8f4c2d1e-6a0b-4f3e-9c5d-2b7a1e0f4c3d")

var videoExtensions = map[string]bool{".mp4": true, ".webm": true, ".mov": true, ".m4v": true, ".ogv": true}

// InferMediaType guesses the type from the URL path extension; anything unknown is an image.
func InferMediaType(rawURL string) MediaType {
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if videoExtensions[strings.ToLower(path.Ext(p))] {
		return MediaVideo
	}
	return MediaImage
}

// LegacyMediaItem converts a bare URL into a MediaItem. The id is derived from the URL so
// repeated reads of the same legacy row produce the same item.
func LegacyMediaItem(rawURL string) MediaItem {
	return MediaItem{
		ID:   uuid.NewSHA1(legacyMediaNamespace, []byte(rawURL)).String(),
		Type: InferMediaType(rawURL),
		URL:  rawURL,
	}
}

// NormalizeImages decodes a stored images column. It accepts the canonical object form,
// the legacy bare-URL form, or a mix of both.
func NormalizeImages(raw []byte) ([]MediaItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []MediaItem{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("images is not a JSON array: %w", err)
	}

	out := make([]MediaItem, 0, len(elems))
	for i, e := range elems {
		e = bytes.TrimSpace(e)
		if len(e) > 0 && e[0] == '"' {
			var u string
			if err := json.Unmarshal(e, &u); err != nil {
				return nil, fmt.Errorf("images[%d]: %w", i, err)
			}
			if u == "" {
				continue
			}
			out = append(out, LegacyMediaItem(u))
			continue
		}

		var item MediaItem
		if err := json.Unmarshal(e, &item); err != nil {
			return nil, fmt.Errorf("images[%d]: %w", i, err)
		}
		if item.URL == "" {
			continue
		}
		if item.ID == "" {
			item.ID = LegacyMediaItem(item.URL).ID
		}
		if item.Type == "" {
			item.Type = InferMediaType(item.URL)
		}
		out = append(out, item)
	}
	return out, nil
}
