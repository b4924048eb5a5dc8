package service

import (
	"context"
	"io"
)

type UploadResult struct {
	// URL is publicly readable.
	URL string
	// Key identifies the object for later deletion or transformation.
	Key string
}

// Uploader is the blob store: upload(path, bytes) -> public URL.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	Provider() string
}

// ImageTransformer is implemented by stores that can derive resized renditions by URL.
type ImageTransformer interface {
	DerivedURL(key string, transformation string) (string, error)
}
