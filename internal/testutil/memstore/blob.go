package memstore

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/khoahotran/projectshelf/internal/application/service"
)

// Blobs is an in-memory service.Uploader and service.ImageTransformer.
type Blobs struct {
	Failures

	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
}

func NewBlobs() *Blobs {
	return &Blobs{BaseURL: "https://blobs.test", objects: map[string][]byte{}}
}

func (b *Blobs) Upload(_ context.Context, file io.Reader, path string, _ string) (*service.UploadResult, error) {
	if err := b.check("Upload"); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[path] = data
	return &service.UploadResult{URL: b.BaseURL + "/" + path, Key: path}, nil
}

func (b *Blobs) Delete(_ context.Context, key string) error {
	if err := b.check("Delete"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *Blobs) Provider() string { return "memory" }

func (b *Blobs) DerivedURL(key, transformation string) (string, error) {
	if err := b.check("DerivedURL"); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", b.BaseURL, transformation, key), nil
}

func (b *Blobs) Has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}
