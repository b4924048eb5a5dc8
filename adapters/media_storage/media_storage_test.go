package media_storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/projectshelf/internal/config"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

func TestSplitKey(t *testing.T) {
	rt, id := splitKey("video/case-studies/u/m")
	assert.Equal(t, "video", rt)
	assert.Equal(t, "case-studies/u/m", id)

	rt, id = splitKey("case-studies/u/m")
	assert.Equal(t, "image", rt)
	assert.Equal(t, "case-studies/u/m", id)
}

func TestCloudinaryDerivedURL(t *testing.T) {
	var cfg config.Config
	cfg.Cloudinary.CloudName = "demo"
	cfg.Cloudinary.ApiKey = "key"
	cfg.Cloudinary.ApiSecret = "secret"
	a, err := NewCloudinaryAdapter(cfg, logger.NewNopLogger())
	require.NoError(t, err)

	u, err := a.DerivedURL("image/case-studies/u/m", "c_fill,g_auto,w_400,h_400")
	require.NoError(t, err)
	assert.Contains(t, u, "https://")
	assert.Contains(t, u, "/demo/image/upload/")
	assert.Contains(t, u, "c_fill,g_auto,w_400,h_400")
	assert.Contains(t, u, "case-studies/u/m")

	_, err = a.DerivedURL("video/case-studies/u/v", "c_limit,w_1200")
	assert.Error(t, err)
}

func TestS3PublicURL(t *testing.T) {
	var cfg config.Config
	cfg.S3.Bucket = "shelf"
	cfg.S3.Endpoint = "http://localhost:9000"
	cfg.S3.BaseURL = "https://cdn.example.com/"
	a, err := NewS3Adapter(cfg, logger.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, ProviderS3, a.Provider())
	assert.Equal(t, "https://cdn.example.com/case-studies/u/m.png", a.publicURL("case-studies/u/m.png"))
}

func TestResourceTypeFor(t *testing.T) {
	assert.Equal(t, "image", resourceTypeFor("image/png"))
	assert.Equal(t, "video", resourceTypeFor("video/mp4"))
	assert.Equal(t, "auto", resourceTypeFor(""))
}

func TestNewPicksProvider(t *testing.T) {
	var cfg config.Config
	cfg.Storage.Provider = ProviderCloudinary
	cfg.Cloudinary.CloudName = "demo"
	cfg.Cloudinary.ApiKey = "key"
	cfg.Cloudinary.ApiSecret = "secret"
	up, tr, err := New(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, ProviderCloudinary, up.Provider())
	assert.NotNil(t, tr)

	cfg.Storage.Provider = ProviderS3
	cfg.S3.Bucket = "shelf"
	cfg.S3.Region = "us-east-1"
	up, tr, err = New(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, ProviderS3, up.Provider())
	assert.Nil(t, tr)
}
