package media

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/media"
	"github.com/khoahotran/projectshelf/internal/testutil/memstore"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

type chanPublisher chan service.MediaEvent

func (c chanPublisher) PublishMediaEvent(_ context.Context, e service.MediaEvent) error {
	c <- e
	return nil
}

func TestUploadThenProcessImage(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	blobs := memstore.NewBlobs()
	pub := make(chanPublisher, 1)
	log := logger.NewNopLogger()
	owner := uuid.New()

	out, err := NewUploadMediaUseCase(st.Media(), blobs, pub, log).Execute(ctx, UploadMediaInput{
		OwnerID: owner, File: strings.NewReader("jpeg"), FileName: "Hero.JPG", ContentType: "image/jpeg", Caption: "Hero",
	})
	require.NoError(t, err)

	key := "case-studies/" + owner.String() + "/" + out.Media.ID.String() + ".jpg"
	assert.True(t, blobs.Has(key))
	assert.Equal(t, media.StatusPending, out.Media.Status)
	assert.Equal(t, casestudy.MediaItem{ID: out.Media.ID.String(), Type: casestudy.MediaImage, URL: blobs.BaseURL + "/" + key, Caption: "Hero"}, out.Item)

	var evt service.MediaEvent
	select {
	case evt = <-pub:
	case <-time.After(time.Second):
		t.Fatal("media.uploaded was not published")
	}
	assert.Equal(t, service.MediaEventUploaded, evt.EventType)
	assert.Equal(t, key, evt.StorageKey)

	require.NoError(t, NewProcessMediaUseCase(st.Media(), blobs, log).Execute(ctx, evt))

	m, err := st.Media().FindByID(ctx, out.Media.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, media.StatusReady, m.Status)
	assert.Equal(t, blobs.BaseURL+"/c_limit,w_1200/"+key, m.URL)
	require.NotNil(t, m.ThumbnailURL)
	assert.Equal(t, blobs.BaseURL+"/c_fill,g_auto,w_400,h_400/"+key, *m.ThumbnailURL)

	require.NoError(t, NewProcessMediaUseCase(st.Media(), blobs, log).Execute(ctx, evt), "ready media is skipped")
}

func TestUploadWithoutPublisherIsReady(t *testing.T) {
	st := memstore.New()
	out, err := NewUploadMediaUseCase(st.Media(), memstore.NewBlobs(), nil, logger.NewNopLogger()).Execute(context.Background(), UploadMediaInput{
		OwnerID: uuid.New(), File: strings.NewReader("mp4"), FileName: "demo.mp4", ContentType: "video/mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, media.StatusReady, out.Media.Status)
	assert.Equal(t, casestudy.MediaVideo, out.Item.Type)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	st := memstore.New()
	_, err := NewUploadMediaUseCase(st.Media(), memstore.NewBlobs(), nil, logger.NewNopLogger()).Execute(context.Background(), UploadMediaInput{
		OwnerID: uuid.New(), File: strings.NewReader("%PDF"), FileName: "cv.pdf", ContentType: "application/pdf",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestProcessMarksErrorOnTransformFailure(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	blobs := memstore.NewBlobs()
	owner := uuid.New()
	m := &media.Media{ID: uuid.New(), OwnerID: owner, Kind: casestudy.MediaImage, StorageKey: "k", URL: "https://blobs.test/k", Status: media.StatusPending}
	require.NoError(t, st.Media().Save(ctx, m))
	blobs.Fail("DerivedURL", nil)

	err := NewProcessMediaUseCase(st.Media(), blobs, logger.NewNopLogger()).Execute(ctx, service.MediaEvent{
		EventType: service.MediaEventUploaded, MediaID: m.ID, OwnerID: owner,
	})
	assert.ErrorIs(t, err, apperror.ErrInternal)

	got, err := st.Media().FindByID(ctx, m.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, media.StatusError, got.Status)
}

func TestProcessSkipsMissingMedia(t *testing.T) {
	err := NewProcessMediaUseCase(memstore.New().Media(), nil, logger.NewNopLogger()).Execute(context.Background(), service.MediaEvent{
		EventType: service.MediaEventUploaded, MediaID: uuid.New(), OwnerID: uuid.New(),
	})
	assert.NoError(t, err)
}

func TestDeleteMedia(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	blobs := memstore.NewBlobs()
	log := logger.NewNopLogger()
	owner := uuid.New()

	out, err := NewUploadMediaUseCase(st.Media(), blobs, nil, log).Execute(ctx, UploadMediaInput{
		OwnerID: owner, File: strings.NewReader("png"), FileName: "a.png", ContentType: "image/png",
	})
	require.NoError(t, err)

	list, err := NewListMediaUseCase(st.Media()).Execute(ctx, ListMediaInput{OwnerID: owner})
	require.NoError(t, err)
	assert.Len(t, list.Medias, 1)

	require.NoError(t, NewDeleteMediaUseCase(st.Media(), blobs, log).Execute(ctx, DeleteMediaInput{OwnerID: owner, MediaID: out.Media.ID}))
	assert.False(t, blobs.Has(out.Media.StorageKey))

	err = NewDeleteMediaUseCase(st.Media(), blobs, log).Execute(ctx, DeleteMediaInput{OwnerID: owner, MediaID: out.Media.ID})
	assert.True(t, apperror.IsNotFound(err))
}
