package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/domain/analytics"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// fakeReader serves queued messages, then blocks until ctx is done.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) Committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64{}, r.committed...)
}

type ingestFunc func(ctx context.Context, e *analytics.Event) error

func (f ingestFunc) Execute(ctx context.Context, e *analytics.Event) error { return f(ctx, e) }

func TestProducerKeysAndPayloads(t *testing.T) {
	aw, mw := &fakeWriter{}, &fakeWriter{}
	p := &KafkaProducerClient{AnalyticsEventsWriter: aw, MediaEventsWriter: mw, logger: logger.NewNopLogger()}
	owner := uuid.New()

	e, err := analytics.NewEvent(owner, analytics.EventClick, "/ada", "v1", map[string]any{"element": "contact_button"}, time.Now())
	require.NoError(t, err)
	require.NoError(t, p.Submit(context.Background(), e))

	require.Len(t, aw.msgs, 1)
	assert.Equal(t, owner.String(), string(aw.msgs[0].Key))
	var decoded analytics.Event
	require.NoError(t, json.Unmarshal(aw.msgs[0].Value, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, "contact_button", decoded.Element())

	mediaID := uuid.New()
	require.NoError(t, p.PublishMediaEvent(context.Background(), service.MediaEvent{EventType: service.MediaEventUploaded, MediaID: mediaID}))
	assert.Equal(t, mediaID.String(), string(mw.msgs[0].Key))

	aw.err = errors.New("broker down")
	assert.Error(t, p.Submit(context.Background(), e))
}

func TestConsumerCommitsAfterProcessing(t *testing.T) {
	owner := uuid.New()
	good, err := analytics.NewEvent(owner, analytics.EventPageView, "/ada", "v1", nil, time.Now())
	require.NoError(t, err)
	payload, err := json.Marshal(good)
	require.NoError(t, err)

	reader := &fakeReader{queue: []kafka.Message{
		{Offset: 1, Value: []byte("{not json")},
		{Offset: 2, Value: payload},
	}}

	var mu sync.Mutex
	var ingested []uuid.UUID
	calls := 0
	handler := AnalyticsHandler(ingestFunc(func(_ context.Context, e *analytics.Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		ingested = append(ingested, e.ID)
		return nil
	}))

	c := NewConsumer(reader, handler, logger.NewNopLogger())
	c.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return len(reader.Committed()) == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []int64{1, 2}, reader.Committed())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uuid.UUID{good.ID}, ingested, "malformed message is skipped, transient failure retried")
	assert.Equal(t, 2, calls)
}
