package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/domain/analytics"
	"github.com/khoahotran/projectshelf/internal/domain/profile"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

var tracer = otel.Tracer("analytics_usecase")

// Recorder counts tracked and ingested events; *metrics.Metrics implements it.
type Recorder interface {
	EventTracked(eventType string)
	EventIngested()
}

type nopRecorder struct{}

func (nopRecorder) EventTracked(string) {}
func (nopRecorder) EventIngested()      {}

// TrackEventUseCase accepts an event from a public page and hands it to the sink.
type TrackEventUseCase struct {
	profileRepo profile.Repository
	sink        service.AnalyticsSink
	recorder    Recorder
	logger      logger.Logger
}

func NewTrackEventUseCase(pRepo profile.Repository, sink service.AnalyticsSink, rec Recorder, log logger.Logger) *TrackEventUseCase {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &TrackEventUseCase{profileRepo: pRepo, sink: sink, recorder: rec, logger: log}
}

type TrackEventInput struct {
	// OwnerID is used when set; otherwise Username is resolved.
	OwnerID   uuid.UUID
	Username  string
	EventType analytics.EventType
	PagePath  string
	VisitorID string
	Metadata  map[string]any
}

func (uc *TrackEventUseCase) Execute(ctx context.Context, input TrackEventInput) error {
	ctx, span := tracer.Start(ctx, "TrackEvent")
	defer span.End()
	span.SetAttributes(attribute.String("event_type", string(input.EventType)))

	owner := input.OwnerID
	if owner == uuid.Nil {
		p, err := uc.profileRepo.FindByUsername(ctx, profile.NormalizeUsername(input.Username))
		if err != nil {
			span.RecordError(err)
			return err
		}
		owner = p.ID
	}

	e, err := analytics.NewEvent(owner, input.EventType, input.PagePath, input.VisitorID, input.Metadata, time.Now())
	if err != nil {
		return apperror.NewInvalidInput(err.Error(), err)
	}

	if err := uc.sink.Submit(ctx, e); err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to submit analytics event", err,
			zap.String("owner_id", owner.String()),
			zap.String("event_type", string(e.EventType)),
		)
		return apperror.NewInternal("failed to record event", err)
	}
	uc.recorder.EventTracked(string(e.EventType))
	return nil
}

// IngestEventUseCase appends one event to the store. It is the end of both the direct path and
// the queue consumer.
type IngestEventUseCase struct {
	repo     analytics.Repository
	recorder Recorder
}

func NewIngestEventUseCase(repo analytics.Repository, rec Recorder) *IngestEventUseCase {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &IngestEventUseCase{repo: repo, recorder: rec}
}

func (uc *IngestEventUseCase) Execute(ctx context.Context, e *analytics.Event) error {
	if e.ID == uuid.Nil {
		return apperror.NewInvalidInput("event id is required", nil)
	}
	if err := e.Validate(); err != nil {
		return apperror.NewInvalidInput(fmt.Sprintf("event %s rejected", e.ID), err)
	}
	if err := uc.repo.Append(ctx, e); err != nil {
		return fmt.Errorf("append analytics event failed: %w", err)
	}
	uc.recorder.EventIngested()
	return nil
}

// DirectSink stores events synchronously, for deployments without a queue.
type DirectSink struct {
	ingest *IngestEventUseCase
}

func NewDirectSink(ingest *IngestEventUseCase) *DirectSink {
	return &DirectSink{ingest: ingest}
}

func (s *DirectSink) Submit(ctx context.Context, e *analytics.Event) error {
	return s.ingest.Execute(ctx, e)
}
