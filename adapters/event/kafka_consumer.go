package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/domain/analytics"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one message. Returning an error wrapping apperror.ErrInvalidInput marks the
// message as unprocessable; it is committed without retry.
type Handler func(ctx context.Context, msg kafka.Message) error

type Consumer struct {
	reader     messageReader
	handler    Handler
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

func NewConsumer(reader messageReader, handler Handler, log logger.Logger) *Consumer {
	return &Consumer{reader: reader, handler: handler, logger: log, maxRetries: 3, backoff: 500 * time.Millisecond}
}

// NewReader builds a group reader with manual commits.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}

// Run consumes until ctx is cancelled. A message that keeps failing is logged and committed
// after maxRetries attempts so one bad record cannot stall the partition.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to read message from Kafka", err)
			if !sleep(ctx, c.backoff) {
				return nil
			}
			continue
		}

		log := c.logger.With(zap.String("topic", msg.Topic), zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))
		if err := c.handle(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("Dropping message after failed processing", err)
		}

		if err := c.reader.CommitMessages(context.WithoutCancel(ctx), msg); err != nil {
			log.Error("Failed to commit message", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	var err error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		err = c.handler(ctx, msg)
		if err == nil || errors.Is(err, apperror.ErrInvalidInput) {
			return err
		}
		c.logger.Warn("Message processing failed, retrying",
			zap.String("topic", msg.Topic), zap.Int("attempt", attempt), zap.Error(err))
		if !sleep(ctx, c.backoff*time.Duration(attempt)) {
			return ctx.Err()
		}
	}
	return err
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

type EventIngester interface {
	Execute(ctx context.Context, e *analytics.Event) error
}

type MediaProcessor interface {
	Execute(ctx context.Context, e service.MediaEvent) error
}

func AnalyticsHandler(ingest EventIngester) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var e analytics.Event
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			return apperror.NewInvalidInput(fmt.Sprintf("malformed analytics event at offset %d", msg.Offset), err)
		}
		return ingest.Execute(ctx, &e)
	}
}

func MediaHandler(process MediaProcessor) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var e service.MediaEvent
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			return apperror.NewInvalidInput(fmt.Sprintf("malformed media event at offset %d", msg.Offset), err)
		}
		return process.Execute(ctx, e)
	}
}
