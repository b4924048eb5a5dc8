package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/config"
	"github.com/khoahotran/projectshelf/internal/domain/analytics"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

const (
	TopicAnalyticsEvents = "analytics.events"
	TopicMediaEvents     = "media.events"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducerClient publishes tracked analytics events and media lifecycle events.
// It satisfies service.AnalyticsSink and service.MediaEventPublisher.
type KafkaProducerClient struct {
	AnalyticsEventsWriter messageWriter
	MediaEventsWriter     messageWriter
	logger                logger.Logger
}

var (
	_ service.AnalyticsSink       = (*KafkaProducerClient)(nil)
	_ service.MediaEventPublisher = (*KafkaProducerClient)(nil)
)

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// writer 'analytics.events'; keyed by owner so one portfolio's events stay ordered
	analyticsWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicAnalyticsEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	// writer 'media.events'
	mediaWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicMediaEvents,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	return &KafkaProducerClient{
		AnalyticsEventsWriter: analyticsWriter,
		MediaEventsWriter:     mediaWriter,
		logger:                log,
	}, nil
}

func (c *KafkaProducerClient) Submit(ctx context.Context, e *analytics.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return apperror.NewInternal("failed to marshal analytics event", err)
	}
	err = c.AnalyticsEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.UserID.String()),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish analytics event failed: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) PublishMediaEvent(ctx context.Context, e service.MediaEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return apperror.NewInternal("failed to marshal media event", err)
	}
	err = c.MediaEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.MediaID.String()),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish media event failed: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.AnalyticsEventsWriter != nil {
		if err := c.AnalyticsEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close analytics writer", zap.Error(err))
		}
	}
	if c.MediaEventsWriter != nil {
		if err := c.MediaEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close media writer", zap.Error(err))
		}
	}
	c.logger.Info("Closed Kafka Producers")
}
