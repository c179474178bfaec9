package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"tably/internal/reservations"
	"tably/internal/shared/config"
	"tably/pkg/logger"

	"github.com/IBM/sarama"
)

// LifecycleProducer publishes reservation lifecycle events to the outbound
// topic. It satisfies reservations.EventPublisher.
type LifecycleProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewLifecycleProducer creates a synchronous Kafka producer for lifecycle
// events.
func NewLifecycleProducer(cfg config.KafkaConfig, log *logger.Logger) (*LifecycleProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	// Hash partitioning on venue id keeps one venue's events ordered.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create lifecycle producer: %w", err)
	}

	return &LifecycleProducer{
		producer: producer,
		topic:    cfg.LifecycleTopic,
		log:      log,
	}, nil
}

// PublishLifecycleEvent implements reservations.EventPublisher.
func (p *LifecycleProducer) PublishLifecycleEvent(ctx context.Context, event reservations.LifecycleEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal lifecycle event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.VenueID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("venue_id"), Value: []byte(event.VenueID)},
			{Key: []byte("reservation_id"), Value: []byte(strconv.FormatUint(uint64(event.ReservationID), 10))},
			{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish lifecycle event: %w", err)
	}

	p.log.DebugContext(ctx, "lifecycle event published",
		slog.String("type", event.Type),
		slog.Uint64("reservation_id", uint64(event.ReservationID)),
		slog.Int64("partition", int64(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

// Close shuts the underlying producer down.
func (p *LifecycleProducer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close lifecycle producer: %w", err)
	}
	return nil
}
