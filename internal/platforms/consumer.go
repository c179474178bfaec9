package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"tably/internal/reservations"
	"tably/internal/shared/apperrors"
	"tably/internal/shared/config"
	"tably/pkg/logger"

	"github.com/IBM/sarama"
)

// BookingConsumer pulls external booking events from the inbound topic and
// feeds them through the normalizer into the reservation service.
type BookingConsumer struct {
	consumerGroup sarama.ConsumerGroup
	topics        []string
	service       reservations.Service
	log           *logger.Logger
	cancel        context.CancelFunc
}

// NewBookingConsumer creates a consumer group for the inbound booking topic.
func NewBookingConsumer(cfg config.KafkaConfig, service reservations.Service, log *logger.Logger) (*BookingConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking consumer group: %w", err)
	}

	return &BookingConsumer{
		consumerGroup: consumerGroup,
		topics:        []string{cfg.InboundTopic},
		service:       service,
		log:           log,
	}, nil
}

// Start begins consuming in the background until Stop or ctx cancellation.
func (c *BookingConsumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		for err := range c.consumerGroup.Errors() {
			c.log.Error("booking consumer group error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		handler := &bookingHandler{consumer: c}
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := c.consumerGroup.Consume(ctx, c.topics, handler); err != nil {
					c.log.Error("booking consumer session failed", slog.String("error", err.Error()))
					time.Sleep(time.Second)
				}
			}
		}
	}()
}

// Stop shuts the consumer group down.
func (c *BookingConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close booking consumer group: %w", err)
	}
	return nil
}

type bookingHandler struct {
	consumer *BookingConsumer
}

func (h *bookingHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *bookingHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *bookingHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			if h.consumer.process(session.Context(), message) {
				session.MarkMessage(message, "")
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// process handles one inbound message. Returns true when the message should
// be committed: either it was ingested, or it is permanently unprocessable.
func (c *BookingConsumer) process(ctx context.Context, message *sarama.ConsumerMessage) bool {
	var event ExternalBookingEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		c.log.Warn("dropping malformed external booking",
			slog.String("error", err.Error()),
			slog.Int64("offset", message.Offset),
		)
		return true
	}

	venueID, req, err := Normalize(event)
	if err != nil {
		c.log.Warn("dropping invalid external booking",
			slog.String("error", err.Error()),
			slog.String("source", event.Source),
			slog.String("external_id", event.ExternalID),
		)
		return true
	}

	// The (source, external id) pair doubles as an idempotency token, so a
	// redelivered message replays the first outcome.
	callerID := "platform:" + req.BookingSource
	idempotencyKey := req.BookingSource + ":" + req.ExternalID

	reservation, err := c.service.CreateReservation(ctx, venueID, callerID, idempotencyKey, req)
	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.KindValidation, apperrors.KindConflict:
			// Business rejections are final for this message.
			c.log.Warn("external booking rejected",
				slog.String("error", err.Error()),
				slog.String("source", req.BookingSource),
				slog.String("external_id", req.ExternalID),
			)
			return true
		default:
			c.log.Error("failed to ingest external booking, will retry",
				slog.String("error", err.Error()),
				slog.String("external_id", req.ExternalID),
			)
			return false
		}
	}

	c.log.Info("external booking ingested",
		slog.Uint64("reservation_id", uint64(reservation.ID)),
		slog.String("source", req.BookingSource),
		slog.String("external_id", req.ExternalID),
	)
	return true
}
