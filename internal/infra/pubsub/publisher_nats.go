package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/tracing"
)

type NATSPublisher struct {
	publisher message.Publisher
	logger    watermill.LoggerAdapter
	origin    string
}

type NATSPublisherConfig struct {
	URL string
	// MaxAge bounds how long events stay in the stream
	MaxAge time.Duration
	// Origin names the publishing process so its own subscriber can skip
	// events it already acted on.
	Origin string
}

// NewNATSPublisherWithStream makes sure the reminder event stream exists and
// returns a JetStream publisher for it.
func NewNATSPublisherWithStream(ctx context.Context, cfg NATSPublisherConfig) (*NATSPublisher, error) {
	logger := watermill.NewSlogLogger(slog.Default())

	conn, err := nc.Connect(cfg.URL, nc.Timeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer conn.Close()

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        streamName,
		Description: "Stream for payment reminder events",
		Subjects:    []string{streamSubject},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      maxAge,
		MaxBytes:    100 * 1024 * 1024, // 100MB
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	slog.Info("NATS JetStream stream configured",
		slog.String("stream", streamName),
		slog.String("subject", streamSubject),
	)

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.URL,
			NatsOptions: []nc.Option{nc.Timeout(10 * time.Second)},
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
			Marshaler: &nats.NATSMarshaler{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	return &NATSPublisher{
		publisher: publisher,
		logger:    logger,
		origin:    cfg.Origin,
	}, nil
}

func (p *NATSPublisher) PublishReminderChanged(ctx context.Context, event ReminderChangedEvent) error {
	return p.publish(ctx, TopicReminderChanged, event.ReminderID, event)
}

func (p *NATSPublisher) PublishReminderCompleted(ctx context.Context, event ReminderCompletedEvent) error {
	return p.publish(ctx, TopicReminderCompleted, event.ReminderID, event)
}

func (p *NATSPublisher) PublishNotificationPosted(ctx context.Context, event NotificationPostedEvent) error {
	return p.publish(ctx, TopicNotificationPosted, event.ReminderID, event)
}

func (p *NATSPublisher) publish(ctx context.Context, topic string, reminderID int64, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(metadataEventType, topic)
	msg.Metadata.Set(metadataReminderID, strconv.FormatInt(reminderID, 10))
	if p.origin != "" {
		msg.Metadata.Set(metadataOrigin, p.origin)
	}
	tracing.InjectToMap(ctx, msg.Metadata)

	if err := p.publisher.Publish(topic, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish reminder event",
			slog.String("topic", topic),
			slog.Int64("reminder_id", reminderID),
			slog.String("error", err.Error()),
		)

		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.DebugContext(ctx, "published reminder event",
		slog.String("topic", topic),
		slog.Int64("reminder_id", reminderID),
		slog.String("message_id", msg.UUID),
	)

	return nil
}

func (p *NATSPublisher) Close() error {
	return p.publisher.Close()
}
