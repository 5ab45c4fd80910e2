package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	nc "github.com/nats-io/nats.go"

	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/tracing"
)

// ReminderEventHandler applies reminder events published by another process.
type ReminderEventHandler interface {
	HandleReminderChanged(ctx context.Context, event ReminderChangedEvent) error
	HandleReminderCompleted(ctx context.Context, event ReminderCompletedEvent) error
}

type NATSSubscriberConfig struct {
	URL string
	// Origin is this process's own publisher origin; its events are skipped.
	Origin string
	// DurablePrefix names the JetStream consumers so delivery resumes after
	// a restart.
	DurablePrefix string
}

// NATSSubscriber routes reminder events from the stream to a handler.
type NATSSubscriber struct {
	router     *message.Router
	subscriber message.Subscriber
}

func NewNATSSubscriber(cfg NATSSubscriberConfig, handler ReminderEventHandler) (*NATSSubscriber, error) {
	logger := watermill.NewSlogLogger(slog.Default())

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:         cfg.URL,
			NatsOptions: []nc.Option{nc.Timeout(10 * time.Second)},
			Unmarshaler: &nats.NATSMarshaler{},
			JetStream: nats.JetStreamConfig{
				Disabled:         false,
				AutoProvision:    false,
				SubscribeOptions: []nc.SubOpt{nc.DeliverNew(), nc.AckExplicit()},
				DurablePrefix:    cfg.DurablePrefix,
				DurableCalculator: func(prefix, topic string) string {
					if prefix == "" {
						return ""
					}

					return prefix + "_" + strings.ReplaceAll(topic, ".", "_")
				},
			},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, logger)
	if err != nil {
		_ = subscriber.Close()

		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)
	router.AddNoPublisherHandler("reminder_changed", TopicReminderChanged, subscriber,
		ChangedHandler(cfg.Origin, handler))
	router.AddNoPublisherHandler("reminder_completed", TopicReminderCompleted, subscriber,
		CompletedHandler(cfg.Origin, handler))

	return &NATSSubscriber{
		router:     router,
		subscriber: subscriber,
	}, nil
}

// Run blocks until ctx is done or the router is closed.
func (s *NATSSubscriber) Run(ctx context.Context) error {
	return s.router.Run(ctx)
}

func (s *NATSSubscriber) Close() error {
	if err := s.router.Close(); err != nil {
		return err
	}

	return s.subscriber.Close()
}

// ChangedHandler decodes reminder.changed messages for handler.
func ChangedHandler(origin string, handler ReminderEventHandler) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var event ReminderChangedEvent

		ctx, ok := decode(msg, origin, &event)
		if !ok {
			return nil
		}

		return handler.HandleReminderChanged(ctx, event)
	}
}

// CompletedHandler decodes reminder.completed messages for handler.
func CompletedHandler(origin string, handler ReminderEventHandler) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var event ReminderCompletedEvent

		ctx, ok := decode(msg, origin, &event)
		if !ok {
			return nil
		}

		return handler.HandleReminderCompleted(ctx, event)
	}
}

// decode reports ok=false for events this process published itself and for
// payloads that can never be decoded. Neither is redelivered.
func decode(msg *message.Message, origin string, event any) (context.Context, bool) {
	ctx := tracing.ExtractFromMap(msg.Context(), msg.Metadata)

	if origin != "" && msg.Metadata.Get(metadataOrigin) == origin {
		return ctx, false
	}

	if err := json.Unmarshal(msg.Payload, event); err != nil {
		slog.WarnContext(ctx, "dropping undecodable reminder event",
			slog.String("message_id", msg.UUID),
			slog.String("event_type", msg.Metadata.Get(metadataEventType)),
			slog.String("error", err.Error()),
		)

		return ctx, false
	}

	return ctx, true
}
