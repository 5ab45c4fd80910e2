package main

import (
	"context"
	"log/slog"

	"github.com/KasumiMercury/primind-payment-reminder/internal/app"
	"github.com/KasumiMercury/primind-payment-reminder/internal/config"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/handler"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/notify"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/pubsub"
)

// eventOrigin tags events published by this service so its own subscriber
// skips them.
const eventOrigin = "primind-payment-reminder"

func initPublisher(ctx context.Context, cfg *config.Config) (pubsub.Publisher, error) {
	if cfg.Events.NATSURL == "" {
		slog.Warn("NATS_URL not set, event publishing disabled")

		return nil, nil
	}

	publisher, err := pubsub.NewNATSPublisherWithStream(ctx, pubsub.NATSPublisherConfig{
		URL:    cfg.Events.NATSURL,
		MaxAge: cfg.Events.MaxAge,
		Origin: eventOrigin,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("NATS publisher initialized", "url", cfg.Events.NATSURL)

	return publisher, nil
}

// initSubscriber follows reminder writes made by other processes, such as
// the MCP stdio server, so their alarms ring here. It needs the stream
// initPublisher provisions.
func initSubscriber(cfg *config.Config, handler pubsub.ReminderEventHandler) (*pubsub.NATSSubscriber, error) {
	if cfg.Events.NATSURL == "" {
		return nil, nil
	}

	subscriber, err := pubsub.NewNATSSubscriber(pubsub.NATSSubscriberConfig{
		URL:           cfg.Events.NATSURL,
		Origin:        eventOrigin,
		DurablePrefix: "payment_reminder_service",
	}, handler)
	if err != nil {
		return nil, err
	}

	slog.Info("NATS subscriber initialized", "url", cfg.Events.NATSURL)

	return subscriber, nil
}

// notifyBackend is the notification facility picked by NOTIFY_BACKEND plus
// what the HTTP API can read back from it.
type notifyBackend struct {
	facility app.NotificationFacility
	messages []notify.Messenger
	visible  handler.NotificationLister
	dbus     *notify.DBus
}

func initNotifyBackend(cfg config.NotifyConfig) (notifyBackend, error) {
	if cfg.Backend == config.BackendDBus {
		bus, err := notify.NewDBus(cfg.AppName)
		if err != nil {
			return notifyBackend{}, err
		}

		slog.Info("desktop notification backend initialized", "app_name", cfg.AppName)

		return notifyBackend{
			facility: bus,
			messages: []notify.Messenger{bus},
			dbus:     bus,
		}, nil
	}

	tray := notify.NewTray()

	return notifyBackend{
		facility: tray,
		visible:  tray,
	}, nil
}
