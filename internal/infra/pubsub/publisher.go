package pubsub

import (
	"context"
	"io"
)

//go:generate mockgen -source=publisher.go -destination=publisher_mock.go -package=pubsub

type Publisher interface {
	PublishReminderChanged(ctx context.Context, event ReminderChangedEvent) error
	PublishReminderCompleted(ctx context.Context, event ReminderCompletedEvent) error
	PublishNotificationPosted(ctx context.Context, event NotificationPostedEvent) error
	io.Closer
}
