package app

import (
	"context"
	"time"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

// AlarmFacility sets one-shot exact-time alarms. Setting a key that is
// already pending replaces it.
type AlarmFacility interface {
	Set(key domain.AlarmKey, at time.Time, fire func())
	Cancel(key domain.AlarmKey) bool
}

// NotificationFacility shows notifications keyed by reminder id.
type NotificationFacility interface {
	CreateChannel(ctx context.Context, ch domain.Channel) error
	Notify(ctx context.Context, n domain.Notification) error
	Cancel(ctx context.Context, id domain.ReminderID) error
}

type Messenger interface {
	Show(ctx context.Context, msg domain.TransientMessage)
}
