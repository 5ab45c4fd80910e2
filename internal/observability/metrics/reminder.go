package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ReminderMetrics counts scheduling and delivery activity. A nil
// *ReminderMetrics is valid and records nothing.
type ReminderMetrics struct {
	alarmsScheduled     metric.Int64Counter
	alarmsCancelled     metric.Int64Counter
	alarmsFired         metric.Int64Counter
	notificationsPosted metric.Int64Counter
	dispatchOutcomes    metric.Int64Counter
}

func NewReminderMetrics(meter metric.Meter) (*ReminderMetrics, error) {
	var (
		m   ReminderMetrics
		err error
	)

	if m.alarmsScheduled, err = meter.Int64Counter("reminder.alarms.scheduled",
		metric.WithDescription("Alarms registered, by kind"),
	); err != nil {
		return nil, err
	}

	if m.alarmsCancelled, err = meter.Int64Counter("reminder.alarms.cancelled",
		metric.WithDescription("Alarms cancelled before firing"),
	); err != nil {
		return nil, err
	}

	if m.alarmsFired, err = meter.Int64Counter("reminder.alarms.fired",
		metric.WithDescription("Alarms that fired, by kind"),
	); err != nil {
		return nil, err
	}

	if m.notificationsPosted, err = meter.Int64Counter("reminder.notifications.posted",
		metric.WithDescription("Notifications posted"),
	); err != nil {
		return nil, err
	}

	if m.dispatchOutcomes, err = meter.Int64Counter("reminder.actions.dispatched",
		metric.WithDescription("Notification actions handled, by action and final state"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *ReminderMetrics) AlarmScheduled(ctx context.Context, kind string) {
	if m == nil {
		return
	}

	m.alarmsScheduled.Add(ctx, 1, metric.WithAttributes(attribute.String("alarm.kind", kind)))
}

func (m *ReminderMetrics) AlarmsCancelled(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}

	m.alarmsCancelled.Add(ctx, int64(n))
}

func (m *ReminderMetrics) AlarmFired(ctx context.Context, kind string) {
	if m == nil {
		return
	}

	m.alarmsFired.Add(ctx, 1, metric.WithAttributes(attribute.String("alarm.kind", kind)))
}

func (m *ReminderMetrics) NotificationPosted(ctx context.Context) {
	if m == nil {
		return
	}

	m.notificationsPosted.Add(ctx, 1)
}

func (m *ReminderMetrics) ActionDispatched(ctx context.Context, action, state string) {
	if m == nil {
		return
	}

	m.dispatchOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("state", state),
	))
}
