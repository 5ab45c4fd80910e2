package app_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/KasumiMercury/primind-payment-reminder/internal/app"
	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/alarm"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/notify"
)

// countingTray counts channel registrations on top of the in-memory tray.
type countingTray struct {
	*notify.Tray
	channelCalls atomic.Int32
}

func (c *countingTray) CreateChannel(ctx context.Context, ch domain.Channel) error {
	c.channelCalls.Add(1)

	return c.Tray.CreateChannel(ctx, ch)
}

// failingCancelTray is a tray whose notification daemon rejects cancellation.
type failingCancelTray struct {
	*notify.Tray
}

func (failingCancelTray) Cancel(context.Context, domain.ReminderID) error {
	return errors.New("notification daemon unavailable")
}

type schedulerFixture struct {
	scheduler *app.NotificationScheduler
	presenter *app.NotificationPresenter
	clock     *alarm.Clock
	tray      *notify.Tray
}

func newSchedulerFixture(t *testing.T, opts ...app.SchedulerOption) schedulerFixture {
	t.Helper()

	clock := alarm.NewClock()
	t.Cleanup(clock.Stop)

	tray := notify.NewTray()
	presenter := app.NewNotificationPresenter(tray)

	return schedulerFixture{
		scheduler: app.NewNotificationScheduler(clock, tray, presenter, opts...),
		presenter: presenter,
		clock:     clock,
		tray:      tray,
	}
}

func reminderAt(t *testing.T, id int64, dateTime time.Time) *domain.Reminder {
	t.Helper()

	r, err := domain.NewReminder(domain.MustReminderID(id), domain.ReminderDetails{
		Title:    "Electric bill",
		DateTime: dateTime,
		Amount:   decimal.NewFromInt(500000),
	})
	if err != nil {
		t.Fatalf("failed to build reminder: %v", err)
	}

	return r
}

func storedReminder(id int64, documentID string, completed bool) *domain.Reminder {
	doc, _ := domain.DocumentIDFromString(documentID)
	now := time.Now()

	return domain.ReconstituteReminder(
		domain.MustReminderID(id),
		doc,
		domain.ReminderDetails{
			Title:      "Electric bill",
			DateTime:   now.Add(48 * time.Hour),
			Amount:     decimal.NewFromInt(500000),
			RepeatType: domain.RepeatNone,
		},
		completed,
		now,
		now,
	)
}
