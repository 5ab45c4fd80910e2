package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/logging"
	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/metrics"
)

type NotificationPoster interface {
	ShowNotification(ctx context.Context, id domain.ReminderID, title string, amount decimal.Decimal) error
}

type NotificationCanceller interface {
	CancelNotification(ctx context.Context, id domain.ReminderID) error
}

type ReminderScheduler interface {
	NotificationCanceller
	ScheduleNotification(ctx context.Context, reminder *domain.Reminder) error
	Pending(id domain.ReminderID) []domain.Trigger
}

type scheduledAlarm struct {
	trigger domain.Trigger
	seq     uint64
}

// NotificationScheduler turns reminders into alarms and alarms into
// notifications. It owns the mapping from reminder id to the alarms
// registered for it.
//
// The alarm facility must run fire callbacks on their own goroutine; the
// scheduler holds its lock while setting alarms.
type NotificationScheduler struct {
	alarms        AlarmFacility
	notifications NotificationFacility
	poster        NotificationPoster
	calculator    *domain.TriggerCalculator
	metrics       *metrics.ReminderMetrics
	now           func() time.Time

	mu      sync.Mutex
	pending map[domain.ReminderID][]scheduledAlarm
	seq     uint64
}

type SchedulerOption func(*NotificationScheduler)

func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *NotificationScheduler) {
		s.now = now
	}
}

func WithSchedulerMetrics(m *metrics.ReminderMetrics) SchedulerOption {
	return func(s *NotificationScheduler) {
		s.metrics = m
	}
}

func NewNotificationScheduler(
	alarms AlarmFacility,
	notifications NotificationFacility,
	poster NotificationPoster,
	opts ...SchedulerOption,
) *NotificationScheduler {
	s := &NotificationScheduler{
		alarms:        alarms,
		notifications: notifications,
		poster:        poster,
		calculator:    domain.NewTriggerCalculator(),
		now:           time.Now,
		pending:       make(map[domain.ReminderID][]scheduledAlarm),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ScheduleNotification replaces whatever is pending for the reminder's id
// with the alarms of its current due time. A reminder without a due time is
// left alone.
func (s *NotificationScheduler) ScheduleNotification(ctx context.Context, reminder *domain.Reminder) error {
	if !reminder.HasDueDate() {
		slog.DebugContext(ctx, "reminder has no due date, nothing to schedule",
			"reminder_id", reminder.ID().String(),
		)

		return nil
	}

	id := reminder.ID()
	payload := domain.PayloadOf(reminder)
	triggers := s.calculator.Plan(reminder.DateTime(), s.now())

	s.mu.Lock()
	cancelled := s.cancelLocked(id)

	registered := make([]scheduledAlarm, 0, len(triggers))
	for _, trigger := range triggers {
		s.seq++
		seq := s.seq
		key := domain.AlarmKey{ReminderID: id, Kind: trigger.Kind}

		s.alarms.Set(key, trigger.At, func() {
			s.fire(key, seq, payload)
		})

		registered = append(registered, scheduledAlarm{trigger: trigger, seq: seq})
	}

	if len(registered) > 0 {
		s.pending[id] = registered
	}
	s.mu.Unlock()

	s.metrics.AlarmsCancelled(ctx, cancelled)
	for _, r := range registered {
		s.metrics.AlarmScheduled(ctx, string(r.trigger.Kind))
	}

	slog.InfoContext(ctx, "reminder alarms scheduled",
		"event", "alarm.schedule",
		"reminder_id", id.String(),
		"alarms", len(registered),
		"replaced", cancelled,
	)

	return nil
}

// CancelNotification dismisses the notification shown for id and drops every
// alarm still pending for it. Unknown ids are ignored.
func (s *NotificationScheduler) CancelNotification(ctx context.Context, id domain.ReminderID) error {
	s.mu.Lock()
	cancelled := s.cancelLocked(id)
	s.mu.Unlock()

	s.metrics.AlarmsCancelled(ctx, cancelled)

	if err := s.notifications.Cancel(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to cancel notification",
			"error", err,
			"reminder_id", id.String(),
		)

		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	slog.DebugContext(ctx, "reminder notification cancelled",
		"reminder_id", id.String(),
		"alarms", cancelled,
	)

	return nil
}

// Pending returns the triggers still registered for id, earliest first.
func (s *NotificationScheduler) Pending(id domain.ReminderID) []domain.Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()

	registered := s.pending[id]

	triggers := make([]domain.Trigger, 0, len(registered))
	for _, r := range registered {
		triggers = append(triggers, r.trigger)
	}

	return triggers
}

// Restore schedules every open reminder due after now minus lookback. Alarms
// live in memory only, so this runs once at start-up.
func (s *NotificationScheduler) Restore(ctx context.Context, repo domain.ReminderRepository, lookback time.Duration) (int, error) {
	reminders, err := repo.FindPending(ctx, domain.TimeRange{Start: s.now().Add(-lookback)})
	if err != nil {
		slog.ErrorContext(ctx, "failed to load pending reminders",
			"error", err,
		)

		return 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	restored := 0
	for _, r := range reminders {
		if r.IsCompleted() {
			continue
		}

		if err := s.ScheduleNotification(ctx, r); err != nil {
			return restored, err
		}

		restored++
	}

	slog.InfoContext(ctx, "reminder alarms restored",
		"count", restored,
	)

	return restored, nil
}

func (s *NotificationScheduler) cancelLocked(id domain.ReminderID) int {
	registered, ok := s.pending[id]
	if !ok {
		return 0
	}

	for _, r := range registered {
		s.alarms.Cancel(domain.AlarmKey{ReminderID: id, Kind: r.trigger.Kind})
	}

	delete(s.pending, id)

	return len(registered)
}

func (s *NotificationScheduler) fire(key domain.AlarmKey, seq uint64, payload domain.AlarmPayload) {
	s.mu.Lock()
	registered := s.pending[key.ReminderID]

	idx := -1
	for i, r := range registered {
		if r.seq == seq {
			idx = i

			break
		}
	}

	if idx < 0 {
		s.mu.Unlock()

		return
	}

	registered = append(registered[:idx:idx], registered[idx+1:]...)
	if len(registered) == 0 {
		delete(s.pending, key.ReminderID)
	} else {
		s.pending[key.ReminderID] = registered
	}
	s.mu.Unlock()

	ctx := logging.WithModule(context.Background(), logging.ModuleScheduler)

	s.metrics.AlarmFired(ctx, string(key.Kind))

	slog.InfoContext(ctx, "alarm fired",
		"event", "alarm.fire",
		"alarm", key.String(),
		"document_id", payload.DocumentID.String(),
	)

	if err := s.poster.ShowNotification(ctx, payload.ReminderID, payload.Title, payload.Amount); err != nil {
		slog.ErrorContext(ctx, "failed to show notification for fired alarm",
			"error", err,
			"alarm", key.String(),
		)
	}
}
