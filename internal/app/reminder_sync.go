package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/pubsub"
)

// ReminderSync keeps this process's alarms in line with reminders written by
// another process sharing the database.
type ReminderSync struct {
	repo      domain.ReminderRepository
	scheduler *NotificationScheduler
}

var _ pubsub.ReminderEventHandler = (*ReminderSync)(nil)

func NewReminderSync(repo domain.ReminderRepository, scheduler *NotificationScheduler) *ReminderSync {
	return &ReminderSync{
		repo:      repo,
		scheduler: scheduler,
	}
}

// HandleReminderChanged reloads the stored document and reschedules it, or
// drops its alarms when it is gone or already paid. Only a failed lookup is
// returned so the event is redelivered.
func (s *ReminderSync) HandleReminderChanged(ctx context.Context, event pubsub.ReminderChangedEvent) error {
	id, err := domain.NewReminderID(event.ReminderID)
	if err != nil {
		slog.WarnContext(ctx, "ignoring reminder change with invalid id",
			"reminder_id", event.ReminderID,
		)

		return nil
	}

	if event.Deleted {
		s.cancel(ctx, id)

		return nil
	}

	doc, err := domain.DocumentIDFromString(event.DocumentID)
	if err != nil {
		slog.WarnContext(ctx, "ignoring reminder change with invalid document id",
			"reminder_id", id.String(),
		)

		return nil
	}

	reminder, err := s.repo.FindByDocumentID(ctx, doc)
	if err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			s.cancel(ctx, id)

			return nil
		}

		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if reminder.IsCompleted() {
		s.cancel(ctx, id)

		return nil
	}

	if err := s.scheduler.ScheduleNotification(ctx, reminder); err != nil {
		return err
	}

	slog.DebugContext(ctx, "reminder alarms synced",
		"reminder_id", id.String(),
		"document_id", doc.String(),
	)

	return nil
}

func (s *ReminderSync) HandleReminderCompleted(ctx context.Context, event pubsub.ReminderCompletedEvent) error {
	id, err := domain.NewReminderID(event.ReminderID)
	if err != nil {
		slog.WarnContext(ctx, "ignoring reminder completion with invalid id",
			"reminder_id", event.ReminderID,
		)

		return nil
	}

	s.cancel(ctx, id)

	return nil
}

func (s *ReminderSync) cancel(ctx context.Context, id domain.ReminderID) {
	if err := s.scheduler.CancelNotification(ctx, id); err != nil {
		slog.WarnContext(ctx, "failed to cancel synced reminder notification",
			"error", err,
			"reminder_id", id.String(),
		)
	}
}
