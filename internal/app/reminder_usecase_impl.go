package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/pubsub"
)

type reminderUseCaseImpl struct {
	repo      domain.ReminderRepository
	scheduler ReminderScheduler
	publisher pubsub.Publisher
}

func NewReminderUseCase(repo domain.ReminderRepository, scheduler ReminderScheduler, publisher pubsub.Publisher) ReminderUseCase {
	return &reminderUseCaseImpl{
		repo:      repo,
		scheduler: scheduler,
		publisher: publisher,
	}
}

func (uc *reminderUseCaseImpl) CreateReminder(ctx context.Context, input CreateReminderInput) (ReminderOutput, error) {
	slog.DebugContext(ctx, "creating reminder",
		"title", input.Title,
		"date_time", input.DateTime,
	)

	repeatType, err := domain.NewRepeatType(input.RepeatType)
	if err != nil {
		return ReminderOutput{}, NewValidationError("repeat_type", err.Error())
	}

	details := domain.ReminderDetails{
		Title:      input.Title,
		DateTime:   input.DateTime,
		Amount:     input.Amount,
		Category:   input.Category,
		Note:       input.Note,
		Repeating:  input.Repeating,
		RepeatType: repeatType,
	}

	var reminder *domain.Reminder

	if err := uc.repo.WithTx(ctx, func(txRepo domain.ReminderRepository) error {
		id, err := txRepo.NextReminderID(ctx)
		if err != nil {
			return err
		}

		reminder, err = domain.NewReminder(id, details)
		if err != nil {
			return err
		}

		return txRepo.Save(ctx, reminder)
	}); err != nil {
		if field, ok := detailsField(err); ok {
			return ReminderOutput{}, NewValidationError(field, err.Error())
		}

		slog.ErrorContext(ctx, "failed to save reminder",
			"error", err,
			"title", input.Title,
		)

		return ReminderOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := uc.scheduler.ScheduleNotification(ctx, reminder); err != nil {
		return ReminderOutput{}, err
	}

	uc.publishChanged(ctx, reminder, false)

	slog.InfoContext(ctx, "reminder created",
		"reminder_id", reminder.ID().String(),
		"document_id", reminder.DocumentID().String(),
	)

	return FromEntity(reminder), nil
}

func (uc *reminderUseCaseImpl) UpdateReminder(ctx context.Context, input UpdateReminderInput) (ReminderOutput, error) {
	slog.DebugContext(ctx, "updating reminder",
		"reminder_id", input.ID,
	)

	repeatType, err := domain.NewRepeatType(input.RepeatType)
	if err != nil {
		return ReminderOutput{}, NewValidationError("repeat_type", err.Error())
	}

	reminder, err := uc.findOne(ctx, input.ID)
	if err != nil {
		return ReminderOutput{}, err
	}

	if err := reminder.Edit(domain.ReminderDetails{
		Title:      input.Title,
		DateTime:   input.DateTime,
		Amount:     input.Amount,
		Category:   input.Category,
		Note:       input.Note,
		Repeating:  input.Repeating,
		RepeatType: repeatType,
	}); err != nil {
		field, _ := detailsField(err)

		return ReminderOutput{}, NewValidationError(field, err.Error())
	}

	if err := uc.repo.Update(ctx, reminder); err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			return ReminderOutput{}, fmt.Errorf("%w: %v", ErrNotFound, err)
		}

		slog.ErrorContext(ctx, "failed to update reminder",
			"error", err,
			"reminder_id", input.ID,
		)

		return ReminderOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	uc.cancelNotification(ctx, reminder.ID())

	if !reminder.IsCompleted() {
		if err := uc.scheduler.ScheduleNotification(ctx, reminder); err != nil {
			return ReminderOutput{}, err
		}
	}

	uc.publishChanged(ctx, reminder, false)

	slog.DebugContext(ctx, "reminder updated",
		"reminder_id", input.ID,
		"completed", reminder.IsCompleted(),
	)

	return FromEntity(reminder), nil
}

func (uc *reminderUseCaseImpl) GetReminder(ctx context.Context, input GetReminderInput) (ReminderOutput, error) {
	reminder, err := uc.findOne(ctx, input.ID)
	if err != nil {
		return ReminderOutput{}, err
	}

	return FromEntity(reminder), nil
}

func (uc *reminderUseCaseImpl) ListReminders(ctx context.Context, input ListRemindersInput) (RemindersOutput, error) {
	reminders, err := uc.repo.List(ctx, domain.ReminderFilter{Completed: input.Completed})
	if err != nil {
		slog.ErrorContext(ctx, "failed to list reminders",
			"error", err,
		)

		return RemindersOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	slog.DebugContext(ctx, "reminders listed",
		"count", len(reminders),
	)

	return FromEntities(reminders), nil
}

func (uc *reminderUseCaseImpl) DeleteReminder(ctx context.Context, input DeleteReminderInput) error {
	slog.DebugContext(ctx, "deleting reminder",
		"reminder_id", input.ID,
	)

	reminder, err := uc.findOne(ctx, input.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			slog.InfoContext(ctx, "reminder not found for deletion (idempotency)",
				"reminder_id", input.ID,
			)

			return nil
		}

		return err
	}

	if err := uc.repo.Delete(ctx, reminder.DocumentID()); err != nil && !errors.Is(err, domain.ErrReminderNotFound) {
		slog.ErrorContext(ctx, "failed to delete reminder",
			"error", err,
			"reminder_id", input.ID,
		)

		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	uc.cancelNotification(ctx, reminder.ID())
	uc.publishChanged(ctx, reminder, true)

	slog.InfoContext(ctx, "reminder deleted",
		"reminder_id", input.ID,
		"document_id", reminder.DocumentID().String(),
	)

	return nil
}

func (uc *reminderUseCaseImpl) CompleteReminder(ctx context.Context, input CompleteReminderInput) (ReminderOutput, error) {
	reminder, err := uc.findOne(ctx, input.ID)
	if err != nil {
		return ReminderOutput{}, err
	}

	if err := reminder.MarkCompleted(); err != nil {
		if !errors.Is(err, domain.ErrAlreadyCompleted) {
			return ReminderOutput{}, NewValidationError("completed", err.Error())
		}

		slog.InfoContext(ctx, "reminder already completed (idempotency)",
			"reminder_id", input.ID,
		)

		return FromEntity(reminder), nil
	}

	if err := uc.repo.MarkCompleted(ctx, reminder.DocumentID()); err != nil {
		slog.ErrorContext(ctx, "failed to mark reminder completed",
			"error", err,
			"reminder_id", input.ID,
		)

		return ReminderOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	uc.cancelNotification(ctx, reminder.ID())

	if uc.publisher != nil {
		event := pubsub.ReminderCompletedEvent{
			ReminderID:  reminder.ID().Int64(),
			DocumentID:  reminder.DocumentID().String(),
			Source:      "api",
			CompletedAt: time.Now(),
		}
		if pubErr := uc.publisher.PublishReminderCompleted(ctx, event); pubErr != nil {
			slog.ErrorContext(ctx, "failed to publish reminder completed event",
				"reminder_id", input.ID,
				"error", pubErr.Error(),
			)
		}
	}

	slog.InfoContext(ctx, "reminder completed",
		"reminder_id", input.ID,
	)

	return FromEntity(reminder), nil
}

func (uc *reminderUseCaseImpl) PendingAlarms(_ context.Context, input GetReminderInput) (AlarmsOutput, error) {
	id, err := domain.ReminderIDFromString(input.ID)
	if err != nil {
		return AlarmsOutput{}, NewValidationError("id", err.Error())
	}

	return FromTriggers(id, uc.scheduler.Pending(id)), nil
}

// cancelNotification runs after the store write has committed, so a failure
// to withdraw the visible notification is logged and not returned.
func (uc *reminderUseCaseImpl) cancelNotification(ctx context.Context, id domain.ReminderID) {
	if err := uc.scheduler.CancelNotification(ctx, id); err != nil {
		slog.WarnContext(ctx, "failed to cancel notification after store write",
			"error", err,
			"reminder_id", id.String(),
		)
	}
}

func (uc *reminderUseCaseImpl) publishChanged(ctx context.Context, reminder *domain.Reminder, deleted bool) {
	if uc.publisher == nil {
		return
	}

	event := pubsub.ReminderChangedEvent{
		ReminderID: reminder.ID().Int64(),
		DocumentID: reminder.DocumentID().String(),
		Deleted:    deleted,
		ChangedAt:  time.Now(),
	}
	if err := uc.publisher.PublishReminderChanged(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to publish reminder changed event",
			"reminder_id", reminder.ID().String(),
			"error", err.Error(),
		)
	}
}

// findOne resolves a numeric reminder id to its stored document. When more
// than one document carries the id, the first one wins.
func (uc *reminderUseCaseImpl) findOne(ctx context.Context, rawID string) (*domain.Reminder, error) {
	id, err := domain.ReminderIDFromString(rawID)
	if err != nil {
		return nil, NewValidationError("id", err.Error())
	}

	matches, err := uc.repo.FindByReminderID(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to find reminder",
			"error", err,
			"reminder_id", rawID,
		)

		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, domain.ErrReminderNotFound)
	}

	if len(matches) > 1 {
		slog.WarnContext(ctx, "several documents share a reminder id, using the first",
			"reminder_id", rawID,
			"count", len(matches),
		)
	}

	return matches[0], nil
}

func detailsField(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrEmptyTitle):
		return "title", true
	case errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrAmountPrecision),
		errors.Is(err, domain.ErrAmountTooLarge):
		return "amount", true
	default:
		return "", false
	}
}
