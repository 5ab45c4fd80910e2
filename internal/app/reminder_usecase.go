package app

import (
	"context"
)

type ReminderUseCase interface {
	CreateReminder(ctx context.Context, input CreateReminderInput) (ReminderOutput, error)
	UpdateReminder(ctx context.Context, input UpdateReminderInput) (ReminderOutput, error)
	GetReminder(ctx context.Context, input GetReminderInput) (ReminderOutput, error)
	ListReminders(ctx context.Context, input ListRemindersInput) (RemindersOutput, error)
	DeleteReminder(ctx context.Context, input DeleteReminderInput) error
	CompleteReminder(ctx context.Context, input CompleteReminderInput) (ReminderOutput, error)
	PendingAlarms(ctx context.Context, input GetReminderInput) (AlarmsOutput, error)
}
