package domain

import (
	"context"
	"time"
)

type TimeRange struct {
	Start time.Time
	End   time.Time
}

type ReminderFilter struct {
	Completed *bool
}

//go:generate mockgen -source=reminder_repository.go -destination=reminder_repository_mock.go -package=domain

type ReminderRepository interface {
	Save(ctx context.Context, reminder *Reminder) error
	Update(ctx context.Context, reminder *Reminder) error
	Delete(ctx context.Context, id DocumentID) error
	FindByDocumentID(ctx context.Context, id DocumentID) (*Reminder, error)
	// FindByReminderID returns every document whose numeric id matches.
	FindByReminderID(ctx context.Context, id ReminderID) ([]*Reminder, error)
	FindPending(ctx context.Context, timeRange TimeRange) ([]*Reminder, error)
	List(ctx context.Context, filter ReminderFilter) ([]*Reminder, error)
	MarkCompleted(ctx context.Context, id DocumentID) error
	NextReminderID(ctx context.Context) (ReminderID, error)
	WithTx(ctx context.Context, fn func(repo ReminderRepository) error) error
}
