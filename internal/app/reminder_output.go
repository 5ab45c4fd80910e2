package app

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

type ReminderOutput struct {
	ID         int64
	DocumentID string
	Title      string
	DateTime   time.Time
	Amount     decimal.Decimal
	Completed  bool
	Category   string
	Note       string
	Repeating  bool
	RepeatType string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type RemindersOutput struct {
	Reminders []ReminderOutput
	Count     int32
}

type AlarmOutput struct {
	Kind string
	At   time.Time
}

type AlarmsOutput struct {
	ReminderID int64
	Alarms     []AlarmOutput
}

func FromEntity(reminder *domain.Reminder) ReminderOutput {
	return ReminderOutput{
		ID:         reminder.ID().Int64(),
		DocumentID: reminder.DocumentID().String(),
		Title:      reminder.Title(),
		DateTime:   reminder.DateTime(),
		Amount:     reminder.Amount(),
		Completed:  reminder.IsCompleted(),
		Category:   reminder.Category(),
		Note:       reminder.Note(),
		Repeating:  reminder.IsRepeating(),
		RepeatType: string(reminder.RepeatType()),
		CreatedAt:  reminder.CreatedAt(),
		UpdatedAt:  reminder.UpdatedAt(),
	}
}

func FromEntities(reminders []*domain.Reminder) RemindersOutput {
	outputs := make([]ReminderOutput, 0, len(reminders))
	for _, r := range reminders {
		outputs = append(outputs, FromEntity(r))
	}

	return RemindersOutput{
		Reminders: outputs,
		Count:     int32(len(outputs)), //nolint:gosec
	}
}

func FromTriggers(id domain.ReminderID, triggers []domain.Trigger) AlarmsOutput {
	alarms := make([]AlarmOutput, 0, len(triggers))
	for _, t := range triggers {
		alarms = append(alarms, AlarmOutput{Kind: string(t.Kind), At: t.At})
	}

	return AlarmsOutput{
		ReminderID: id.Int64(),
		Alarms:     alarms,
	}
}
