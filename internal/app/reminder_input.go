package app

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateReminderInput struct {
	Title string
	// DateTime is optional; the zero value means no due date.
	DateTime   time.Time
	Amount     decimal.Decimal
	Category   string
	Note       string
	Repeating  bool
	RepeatType string
}

type UpdateReminderInput struct {
	ID         string
	Title      string
	DateTime   time.Time
	Amount     decimal.Decimal
	Category   string
	Note       string
	Repeating  bool
	RepeatType string
}

type GetReminderInput struct {
	ID string
}

type ListRemindersInput struct {
	Completed *bool
}

type DeleteReminderInput struct {
	ID string
}

type CompleteReminderInput struct {
	ID string
}
