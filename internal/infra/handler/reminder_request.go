package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReminderRequest struct {
	Title string `json:"title" binding:"required"`
	// DateTime may be omitted or null for a reminder without due date.
	DateTime   *time.Time      `json:"date_time"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category"`
	Note       string          `json:"note"`
	Repeating  bool            `json:"repeating"`
	RepeatType string          `json:"repeat_type"`
}

type ListRemindersRequest struct {
	Completed *bool `form:"completed"`
}

type AddCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Kind string `json:"kind" binding:"required,oneof=income expense"`
}

type ListCategoriesRequest struct {
	Kind string `form:"kind" binding:"omitempty,oneof=income expense"`
}

func (r ReminderRequest) dateTime() time.Time {
	if r.DateTime == nil {
		return time.Time{}
	}

	return *r.DateTime
}
