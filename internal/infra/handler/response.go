package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/KasumiMercury/primind-payment-reminder/internal/app"
	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

type ReminderResponse struct {
	ID         int64           `json:"id"`
	DocumentID string          `json:"document_id"`
	Title      string          `json:"title"`
	DateTime   *time.Time      `json:"date_time"`
	Amount     decimal.Decimal `json:"amount"`
	Completed  bool            `json:"completed"`
	Category   string          `json:"category"`
	Note       string          `json:"note"`
	Repeating  bool            `json:"repeating"`
	RepeatType string          `json:"repeat_type"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type RemindersResponse struct {
	Reminders []ReminderResponse `json:"reminders"`
	Count     int32              `json:"count"`
}

type AlarmResponse struct {
	Kind string    `json:"kind"`
	At   time.Time `json:"at"`
}

type AlarmsResponse struct {
	ReminderID int64           `json:"reminder_id"`
	Alarms     []AlarmResponse `json:"alarms"`
}

type ActionResponse struct {
	ReminderID int64    `json:"reminder_id"`
	Action     string   `json:"action"`
	State      string   `json:"state"`
	Message    string   `json:"message,omitempty"`
	States     []string `json:"states"`
}

type NotificationResponse struct {
	ReminderID int64          `json:"reminder_id"`
	ChannelID  string         `json:"channel_id"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Actions    []ActionButton `json:"actions"`
	PostedAt   time.Time      `json:"posted_at"`
}

type ActionButton struct {
	Action      string `json:"action"`
	Label       string `json:"label"`
	RequestCode int64  `json:"request_code"`
}

type MessageResponse struct {
	ReminderID int64     `json:"reminder_id"`
	Text       string    `json:"text"`
	Level      string    `json:"level"`
	At         time.Time `json:"at"`
}

type CategoryResponse struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Custom bool   `json:"custom"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Count      int32              `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func FromDTO(output app.ReminderOutput) ReminderResponse {
	var dateTime *time.Time
	if !output.DateTime.IsZero() {
		t := output.DateTime
		dateTime = &t
	}

	return ReminderResponse{
		ID:         output.ID,
		DocumentID: output.DocumentID,
		Title:      output.Title,
		DateTime:   dateTime,
		Amount:     output.Amount,
		Completed:  output.Completed,
		Category:   output.Category,
		Note:       output.Note,
		Repeating:  output.Repeating,
		RepeatType: output.RepeatType,
		CreatedAt:  output.CreatedAt,
		UpdatedAt:  output.UpdatedAt,
	}
}

func FromDTOs(output app.RemindersOutput) RemindersResponse {
	reminders := make([]ReminderResponse, 0, len(output.Reminders))
	for _, r := range output.Reminders {
		reminders = append(reminders, FromDTO(r))
	}

	return RemindersResponse{
		Reminders: reminders,
		Count:     output.Count,
	}
}

func fromAlarms(output app.AlarmsOutput) AlarmsResponse {
	alarms := make([]AlarmResponse, 0, len(output.Alarms))
	for _, a := range output.Alarms {
		alarms = append(alarms, AlarmResponse{Kind: a.Kind, At: a.At})
	}

	return AlarmsResponse{
		ReminderID: output.ReminderID,
		Alarms:     alarms,
	}
}

func fromTask(task *app.Task) ActionResponse {
	event := task.Event()
	states := task.States()

	resp := ActionResponse{
		ReminderID: event.ReminderID.Int64(),
		Action:     string(event.Kind),
		States:     make([]string, 0, len(states)),
	}

	for _, s := range states {
		resp.States = append(resp.States, string(s))
	}

	if outcome, done := task.Outcome(); done {
		resp.State = string(outcome.State)
		resp.Message = outcome.Message
	} else {
		resp.State = "ACCEPTED"
	}

	return resp
}

func fromNotification(n domain.Notification) NotificationResponse {
	buttons := make([]ActionButton, 0, 1+len(n.Actions))
	for _, a := range append([]domain.Action{n.Tap}, n.Actions...) {
		buttons = append(buttons, ActionButton{
			Action:      string(a.Kind),
			Label:       a.Label,
			RequestCode: a.RequestCode,
		})
	}

	return NotificationResponse{
		ReminderID: n.ID.Int64(),
		ChannelID:  n.ChannelID,
		Title:      n.Title,
		Body:       n.Body,
		Actions:    buttons,
		PostedAt:   n.PostedAt,
	}
}

func fromMessage(m domain.TransientMessage) MessageResponse {
	return MessageResponse{
		ReminderID: m.ReminderID.Int64(),
		Text:       m.Text,
		Level:      string(m.Level),
		At:         m.At,
	}
}

func fromCategories(output app.CategoriesOutput) CategoriesResponse {
	categories := make([]CategoryResponse, 0, len(output.Categories))
	for _, c := range output.Categories {
		categories = append(categories, CategoryResponse(c))
	}

	return CategoriesResponse{
		Categories: categories,
		Count:      output.Count,
	}
}
