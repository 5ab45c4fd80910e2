package domain

import "time"

type Importance int

const (
	ImportanceLow Importance = iota
	ImportanceDefault
	ImportanceHigh
)

// Channel groups notifications of one kind. Registering the same channel
// twice has no effect.
type Channel struct {
	ID          string
	Name        string
	Description string
	Importance  Importance
}

type ActionKind string

const (
	ActionOpen     ActionKind = "open"
	ActionMarkPaid ActionKind = "mark_paid"
)

func NewActionKind(s string) (ActionKind, bool) {
	switch ActionKind(s) {
	case ActionOpen, ActionMarkPaid:
		return ActionKind(s), true
	default:
		return "", false
	}
}

// Action is a tap target or button on a notification. RequestCode is the key
// the action is registered under; ReminderID is what the action refers to.
type Action struct {
	Kind        ActionKind
	Label       string
	RequestCode int64
	ReminderID  ReminderID
}

type Notification struct {
	ID        ReminderID
	ChannelID string
	Title     string
	Body      string
	Tap       Action
	Actions   []Action
	PostedAt  time.Time
}

// ActionEvent is delivered when the user interacts with a notification.
type ActionEvent struct {
	Kind       ActionKind
	ReminderID ReminderID
}

type MessageLevel string

const (
	MessageInfo  MessageLevel = "info"
	MessageError MessageLevel = "error"
)

// TransientMessage is a short-lived status line shown to the user, such as
// the outcome of a notification action.
type TransientMessage struct {
	ReminderID ReminderID
	Text       string
	Level      MessageLevel
	At         time.Time
}
