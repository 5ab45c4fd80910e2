package pubsub

import "time"

const (
	TopicReminderChanged    = "reminder.changed"
	TopicReminderCompleted  = "reminder.completed"
	TopicNotificationPosted = "reminder.notification.posted"

	metadataEventType  = "event_type"
	metadataReminderID = "reminder_id"
	metadataOrigin     = "origin"

	streamName    = "REMINDER_EVENTS"
	streamSubject = "reminder.>"
)

// ReminderChangedEvent tells other processes sharing the database that a
// reminder was saved or deleted and its alarms need to follow.
type ReminderChangedEvent struct {
	ReminderID int64     `json:"reminder_id"`
	DocumentID string    `json:"document_id"`
	Deleted    bool      `json:"deleted"`
	ChangedAt  time.Time `json:"changed_at"`
}

type ReminderCompletedEvent struct {
	ReminderID  int64     `json:"reminder_id"`
	DocumentID  string    `json:"document_id"`
	Source      string    `json:"source"`
	CompletedAt time.Time `json:"completed_at"`
}

type NotificationPostedEvent struct {
	ReminderID int64     `json:"reminder_id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	PostedAt   time.Time `json:"posted_at"`
}
