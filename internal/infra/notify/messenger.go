package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

type Messenger interface {
	Show(ctx context.Context, msg domain.TransientMessage)
}

// LogMessenger writes transient messages to the structured log.
type LogMessenger struct{}

func (LogMessenger) Show(ctx context.Context, msg domain.TransientMessage) {
	level := slog.LevelInfo
	if msg.Level == domain.MessageError {
		level = slog.LevelWarn
	}

	slog.Log(ctx, level, msg.Text,
		"event", "message.show",
		"reminder_id", msg.ReminderID.String(),
	)
}

// Inbox keeps the most recent transient messages, oldest dropped first.
type Inbox struct {
	mu       sync.Mutex
	messages []domain.TransientMessage
	size     int
}

func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = 1
	}

	return &Inbox{
		messages: make([]domain.TransientMessage, 0, size),
		size:     size,
	}
}

func (i *Inbox) Show(_ context.Context, msg domain.TransientMessage) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.messages) == i.size {
		copy(i.messages, i.messages[1:])
		i.messages = i.messages[:i.size-1]
	}

	i.messages = append(i.messages, msg)
}

// Recent returns the kept messages, newest last.
func (i *Inbox) Recent() []domain.TransientMessage {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make([]domain.TransientMessage, len(i.messages))
	copy(out, i.messages)

	return out
}

type multiMessenger []Messenger

func (m multiMessenger) Show(ctx context.Context, msg domain.TransientMessage) {
	for _, messenger := range m {
		messenger.Show(ctx, msg)
	}
}

// Fanout shows every message on each of the given messengers in order.
func Fanout(messengers ...Messenger) Messenger {
	return multiMessenger(messengers)
}
