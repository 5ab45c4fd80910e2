package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

var ErrUnknownChannel = errors.New("notification channel not registered")

// Tray keeps posted notifications in memory, one slot per reminder id.
type Tray struct {
	mu       sync.RWMutex
	channels map[string]domain.Channel
	visible  map[domain.ReminderID]domain.Notification
}

func NewTray() *Tray {
	return &Tray{
		channels: make(map[string]domain.Channel),
		visible:  make(map[domain.ReminderID]domain.Notification),
	}
}

// CreateChannel registers a channel. Registering an existing id keeps the
// original settings.
func (t *Tray) CreateChannel(_ context.Context, ch domain.Channel) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.channels[ch.ID]; ok {
		return nil
	}

	t.channels[ch.ID] = ch

	return nil
}

func (t *Tray) Notify(ctx context.Context, n domain.Notification) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.channels[n.ChannelID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChannel, n.ChannelID)
	}

	_, replaced := t.visible[n.ID]
	t.visible[n.ID] = n

	slog.DebugContext(ctx, "notification shown in tray",
		"reminder_id", n.ID.String(),
		"replaced", replaced,
	)

	return nil
}

func (t *Tray) Cancel(_ context.Context, id domain.ReminderID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.visible, id)

	return nil
}

func (t *Tray) Get(id domain.ReminderID) (domain.Notification, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.visible[id]

	return n, ok
}

// Visible returns the notifications currently shown, ordered by reminder id.
func (t *Tray) Visible() []domain.Notification {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Notification, 0, len(t.visible))
	for _, n := range t.visible {
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.Int64() < out[j].ID.Int64()
	})

	return out
}

func (t *Tray) Channels() []domain.Channel {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Channel, 0, len(t.channels))
	for _, ch := range t.channels {
		out = append(out, ch)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}
