package notify

import (
	"context"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

func TestDBusHandleSignal(t *testing.T) {
	rid := domain.MustReminderID(42)

	tests := []struct {
		name     string
		signal   *dbus.Signal
		expected domain.ActionEvent
		ok       bool
	}{
		{
			name:     "mark paid button",
			signal:   &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(7), "mark_paid"}},
			expected: domain.ActionEvent{Kind: domain.ActionMarkPaid, ReminderID: rid},
			ok:       true,
		},
		{
			name:     "body click opens",
			signal:   &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(7), "default"}},
			expected: domain.ActionEvent{Kind: domain.ActionOpen, ReminderID: rid},
			ok:       true,
		},
		{
			name:   "unknown action key",
			signal: &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(7), "snooze"}},
			ok:     false,
		},
		{
			name:   "notification from another application",
			signal: &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(8), "mark_paid"}},
			ok:     false,
		},
		{
			name:   "malformed body",
			signal: &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{"7"}},
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDBus(nil, "test")
			d.serverID[rid] = 7
			d.reminder[7] = rid

			event, ok := d.handleSignal(tt.signal)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, event)
			}
		})
	}
}

func TestDBusHandleClosedForgetsMapping(t *testing.T) {
	rid := domain.MustReminderID(42)
	d := newDBus(nil, "test")
	d.serverID[rid] = 7
	d.reminder[7] = rid

	_, ok := d.handleSignal(&dbus.Signal{Name: signalNotificationClosed, Body: []interface{}{uint32(7), uint32(2)}})
	assert.False(t, ok)
	assert.Empty(t, d.serverID)
	assert.Empty(t, d.reminder)

	// nothing left to close on the server
	require.NoError(t, d.Cancel(context.Background(), rid))
}

func TestActionList(t *testing.T) {
	rid := domain.MustReminderID(3)
	n := domain.Notification{
		ID:  rid,
		Tap: domain.Action{Kind: domain.ActionOpen, Label: "Open", RequestCode: 3, ReminderID: rid},
		Actions: []domain.Action{
			{Kind: domain.ActionMarkPaid, Label: "Mark as paid", RequestCode: 1003, ReminderID: rid},
		},
	}

	assert.Equal(t, []string{"default", "Open", "mark_paid", "Mark as paid"}, actionList(n))
}

func TestUrgency(t *testing.T) {
	assert.Equal(t, byte(0), urgency(domain.ImportanceLow))
	assert.Equal(t, byte(1), urgency(domain.ImportanceDefault))
	assert.Equal(t, byte(2), urgency(domain.ImportanceHigh))
}
