package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

const (
	notifyDest      = "org.freedesktop.Notifications"
	notifyPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyInterface = "org.freedesktop.Notifications"

	methodNotify = notifyInterface + ".Notify"
	methodClose  = notifyInterface + ".CloseNotification"

	signalActionInvoked      = notifyInterface + ".ActionInvoked"
	signalNotificationClosed = notifyInterface + ".NotificationClosed"

	// defaultActionKey is what servers report when the body is clicked.
	defaultActionKey = "default"

	messageTimeoutMillis = int32(4000)
)

// DBus posts notifications to the desktop notification server on the session
// bus and turns button clicks back into action events.
type DBus struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	appName string

	mu       sync.Mutex
	channels map[string]domain.Channel
	serverID map[domain.ReminderID]uint32
	reminder map[uint32]domain.ReminderID
}

func NewDBus(appName string) (*DBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return newDBus(conn, appName), nil
}

func newDBus(conn *dbus.Conn, appName string) *DBus {
	d := &DBus{
		conn:     conn,
		appName:  appName,
		channels: make(map[string]domain.Channel),
		serverID: make(map[domain.ReminderID]uint32),
		reminder: make(map[uint32]domain.ReminderID),
	}

	if conn != nil {
		d.obj = conn.Object(notifyDest, notifyPath)
	}

	return d
}

// CreateChannel records the channel; desktop servers have no channel concept,
// so importance is carried as the urgency hint on each notification.
func (d *DBus) CreateChannel(_ context.Context, ch domain.Channel) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.channels[ch.ID]; !ok {
		d.channels[ch.ID] = ch
	}

	return nil
}

func (d *DBus) Notify(ctx context.Context, n domain.Notification) error {
	d.mu.Lock()
	ch, ok := d.channels[n.ChannelID]
	replaces := d.serverID[n.ID]
	d.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChannel, n.ChannelID)
	}

	var id uint32

	err := d.obj.CallWithContext(ctx, methodNotify, 0,
		d.appName,
		replaces,
		"",
		n.Title,
		n.Body,
		actionList(n),
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(urgency(ch.Importance))},
		int32(0),
	).Store(&id)
	if err != nil {
		return fmt.Errorf("failed to post desktop notification: %w", err)
	}

	d.mu.Lock()
	if replaces != 0 && replaces != id {
		delete(d.reminder, replaces)
	}
	d.serverID[n.ID] = id
	d.reminder[id] = n.ID
	d.mu.Unlock()

	slog.DebugContext(ctx, "desktop notification posted",
		"reminder_id", n.ID.String(),
		"server_id", id,
	)

	return nil
}

func (d *DBus) Cancel(ctx context.Context, id domain.ReminderID) error {
	d.mu.Lock()
	sid, ok := d.serverID[id]
	if ok {
		delete(d.serverID, id)
		delete(d.reminder, sid)
	}
	d.mu.Unlock()

	if !ok {
		return nil
	}

	if call := d.obj.CallWithContext(ctx, methodClose, 0, sid); call.Err != nil {
		return fmt.Errorf("failed to close desktop notification: %w", call.Err)
	}

	return nil
}

// Show posts a transient message as a short-lived low urgency notification.
func (d *DBus) Show(ctx context.Context, msg domain.TransientMessage) {
	call := d.obj.CallWithContext(ctx, methodNotify, 0,
		d.appName,
		uint32(0),
		"",
		d.appName,
		msg.Text,
		[]string{},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(urgency(domain.ImportanceLow))},
		messageTimeoutMillis,
	)
	if call.Err != nil {
		slog.WarnContext(ctx, "failed to show desktop message",
			"error", call.Err,
			"reminder_id", msg.ReminderID.String(),
		)
	}
}

// Listen delivers notification button clicks to handle until ctx is done.
func (d *DBus) Listen(ctx context.Context, handle func(context.Context, domain.ActionEvent)) error {
	for _, member := range []string{"ActionInvoked", "NotificationClosed"} {
		if err := d.conn.AddMatchSignal(
			dbus.WithMatchObjectPath(notifyPath),
			dbus.WithMatchInterface(notifyInterface),
			dbus.WithMatchMember(member),
		); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", member, err)
		}
	}

	signals := make(chan *dbus.Signal, 16)
	d.conn.Signal(signals)
	defer d.conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				return nil
			}

			if event, ok := d.handleSignal(sig); ok {
				handle(ctx, event)
			}
		}
	}
}

func (d *DBus) handleSignal(sig *dbus.Signal) (domain.ActionEvent, bool) {
	if sig == nil || len(sig.Body) < 2 {
		return domain.ActionEvent{}, false
	}

	sid, ok := sig.Body[0].(uint32)
	if !ok {
		return domain.ActionEvent{}, false
	}

	switch sig.Name {
	case signalNotificationClosed:
		d.mu.Lock()
		if rid, ok := d.reminder[sid]; ok {
			delete(d.reminder, sid)
			delete(d.serverID, rid)
		}
		d.mu.Unlock()

		return domain.ActionEvent{}, false

	case signalActionInvoked:
		key, ok := sig.Body[1].(string)
		if !ok {
			return domain.ActionEvent{}, false
		}

		d.mu.Lock()
		rid, found := d.reminder[sid]
		d.mu.Unlock()

		if !found {
			slog.Debug("action for unknown desktop notification",
				"server_id", sid,
				"action", key,
			)

			return domain.ActionEvent{}, false
		}

		if key == defaultActionKey {
			return domain.ActionEvent{Kind: domain.ActionOpen, ReminderID: rid}, true
		}

		kind, ok := domain.NewActionKind(key)
		if !ok {
			return domain.ActionEvent{}, false
		}

		return domain.ActionEvent{Kind: kind, ReminderID: rid}, true
	}

	return domain.ActionEvent{}, false
}

func (d *DBus) Close() error {
	return d.conn.Close()
}

// actionList flattens the tap target and buttons into the key/label pairs
// the Notify method expects.
func actionList(n domain.Notification) []string {
	actions := make([]string, 0, 2+2*len(n.Actions))
	actions = append(actions, defaultActionKey, n.Tap.Label)

	for _, a := range n.Actions {
		actions = append(actions, string(a.Kind), a.Label)
	}

	return actions
}

func urgency(i domain.Importance) byte {
	switch i {
	case domain.ImportanceLow:
		return 0
	case domain.ImportanceHigh:
		return 2
	default:
		return 1
	}
}
