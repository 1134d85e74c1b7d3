//go:build linux

package notify

import (
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"

	appName      = "Wavestream"
	desktopEntry = "wavestream"
)

// dbusNotifier sends notifications over a private session bus connection
// and relays ActionInvoked signals.
type dbusNotifier struct {
	conn        *dbus.Conn
	obj         dbus.BusObject
	signals     chan *dbus.Signal
	invocations chan Invocation
	done        chan struct{}
	once        sync.Once
}

// New creates a Notifier that sends desktop notifications via D-Bus.
// Returns a no-op notifier if D-Bus is unavailable.
func New() (Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		// D-Bus not available, return no-op notifier (intentional graceful degradation)
		return stubNotifier{}, nil //nolint:nilerr // graceful fallback when D-Bus unavailable
	}

	n := &dbusNotifier{
		conn:        conn,
		obj:         conn.Object(dbusNotifyDest, dbusNotifyPath),
		signals:     make(chan *dbus.Signal, 8),
		invocations: make(chan Invocation, 8),
		done:        make(chan struct{}),
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbusNotifyPath),
		dbus.WithMatchInterface(dbusNotifyInterface),
		dbus.WithMatchMember("ActionInvoked"),
	); err != nil {
		// Buttons will not work, plain notifications still do.
		close(n.invocations)
		return n, nil //nolint:nilerr // degrade to notifications without actions
	}
	conn.Signal(n.signals)
	go n.relay()
	return n, nil
}

func (n *dbusNotifier) relay() {
	defer close(n.invocations)
	for {
		select {
		case sig, ok := <-n.signals:
			if !ok {
				return
			}
			if sig.Name != dbusNotifyInterface+".ActionInvoked" {
				continue
			}
			inv, ok := parseInvocation(sig.Body)
			if !ok {
				continue
			}
			select {
			case n.invocations <- inv:
			default:
			}
		case <-n.done:
			return
		}
	}
}

// parseInvocation decodes the (id, action_key) body of ActionInvoked.
func parseInvocation(body []any) (Invocation, bool) {
	if len(body) != 2 {
		return Invocation{}, false
	}
	id, ok := body[0].(uint32)
	if !ok {
		return Invocation{}, false
	}
	key, ok := body[1].(string)
	if !ok {
		return Invocation{}, false
	}
	return Invocation{ID: id, Key: key}, true
}

// hints builds the hints dictionary for n.
func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(desktopEntry),
	}
	if n.Category != "" {
		h["category"] = dbus.MakeVariant(n.Category)
	}
	if len(n.Actions) > 0 {
		h["action-icons"] = dbus.MakeVariant(true)
	}
	if n.Resident {
		h["resident"] = dbus.MakeVariant(true)
	}
	if strings.HasPrefix(n.Icon, "/") {
		h["image-path"] = dbus.MakeVariant("file://" + n.Icon)
	}
	return h
}

// Notify sends a notification via D-Bus.
func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout) -> id
	call := n.obj.Call(
		dbusNotifyInterface+".Notify",
		0,
		appName,
		notif.ReplacesID,
		notif.Icon,
		notif.Title,
		notif.Body,
		notif.actionList(),
		hints(notif),
		notif.Timeout,
	)
	if call.Err != nil {
		return 0, call.Err
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Close closes a notification by ID.
func (n *dbusNotifier) Close(id uint32) error {
	return n.obj.Call(dbusNotifyInterface+".CloseNotification", 0, id).Err
}

func (n *dbusNotifier) Invocations() <-chan Invocation {
	return n.invocations
}

func (n *dbusNotifier) Shutdown() {
	n.once.Do(func() {
		close(n.done)
		n.conn.RemoveSignal(n.signals)
		_ = n.conn.Close()
	})
}
