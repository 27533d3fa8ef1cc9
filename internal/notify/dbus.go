// Package notify shows desktop notifications through the freedesktop
// notification service on the D-Bus session bus.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/hackebrot/breaktime/internal/fib"
	"github.com/hackebrot/breaktime/pkg/scheduler"
)

const (
	serviceName      = "org.freedesktop.Notifications"
	objectPath       = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod     = serviceName + ".Notify"
	serverInfoMethod = serviceName + ".GetServerInformation"

	// Expiry values understood by the notification server.
	expireDefault = int32(-1)
	expireNever   = int32(0)

	defaultCallTimeout = 5 * time.Second
)

// ErrUnavailable is returned when no notification server can be reached.
var ErrUnavailable = errors.New("notification service unavailable")

// ErrClosed is returned by Show after Close.
var ErrClosed = errors.New("notifier closed")

// caller is the part of dbus.BusObject the notifier uses.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Options configures Dial.
type Options struct {
	AppName string

	// Attempts is how many times to try reaching the notification server
	// before giving up. Session buses can come up after login autostart.
	Attempts int

	// RetryUnit scales the Fibonacci retry delays.
	RetryUnit time.Duration

	// CallTimeout bounds each D-Bus call.
	CallTimeout time.Duration
}

// ServerInfo describes the running notification server.
type ServerInfo struct {
	Name        string
	Vendor      string
	Version     string
	SpecVersion string
}

// DBusNotifier implements scheduler.Notifier over org.freedesktop.Notifications.
type DBusNotifier struct {
	appName     string
	callTimeout time.Duration

	mu            sync.Mutex
	conn          *dbus.Conn
	obj           caller
	closed        bool
	lastReplaceID uint32
}

// Dial connects to the session bus and checks that a notification server
// answers. Failure here is fatal to startup.
func Dial(ctx context.Context, opts Options) (*DBusNotifier, error) {
	if opts.AppName == "" {
		opts.AppName = "breaktime"
	}
	if opts.RetryUnit <= 0 {
		opts.RetryUnit = time.Second
	}

	var n *DBusNotifier
	err := fib.Retry(ctx, opts.Attempts, fib.NewBackoff(opts.RetryUnit), func(ctx context.Context) error {
		conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("connecting to session bus: %w", err)
		}

		candidate := newNotifier(conn, conn.Object(serviceName, objectPath), opts)
		info, err := candidate.ServerInformation(ctx)
		if err != nil {
			conn.Close()
			return err
		}

		slog.Info("connected to notification server",
			"server", info.Name,
			"vendor", info.Vendor,
			"version", info.Version,
			"spec_version", info.SpecVersion,
		)
		n = candidate
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return n, nil
}

func newNotifier(conn *dbus.Conn, obj caller, opts Options) *DBusNotifier {
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &DBusNotifier{
		appName:     opts.AppName,
		callTimeout: timeout,
		conn:        conn,
		obj:         obj,
	}
}

// ServerInformation queries the notification server's identity.
func (d *DBusNotifier) ServerInformation(ctx context.Context) (ServerInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()

	var info ServerInfo
	call := d.obj.CallWithContext(ctx, serverInfoMethod, 0)
	if call.Err != nil {
		return info, fmt.Errorf("querying notification server: %w", call.Err)
	}
	if err := call.Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion); err != nil {
		return info, fmt.Errorf("decoding server information: %w", err)
	}
	return info, nil
}

// Show sends n to the notification server. Replaceable notifications take the
// place of the previous replaceable one.
func (d *DBusNotifier) Show(ctx context.Context, n scheduler.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()

	var replaceID uint32
	if n.Replaceable {
		replaceID = d.lastReplaceID
	}

	expire := expireDefault
	if n.Urgency == scheduler.UrgencyCritical {
		expire = expireNever
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgencyByte(n.Urgency)),
	}

	call := d.obj.CallWithContext(ctx, notifyMethod, 0,
		d.appName,
		replaceID,
		n.IconPath,
		n.Title,
		n.Body,
		[]string{},
		hints,
		expire,
	)
	if call.Err != nil {
		return fmt.Errorf("showing %q: %w", n.Title, call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("decoding notification id: %w", err)
	}
	if n.Replaceable {
		d.lastReplaceID = id
	}

	return nil
}

// Close releases the bus connection. It is safe to call more than once.
func (d *DBusNotifier) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

// urgencyByte maps to the freedesktop urgency levels (0 low, 1 normal, 2 critical).
func urgencyByte(u scheduler.Urgency) byte {
	if u == scheduler.UrgencyCritical {
		return 2
	}
	return 1
}

var _ scheduler.Notifier = (*DBusNotifier)(nil)
