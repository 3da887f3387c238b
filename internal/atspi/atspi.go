// Package atspi implements a11y.Driver on top of the AT-SPI2 accessibility
// bus. It is internal to the slidecrawler package.
package atspi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/cboone/slidecrawler/a11y"
)

const (
	a11yBusName = "org.a11y.Bus"
	a11yBusPath = "/org/a11y/bus"

	registryName = "org.a11y.atspi.Registry"
	rootPath     = "/org/a11y/atspi/accessible/root"
	decPath      = "/org/a11y/atspi/registry/deviceeventcontroller"

	ifaceAccessible = "org.a11y.atspi.Accessible"
	ifaceAction     = "org.a11y.atspi.Action"
	ifaceText       = "org.a11y.atspi.Text"
	ifaceComponent  = "org.a11y.atspi.Component"
	ifaceDEC        = "org.a11y.atspi.DeviceEventController"
	ifaceProperties = "org.freedesktop.DBus.Properties"
)

// Synthetic keyboard event types (AtspiKeySynthType).
const (
	keySym             uint32 = 3
	keyString          uint32 = 4
	keyLockModifiers   uint32 = 5
	keyUnlockModifiers uint32 = 6
)

// DefaultCallTimeout bounds a single D-Bus round trip.
const DefaultCallTimeout = 5 * time.Second

// Driver is a connection to the AT-SPI registry.
type Driver struct {
	conn        *dbus.Conn
	callTimeout time.Duration
}

// Connect locates the accessibility bus and connects to it. The bus address
// comes from AT_SPI_BUS_ADDRESS when set, otherwise from the org.a11y.Bus
// service on the session bus.
func Connect(ctx context.Context) (*Driver, error) {
	addr := os.Getenv("AT_SPI_BUS_ADDRESS")
	if addr == "" {
		var err error
		addr, err = busAddress(ctx)
		if err != nil {
			return nil, err
		}
	}
	conn, err := dbus.Connect(addr)
	if err != nil {
		return nil, fmt.Errorf("atspi: connect %s: %w", addr, err)
	}
	return &Driver{conn: conn, callTimeout: DefaultCallTimeout}, nil
}

func busAddress(ctx context.Context) (string, error) {
	session, err := dbus.ConnectSessionBus()
	if err != nil {
		return "", fmt.Errorf("atspi: session bus: %w", err)
	}
	defer session.Close()

	var addr string
	obj := session.Object(a11yBusName, a11yBusPath)
	if err := obj.CallWithContext(ctx, a11yBusName+".GetAddress", 0).Store(&addr); err != nil {
		return "", fmt.Errorf("atspi: get accessibility bus address: %w", err)
	}
	return addr, nil
}

// SetCallTimeout changes the per-call timeout. Zero restores the default.
func (d *Driver) SetCallTimeout(timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	d.callTimeout = timeout
}

// Close closes the accessibility bus connection.
func (d *Driver) Close() error {
	return d.conn.Close()
}

// Applications lists the children of the registry's desktop root.
func (d *Driver) Applications(ctx context.Context) ([]a11y.Application, error) {
	root := &node{d: d, dest: registryName, path: rootPath}
	children, err := root.refs(ctx)
	if err != nil {
		return nil, err
	}
	apps := make([]a11y.Application, 0, len(children))
	for _, ref := range children {
		apps = append(apps, &app{node: node{d: d, dest: ref.Name, path: ref.Path}})
	}
	return apps, nil
}

// TypeText synthesises the characters of text as key strings. Newlines are
// sent as Return.
func (d *Driver) TypeText(ctx context.Context, text string) error {
	start := 0
	for i, r := range text {
		if r != '\n' {
			continue
		}
		if err := d.keyString(ctx, text[start:i]); err != nil {
			return err
		}
		if err := d.PressKey(ctx, a11y.Enter); err != nil {
			return err
		}
		start = i + 1
	}
	return d.keyString(ctx, text[start:])
}

func (d *Driver) keyString(ctx context.Context, s string) error {
	if s == "" {
		return nil
	}
	return d.generate(ctx, 0, s, keyString)
}

// PressKey locks the key's modifiers, presses and releases its keysym, then
// unlocks the modifiers.
func (d *Driver) PressKey(ctx context.Context, key a11y.Key) error {
	if key.Modifiers != 0 {
		if err := d.generate(ctx, int32(key.Modifiers), "", keyLockModifiers); err != nil {
			return err
		}
	}
	err := d.generate(ctx, int32(key.Keysym), "", keySym)
	if key.Modifiers != 0 {
		if uerr := d.generate(ctx, int32(key.Modifiers), "", keyUnlockModifiers); err == nil {
			err = uerr
		}
	}
	return err
}

func (d *Driver) generate(ctx context.Context, code int32, s string, kind uint32) error {
	ctx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()
	obj := d.conn.Object(registryName, decPath)
	call := obj.CallWithContext(ctx, ifaceDEC+".GenerateKeyboardEvent", 0, code, s, kind)
	if call.Err != nil {
		return fmt.Errorf("atspi: keyboard event: %w", mapError(call.Err))
	}
	return nil
}

// mapError folds the D-Bus errors that mean "the object or its owner went
// away" into a11y.ErrDead.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, dbus.ErrClosed) {
		return fmt.Errorf("%w: %v", a11y.ErrDead, err)
	}
	var name string
	var derr dbus.Error
	var perr *dbus.Error
	switch {
	case errors.As(err, &derr):
		name = derr.Name
	case errors.As(err, &perr):
		name = perr.Name
	}
	switch name {
	case "org.freedesktop.DBus.Error.ServiceUnknown",
		"org.freedesktop.DBus.Error.UnknownObject",
		"org.freedesktop.DBus.Error.NoReply",
		"org.freedesktop.DBus.Error.Disconnected",
		"org.freedesktop.DBus.Error.NameHasNoOwner":
		return fmt.Errorf("%w: %v", a11y.ErrDead, err)
	case "org.freedesktop.DBus.Error.UnknownMethod",
		"org.freedesktop.DBus.Error.UnknownInterface":
		return fmt.Errorf("%w: %v", a11y.ErrUnsupported, err)
	}
	return err
}
