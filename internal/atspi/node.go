package atspi

import (
	"context"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/cboone/slidecrawler/a11y"
)

// objectRef is the (so) reference AT-SPI uses for accessibles.
type objectRef struct {
	Name string
	Path dbus.ObjectPath
}

// nullPath marks an absent reference.
const nullPath = "/org/a11y/atspi/null"

// node is an accessible object addressed by bus name and object path.
type node struct {
	d    *Driver
	dest string
	path dbus.ObjectPath
}

func (n *node) String() string {
	return n.dest + string(n.path)
}

func (n *node) call(ctx context.Context, method string, args ...any) *dbus.Call {
	ctx, cancel := context.WithTimeout(ctx, n.d.callTimeout)
	defer cancel()
	return n.d.conn.Object(n.dest, n.path).CallWithContext(ctx, method, 0, args...)
}

func (n *node) property(ctx context.Context, iface, prop string) (any, error) {
	var v dbus.Variant
	if err := n.call(ctx, ifaceProperties+".Get", iface, prop).Store(&v); err != nil {
		return nil, fmt.Errorf("atspi: %s %s.%s: %w", n, iface, prop, mapError(err))
	}
	return v.Value(), nil
}

func (n *node) stringProperty(ctx context.Context, iface, prop string) (string, error) {
	v, err := n.property(ctx, iface, prop)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("atspi: %s %s.%s: unexpected type %T", n, iface, prop, v)
	}
	return s, nil
}

func (n *node) Role(ctx context.Context) (a11y.Role, error) {
	var r uint32
	if err := n.call(ctx, ifaceAccessible+".GetRole").Store(&r); err != nil {
		return a11y.RoleInvalid, fmt.Errorf("atspi: %s role: %w", n, mapError(err))
	}
	return roleName(r), nil
}

func (n *node) Name(ctx context.Context) (string, error) {
	return n.stringProperty(ctx, ifaceAccessible, "Name")
}

func (n *node) Description(ctx context.Context) (string, error) {
	return n.stringProperty(ctx, ifaceAccessible, "Description")
}

func (n *node) refs(ctx context.Context) ([]objectRef, error) {
	var refs []objectRef
	if err := n.call(ctx, ifaceAccessible+".GetChildren").Store(&refs); err != nil {
		return nil, fmt.Errorf("atspi: %s children: %w", n, mapError(err))
	}
	out := refs[:0]
	for _, r := range refs {
		if r.Path == nullPath {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (n *node) Children(ctx context.Context) ([]a11y.Node, error) {
	refs, err := n.refs(ctx)
	if err != nil {
		return nil, err
	}
	children := make([]a11y.Node, len(refs))
	for i, r := range refs {
		children[i] = &node{d: n.d, dest: r.Name, path: r.Path}
	}
	return children, nil
}

func (n *node) States(ctx context.Context) (a11y.StateSet, error) {
	var words []uint32
	if err := n.call(ctx, ifaceAccessible+".GetState").Store(&words); err != nil {
		return 0, fmt.Errorf("atspi: %s state: %w", n, mapError(err))
	}
	var ss a11y.StateSet
	for i, w := range words {
		if i > 1 {
			break
		}
		ss |= a11y.StateSet(w) << (32 * i)
	}
	return ss, nil
}

func (n *node) Text(ctx context.Context) (string, error) {
	var s string
	if err := n.call(ctx, ifaceText+".GetText", int32(0), int32(-1)).Store(&s); err != nil {
		return "", fmt.Errorf("atspi: %s text: %w", n, mapError(err))
	}
	return s, nil
}

// Click runs the first action named click, press, activate or toggle,
// falling back to action 0.
func (n *node) Click(ctx context.Context) error {
	v, err := n.property(ctx, ifaceAction, "NActions")
	if err != nil {
		return err
	}
	count, _ := v.(int32)
	if count == 0 {
		return fmt.Errorf("atspi: %s click: %w: no actions", n, a11y.ErrUnsupported)
	}
	index := int32(0)
	for i := int32(0); i < count; i++ {
		var name string
		if err := n.call(ctx, ifaceAction+".GetName", i).Store(&name); err != nil {
			return fmt.Errorf("atspi: %s action name: %w", n, mapError(err))
		}
		if isClickAction(name) {
			index = i
			break
		}
	}
	var ok bool
	if err := n.call(ctx, ifaceAction+".DoAction", index).Store(&ok); err != nil {
		return fmt.Errorf("atspi: %s click: %w", n, mapError(err))
	}
	if !ok {
		return fmt.Errorf("atspi: %s click: action %d refused", n, index)
	}
	return nil
}

func isClickAction(name string) bool {
	switch strings.ToLower(name) {
	case "click", "press", "activate", "toggle":
		return true
	}
	return false
}

func (n *node) Focus(ctx context.Context) error {
	var ok bool
	if err := n.call(ctx, ifaceComponent+".GrabFocus").Store(&ok); err != nil {
		return fmt.Errorf("atspi: %s focus: %w", n, mapError(err))
	}
	if !ok {
		return fmt.Errorf("atspi: %s focus: refused", n)
	}
	return nil
}

// app is an application root; its bus name identifies the owning process.
type app struct {
	node
}

func (a *app) PID(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.d.callTimeout)
	defer cancel()
	var pid uint32
	err := a.d.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.GetConnectionUnixProcessID", 0, a.dest).Store(&pid)
	if err != nil {
		return 0, fmt.Errorf("atspi: %s pid: %w", &a.node, mapError(err))
	}
	return int(pid), nil
}

// roles maps AtspiRole values to their names.
var roles = []a11y.Role{
	"invalid", "accelerator label", "alert", "animation", "arrow", "calendar",
	"canvas", "check box", "check menu item", "color chooser", "column header",
	"combo box", "date editor", "desktop icon", "desktop frame", "dial",
	"dialog", "directory pane", "drawing area", "file chooser", "filler",
	"focus traversable", "font chooser", "frame", "glass pane",
	"html container", "icon", "image", "internal frame", "label",
	"layered pane", "list", "list item", "menu", "menu bar", "menu item",
	"option pane", "page tab", "page tab list", "panel", "password text",
	"popup menu", "progress bar", "push button", "radio button",
	"radio menu item", "root pane", "row header", "scroll bar", "scroll pane",
	"separator", "slider", "spin button", "split pane", "status bar", "table",
	"table cell", "table column header", "table row header",
	"tearoff menu item", "terminal", "text", "toggle button", "tool bar",
	"tool tip", "tree", "tree table", "unknown", "viewport", "window",
	"extended", "header", "footer", "paragraph", "ruler", "application",
}

func roleName(r uint32) a11y.Role {
	if int(r) < len(roles) {
		return roles[r]
	}
	return a11y.RoleUnknown
}
