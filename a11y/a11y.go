// Package a11y defines the typed accessibility surface slidecrawler drives.
//
// A Driver exposes the applications registered with an accessibility
// provider. Each application is a tree of Nodes that can be queried by role,
// accessible name and accessible description, and acted upon (click, focus).
// Keyboard input is global to the provider and lives on the Driver.
//
// Failures come in three kinds: [ErrNotFound] when a query matches nothing,
// [ErrDead] when the object or its process disappeared while being queried,
// and [ErrUnsupported] when the object lacks the requested capability.
// Waiting is never the driver's job; callers poll.
package a11y

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("a11y: no matching object")
	ErrDead        = errors.New("a11y: object is dead")
	ErrUnsupported = errors.New("a11y: capability not supported")
)

// Role is the accessible role of a node, spelled the way AT-SPI names roles
// ("push button", "file chooser", ...).
type Role string

const (
	RoleInvalid      Role = "invalid"
	RoleAlert        Role = "alert"
	RoleApplication  Role = "application"
	RoleComboBox     Role = "combo box"
	RoleDialog       Role = "dialog"
	RoleFileChooser  Role = "file chooser"
	RoleFiller       Role = "filler"
	RoleFrame        Role = "frame"
	RoleLabel        Role = "label"
	RoleMenu         Role = "menu"
	RoleMenuBar      Role = "menu bar"
	RoleMenuItem     Role = "menu item"
	RolePanel        Role = "panel"
	RoleProgressBar  Role = "progress bar"
	RolePushButton   Role = "push button"
	RoleSpinButton   Role = "spin button"
	RoleText         Role = "text"
	RoleToggleButton Role = "toggle button"
	RoleToolBar      Role = "tool bar"
	RoleWindow       Role = "window"
	RoleUnknown      Role = "unknown"
)

// State is a single accessible state bit.
type State uint

// Bit positions follow the AT-SPI state enumeration.
const (
	StateDefunct   State = 6
	StateEditable  State = 7
	StateEnabled   State = 8
	StateFocused   State = 12
	StateSensitive State = 24
	StateShowing   State = 25
	StateVisible   State = 30
)

// StateSet is the bitfield reported for a node.
type StateSet uint64

// Has reports whether s is set.
func (ss StateSet) Has(s State) bool {
	return ss&(1<<s) != 0
}

// With returns a copy of the set with the given states added.
func (ss StateSet) With(states ...State) StateSet {
	for _, s := range states {
		ss |= 1 << s
	}
	return ss
}

// Node is one object in an application's accessibility tree.
//
// Every method is a blocking round trip to the accessibility provider.
// Methods return ErrDead once the object has been destroyed.
type Node interface {
	Role(ctx context.Context) (Role, error)
	Name(ctx context.Context) (string, error)
	Description(ctx context.Context) (string, error)
	Children(ctx context.Context) ([]Node, error)
	States(ctx context.Context) (StateSet, error)
	// Text returns the textual content of text-bearing nodes (entries,
	// labels). Nodes without text return ErrUnsupported.
	Text(ctx context.Context) (string, error)
	// Click performs the node's default activation action.
	Click(ctx context.Context) error
	// Focus gives keyboard focus to the node.
	Focus(ctx context.Context) error
}

// Application is the root node of a registered application.
type Application interface {
	Node
	// PID returns the process id owning the application, or 0 when the
	// provider cannot tell.
	PID(ctx context.Context) (int, error)
}

// Driver is a connection to an accessibility provider.
type Driver interface {
	// Applications lists the applications currently registered.
	Applications(ctx context.Context) ([]Application, error)
	// TypeText types text into whichever widget has keyboard focus.
	TypeText(ctx context.Context, text string) error
	// PressKey sends one key, with modifiers, to the focused widget.
	PressKey(ctx context.Context, key Key) error
	Close() error
}

// Dead reports whether n is gone: either its state cannot be read any more
// or the provider flags it defunct. Errors other than ErrDead count as alive
// so that a transient failure is not mistaken for death.
func Dead(ctx context.Context, n Node) bool {
	ss, err := n.States(ctx)
	if err != nil {
		return errors.Is(err, ErrDead)
	}
	return ss.Has(StateDefunct)
}

// Showing reports whether n is currently rendered on screen.
func Showing(ctx context.Context, n Node) (bool, error) {
	ss, err := n.States(ctx)
	if err != nil {
		return false, err
	}
	return ss.Has(StateShowing), nil
}
