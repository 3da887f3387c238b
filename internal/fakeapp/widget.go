package fakeapp

import (
	"context"
	"strings"

	"github.com/cboone/slidecrawler/a11y"
)

// widget is one node of a simulated accessibility tree. All fields are
// guarded by the world's mutex; callbacks run with it held.
type widget struct {
	w        *World
	app      *editor
	role     a11y.Role
	name     string
	desc     string
	text     string
	parent   *widget
	children []*widget
	hidden   bool
	dead     bool
	editable bool
	// selected is set when focus selects all text: the next keystroke
	// replaces it.
	selected bool

	onClick  func()
	onEnter  func()
	onStates func()
}

func (n *widget) add(role a11y.Role, name, desc string) *widget {
	c := &widget{w: n.w, app: n.app, role: role, name: name, desc: desc, parent: n}
	n.children = append(n.children, c)
	return c
}

// showing reports whether n and all its ancestors are shown.
func (n *widget) showing() bool {
	for x := n; x != nil; x = x.parent {
		if x.hidden {
			return false
		}
	}
	return true
}

// within reports whether n is root or one of its descendants.
func (n *widget) within(root *widget) bool {
	for x := n; x != nil; x = x.parent {
		if x == root {
			return true
		}
	}
	return false
}

// ancestor returns the nearest ancestor of n, or n itself, with the role.
func (n *widget) ancestor(role a11y.Role) *widget {
	for x := n; x != nil; x = x.parent {
		if x.role == role {
			return x
		}
	}
	return nil
}

// destroy kills n and its subtree and detaches it from its parent.
func (n *widget) destroy() {
	n.kill()
	if p := n.parent; p != nil {
		for i, c := range p.children {
			if c == n {
				p.children = append(p.children[:i:i], p.children[i+1:]...)
				break
			}
		}
	}
	if f := n.w.focus; f != nil && f.within(n) {
		n.w.focus = nil
	}
}

func (n *widget) kill() {
	n.dead = true
	for _, c := range n.children {
		c.kill()
	}
}

func (n *widget) setChildrenHidden(hidden bool) {
	for _, c := range n.children {
		c.hidden = hidden
	}
}

func (n *widget) typeRune(r rune) {
	if n.selected {
		n.text = ""
		n.selected = false
	}
	n.text += string(r)
}

func (n *widget) Role(context.Context) (a11y.Role, error) {
	n.w.mu.Lock()
	defer n.w.mu.Unlock()
	if n.dead {
		return "", a11y.ErrDead
	}
	return n.role, nil
}

func (n *widget) Name(context.Context) (string, error) {
	n.w.mu.Lock()
	defer n.w.mu.Unlock()
	if n.dead {
		return "", a11y.ErrDead
	}
	return n.name, nil
}

func (n *widget) Description(context.Context) (string, error) {
	n.w.mu.Lock()
	defer n.w.mu.Unlock()
	if n.dead {
		return "", a11y.ErrDead
	}
	return n.desc, nil
}

func (n *widget) Children(context.Context) ([]a11y.Node, error) {
	n.w.mu.Lock()
	defer n.w.mu.Unlock()
	if n.dead {
		return nil, a11y.ErrDead
	}
	out := make([]a11y.Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	return out, nil
}

func (n *widget) States(context.Context) (a11y.StateSet, error) {
	n.w.mu.Lock()
	defer n.w.mu.Unlock()
	if n.dead {
		return 0, a11y.ErrDead
	}
	if n.onStates != nil {
		n.onStates()
	}
	ss := a11y.StateSet(0).With(a11y.StateEnabled, a11y.StateSensitive)
	if n.showing() {
		ss = ss.With(a11y.StateVisible, a11y.StateShowing)
	}
	if n.editable {
		ss = ss.With(a11y.StateEditable)
	}
	if n.w.focus == n {
		ss = ss.With(a11y.StateFocused)
	}
	return ss, nil
}

func (n *widget) Text(context.Context) (string, error) {
	n.w.mu.Lock()
	defer n.w.mu.Unlock()
	if n.dead {
		return "", a11y.ErrDead
	}
	switch n.role {
	case a11y.RoleText, a11y.RoleLabel:
		return n.text, nil
	}
	return "", a11y.ErrUnsupported
}

// Click runs the widget's action. Clicking a widget that is not showing
// does nothing, as with a real toolkit.
func (n *widget) Click(context.Context) error {
	n.w.mu.Lock()
	defer n.w.mu.Unlock()
	if n.dead {
		return a11y.ErrDead
	}
	n.w.clicks = append(n.w.clicks, n.path())
	if !n.showing() || n.onClick == nil {
		return nil
	}
	n.onClick()
	n.app.refresh()
	return nil
}

func (n *widget) Focus(context.Context) error {
	n.w.mu.Lock()
	defer n.w.mu.Unlock()
	if n.dead {
		return a11y.ErrDead
	}
	n.w.focus = n
	if n.editable {
		n.selected = true
	}
	return nil
}

// path names n by the names (or roles) of its ancestors, e.g.
// "Slideshow/Quit".
func (n *widget) path() string {
	var parts []string
	for x := n; x != nil && x.role != a11y.RoleApplication; x = x.parent {
		switch {
		case x.role == a11y.RoleFrame || x.role == a11y.RoleMenuBar || x.role == a11y.RoleToolBar:
			continue
		case x.name != "":
			parts = append(parts, x.name)
		case x.desc != "":
			parts = append(parts, x.desc)
		default:
			parts = append(parts, string(x.role))
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// appNode is the root of an application's tree.
type appNode struct {
	*widget
}

func (a appNode) PID(context.Context) (int, error) {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	if a.dead {
		return 0, a11y.ErrDead
	}
	return a.app.proc.pid, nil
}
