// Package fakeapp simulates the slideshow editor behind an accessibility
// driver, so the harness can be tested without a display, an accessibility
// bus or the real application.
//
// A World is both the a11y.Driver and the process launcher: every Launch
// registers a new editor instance whose widget tree mirrors the real
// application's menus, toolbar, slide settings, file choosers and dialogs.
// Documents are written in the editor's own format under the paths typed
// into its file choosers. Exports are fakemedia videos.
package fakeapp

import (
	"context"
	"errors"
	"sync"

	"github.com/cboone/slidecrawler/a11y"
)

// Options tune the simulation.
type Options struct {
	// Name is the accessible application name. Defaults to "imagination".
	Name string
	// StickyConfirm makes the first click on a file chooser's confirm
	// button only take focus, as when typing left focus in the entry.
	StickyConfirm bool
	// ExportPolls is how many state reads the export progress indicator
	// stays showing for.
	ExportPolls int
}

// World is a simulated desktop running any number of editor instances.
type World struct {
	mu      sync.Mutex
	opts    Options
	editors []*editor
	focus   *widget
	nextPID int
	clicks  []string
	closed  bool
}

// ErrClosed is returned by a World after Close.
var ErrClosed = errors.New("fakeapp: world closed")

// New creates an empty world.
func New(opts Options) *World {
	if opts.Name == "" {
		opts.Name = "imagination"
	}
	return &World{opts: opts, nextPID: 4000}
}

// Launch starts an editor. A first argument names a document to open.
func (w *World) Launch(args []string) (*Process, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}
	w.nextPID++
	p := &Process{w: w, pid: w.nextPID}
	e := newEditor(w, p)
	p.editor = e
	if len(args) > 0 {
		e.openDocument(args[0])
	}
	e.refresh()
	w.editors = append(w.editors, e)
	return p, nil
}

// Applications lists the running editors.
func (w *World) Applications(context.Context) ([]a11y.Application, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}
	apps := make([]a11y.Application, 0, len(w.editors))
	for _, e := range w.editors {
		apps = append(apps, appNode{e.root})
	}
	return apps, nil
}

// TypeText types into the focused widget. Keystrokes reaching a widget
// that does not accept text are lost.
func (w *World) TypeText(_ context.Context, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	for _, r := range text {
		if r == '\n' {
			w.pressEnter()
			continue
		}
		if f := w.focus; f != nil && !f.dead && f.editable {
			f.typeRune(r)
		}
	}
	return nil
}

// PressKey sends a key to the focused widget. Ctrl+L inside a file chooser
// reveals and focuses its location entry; Enter activates the focused
// widget; Escape closes open menus.
func (w *World) PressKey(_ context.Context, key a11y.Key) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	f := w.focus
	if f == nil || f.dead {
		return nil
	}
	switch key {
	case a11y.Ctrl('l'):
		if fc := f.ancestor(a11y.RoleFileChooser); fc != nil {
			for _, c := range fc.children {
				if c.role == a11y.RoleText {
					c.hidden = false
					c.selected = true
					w.focus = c
				}
			}
		}
	case a11y.Enter:
		w.pressEnter()
	case a11y.Escape:
		f.app.closeMenus()
	}
	return nil
}

func (w *World) pressEnter() {
	f := w.focus
	if f == nil || f.dead || f.onEnter == nil {
		return
	}
	f.onEnter()
	f.app.refresh()
}

// Close shuts the world down. Running editors are killed.
func (w *World) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.editors) > 0 {
		w.editors[0].exit()
	}
	w.closed = true
	return nil
}

// Clicks returns the path of every widget clicked so far, such as
// "Slide/Rotate clockwise", oldest first.
func (w *World) Clicks() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.clicks...)
}

// Process is a running editor instance.
type Process struct {
	w      *World
	pid    int
	editor *editor
	exited bool
}

// Pid returns the simulated process id.
func (p *Process) Pid() int {
	return p.pid
}

// Exited reports whether the editor has quit or been killed.
func (p *Process) Exited() bool {
	p.w.mu.Lock()
	defer p.w.mu.Unlock()
	return p.exited
}

// Kill terminates the editor without asking.
func (p *Process) Kill() error {
	p.w.mu.Lock()
	defer p.w.mu.Unlock()
	if !p.exited {
		p.editor.exit()
	}
	return nil
}
