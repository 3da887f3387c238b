package slidecrawler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/cboone/slidecrawler/a11y"
)

// find polls for a node matching q below root until the session timeout.
func (s *Session) find(root a11y.Node, q a11y.Query) (a11y.Node, error) {
	var found a11y.Node
	err := poll(s.ctx, q.String(), s.opts.timeout, s.opts.pollInterval, func(ctx context.Context) (bool, error) {
		n, err := a11y.Find(ctx, root, q)
		if err != nil {
			return false, err
		}
		found = n
		return true, nil
	})
	return found, err
}

func (s *Session) lookup(op string, root a11y.Node, q a11y.Query) a11y.Node {
	s.t.Helper()
	n, err := s.find(root, q)
	if err != nil {
		s.fatal(op, err)
	}
	return n
}

// lookupButton returns the push button for a control found by q: either
// the control itself or its first push button child.
func (s *Session) lookupButton(op string, root a11y.Node, q a11y.Query) a11y.Node {
	s.t.Helper()
	ctl := s.lookup(op, root, q)
	role, err := ctl.Role(s.ctx)
	if err != nil {
		s.fatal(op, err)
	}
	if role == a11y.RolePushButton {
		return ctl
	}
	return s.lookup(op, ctl, a11y.ByRole(a11y.RolePushButton))
}

// Find waits for a node matching q in the application and returns it.
func (s *Session) Find(q a11y.Query) a11y.Node {
	s.t.Helper()
	s.mustRun("find")
	return s.lookup("find", s.app, q)
}

// FindNow looks for a node matching q once, without waiting.
func (s *Session) FindNow(q a11y.Query) (a11y.Node, bool) {
	s.t.Helper()
	s.mustRun("find")
	return s.findNow("find", q)
}

func (s *Session) findNow(op string, q a11y.Query) (a11y.Node, bool) {
	s.t.Helper()
	n, err := a11y.Find(s.ctx, s.app, q)
	if errors.Is(err, a11y.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.fatal(op, err)
	}
	return n, true
}

func (s *Session) click(op string, n a11y.Node) {
	s.t.Helper()
	if err := n.Click(s.ctx); err != nil {
		s.fatal(op, err)
	}
}

func (s *Session) focus(op string, n a11y.Node) {
	s.t.Helper()
	if err := n.Focus(s.ctx); err != nil {
		s.fatal(op, err)
	}
}

func (s *Session) typeText(op, text string) {
	s.t.Helper()
	if err := s.driver.TypeText(s.ctx, text); err != nil {
		s.fatal(op, err)
	}
}

func (s *Session) press(op string, key a11y.Key) {
	s.t.Helper()
	if err := s.driver.PressKey(s.ctx, key); err != nil {
		s.fatal(op, err)
	}
}

// Type types text into the focused widget.
func (s *Session) Type(text string) {
	s.t.Helper()
	s.mustRun("type")
	s.typeText("type", text)
}

// Press sends one or more keys to the focused widget.
func (s *Session) Press(keys ...a11y.Key) {
	s.t.Helper()
	s.mustRun("press")
	for _, k := range keys {
		s.press("press", k)
	}
}

// Menu clicks the top-level menu, waits for it to populate, then clicks
// the named item in it.
func (s *Session) Menu(top, item string) {
	s.t.Helper()
	s.mustRun("menu")
	op := "menu " + top + " > " + item
	menu := s.lookup(op, s.app, a11y.ByRole(a11y.RoleMenu).Named(top))
	s.click(op, menu)
	time.Sleep(s.opts.settle)
	entry := s.lookup(op, menu, a11y.ByRole(a11y.RoleMenuItem).Named(item).Showing())
	s.click(op, entry)
}

// OpenFile drives an open-file chooser, already showing, to path.
func (s *Session) OpenFile(path string) {
	s.t.Helper()
	s.mustRun("open-file")
	s.chooseFile("open-file", s.abs("open-file", path), s.opts.labels.OpenButton, true)
}

// SaveAs saves the slideshow under a new name. The path must carry the
// document extension; the application appends it to whatever is typed, so
// it is typed without.
func (s *Session) SaveAs(path string) {
	s.t.Helper()
	s.mustRun("save-as")
	l := s.opts.labels
	if filepath.Ext(path) != l.DocumentExt {
		s.t.Fatalf("slidecrawler: %v", invalidf("save-as", "%s does not end in %s", path, l.DocumentExt))
	}
	abs := s.abs("save-as", path)
	s.Menu(l.SlideshowMenu, l.SaveAs)
	s.chooseFile("save-as", strings.TrimSuffix(abs, l.DocumentExt), l.SaveButton, false)
	s.log.Info("saved", "path", abs)
}

// Save saves the slideshow to its current file. The slideshow must have
// been saved before: a file chooser popping up fails the test.
func (s *Session) Save() {
	s.t.Helper()
	s.mustRun("save")
	l := s.opts.labels
	toolbar := s.lookup("save", s.app, a11y.ByRole(a11y.RoleToolBar))
	s.click("save", s.lookupButton("save", toolbar, a11y.ByDescription(l.SaveDescription)))

	time.Sleep(s.opts.settle)
	if _, ok := s.findNow("save", a11y.ByRole(a11y.RoleFileChooser).Showing()); ok {
		s.fatal("save", &DialogError{Dialog: "file chooser", Detail: "save asked for a file name"})
	}
	s.log.Info("saved")
}

// AddSlide imports a picture as a new slide.
func (s *Session) AddSlide(path string) {
	s.t.Helper()
	s.mustRun("add-slide")
	l := s.opts.labels
	s.Menu(l.SlideshowMenu, l.ImportPictures)
	s.chooseFile("add-slide", s.abs("add-slide", path), l.OpenButton, true)
}

// OpenSlideshow replaces the current slideshow with a saved one.
func (s *Session) OpenSlideshow(path string) {
	s.t.Helper()
	s.mustRun("open-slideshow")
	l := s.opts.labels
	s.Menu(l.SlideshowMenu, l.Open)
	s.chooseFile("open-slideshow", s.abs("open-slideshow", path), l.OpenButton, true)
}

// ImportSlideshow appends the slides of a saved slideshow.
func (s *Session) ImportSlideshow(path string) {
	s.t.Helper()
	s.mustRun("import-slideshow")
	l := s.opts.labels
	s.Menu(l.SlideshowMenu, l.ImportSlideshow)
	s.chooseFile("import-slideshow", s.abs("import-slideshow", path), l.OpenButton, true)
}

// chooseFile types path into the showing file chooser and confirms it.
// With locate, the location entry is first revealed with Ctrl+L; save
// choosers already focus their name entry.
func (s *Session) chooseFile(op, path, confirm string, locate bool) {
	s.t.Helper()
	l := s.opts.labels
	fc := s.lookup(op, s.app, a11y.ByRole(a11y.RoleFileChooser).Showing())
	if locate {
		anchor := s.lookup(op, fc, a11y.ByDescription(l.LocationAnchor))
		s.focus(op, anchor)
		s.press(op, a11y.Ctrl('l'))
		entry := s.lookup(op, fc, a11y.ByRole(a11y.RoleText).Showing())
		s.focus(op, entry)
	}
	button := s.lookup(op, fc, a11y.ByRole(a11y.RolePushButton).Named(confirm))
	s.typeText(op, path)
	s.confirm(op, button, path)
}

// confirm clicks a dialog's confirming button and waits for the dialog to
// go away. Typing can leave focus in an entry, in which case the first
// click only takes focus and a second one is needed.
func (s *Session) confirm(op string, button a11y.Node, path string) {
	s.t.Helper()
	grace := 5 * s.opts.settle
	s.click(op, button)
	if s.waitDead("file chooser to close", button, grace) == nil {
		return
	}
	s.log.Debug("confirm button still alive, clicking again", "op", op, "path", path)
	if err := button.Click(s.ctx); err != nil && !errors.Is(err, a11y.ErrDead) {
		s.fatal(op, err)
	}
	if err := s.waitDead("file chooser to close", button, grace); err != nil {
		s.fatal(op, &DialogError{Dialog: "file chooser", Detail: "still open after confirming " + path})
	}
}
