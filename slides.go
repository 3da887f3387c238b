package slidecrawler

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/cboone/slidecrawler/a11y"
)

// NSlides returns the number of slides, as shown by the slide count label.
func (s *Session) NSlides() int {
	s.t.Helper()
	s.mustRun("n-slides")
	label := s.lookup("n-slides", s.app, a11y.ByDescription(s.opts.labels.SlideCount))
	name, err := label.Name(s.ctx)
	if err != nil {
		s.fatal("n-slides", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(name))
	if err != nil {
		s.fatal("n-slides", err)
	}
	s.log.Debug("slide count", "n", n)
	return n
}

// ChooseSlide selects the slide at the 1-based index.
func (s *Session) ChooseSlide(index int) {
	s.t.Helper()
	s.mustRun("choose-slide")
	if index < 1 {
		s.t.Fatalf("slidecrawler: %v", invalidf("choose-slide", "slide index %d is not 1-based", index))
	}
	entry := s.lookup("choose-slide", s.app, a11y.ByDescription(s.opts.labels.CurrentSlide))
	s.focus("choose-slide", entry)
	s.typeText("choose-slide", strconv.Itoa(index))
	s.press("choose-slide", a11y.Enter)
}

// Rotate rotates the selected slide by angle degrees counter-clockwise. The
// angle must be a multiple of 90. Three quarter-turns are one clockwise
// rotation, since the menu offers both directions.
func (s *Session) Rotate(angle int) {
	s.t.Helper()
	s.mustRun("rotate")
	turns, err := quarterTurns(angle)
	if err != nil {
		s.t.Fatalf("slidecrawler: %v", err)
	}
	l := s.opts.labels
	if turns == 3 {
		s.Menu(l.SlideMenu, l.RotateClockwise)
		return
	}
	for range turns {
		s.Menu(l.SlideMenu, l.RotateCounterClockwise)
	}
}

// quarterTurns normalises an angle to counter-clockwise quarter-turns in
// [0, 3].
func quarterTurns(angle int) (int, error) {
	if angle%90 != 0 {
		return 0, invalidf("rotate", "angle %d is not a multiple of 90", angle)
	}
	return ((angle/90)%4 + 4) % 4, nil
}

// Flip mirrors the selected slides horizontally.
func (s *Session) Flip() {
	s.t.Helper()
	s.mustRun("flip")
	s.click("flip", s.lookupButton("flip", s.app, a11y.ByDescription(s.opts.labels.FlipDescription)))
}

// SetTransitionType sets the transition into the selected slide, picking
// category then name from the transition type menu.
func (s *Session) SetTransitionType(category, name string) {
	s.t.Helper()
	s.mustRun("set-transition")
	l := s.opts.labels
	op := "set-transition " + category + " > " + name
	settings := s.lookup(op, s.app, a11y.ByName(l.SlideSettings))
	combo := s.lookup(op, settings, a11y.ByDescription(l.TransitionType))
	s.click(op, combo)
	time.Sleep(s.opts.settle)
	menu := s.lookup(op, combo, a11y.ByRole(a11y.RoleMenu).Named(category).Showing())
	s.click(op, menu)
	time.Sleep(s.opts.settle)
	item := s.lookup(op, menu, a11y.ByRole(a11y.RoleMenuItem).Named(name).Showing())
	s.click(op, item)
}

// Modified reports whether the window title shows unsaved changes: either
// the title of a never-saved slideshow or the modified marker.
func (s *Session) Modified() bool {
	s.t.Helper()
	l := s.opts.labels
	title := s.Title()
	return strings.HasPrefix(title, l.PristineTitle) || strings.HasPrefix(title, l.ModifiedMarker)
}

// AssertShouldSave checks that the slideshow has unsaved changes: the title
// says so, and quitting asks for confirmation. The confirmation is
// cancelled and the application must still be running afterwards.
func (s *Session) AssertShouldSave() {
	s.t.Helper()
	s.mustRun("assert-should-save")
	const op = "assert-should-save"
	l := s.opts.labels

	if !s.Modified() {
		s.t.Fatalf("slidecrawler: %s: window title %q shows no unsaved changes", op, s.Title())
	}

	s.Menu(l.SlideshowMenu, l.Quit)
	var alert a11y.Node
	err := poll(s.ctx, "unsaved-changes alert", s.opts.quitTimeout, s.opts.pollInterval, func(ctx context.Context) (bool, error) {
		if s.dead() {
			return false, &DialogError{Dialog: "unsaved-changes alert", Expected: true, Detail: "the application quit without asking"}
		}
		n, err := a11y.Find(ctx, s.app, a11y.ByRole(a11y.RoleAlert).Showing())
		if err != nil {
			return false, err
		}
		alert = n
		return true, nil
	})
	if err != nil {
		var de *DialogError
		if !errors.As(err, &de) {
			err = &DialogError{Dialog: "unsaved-changes alert", Expected: true, Detail: err.Error()}
		}
		s.fatal(op, err)
	}

	cancel := s.lookup(op, alert, a11y.ByRole(a11y.RolePushButton).Named(l.Cancel))
	s.click(op, cancel)
	if err := s.waitDead("unsaved-changes alert to close", alert, s.opts.timeout); err != nil {
		s.fatal(op, err)
	}
	if !s.Alive() {
		s.t.Fatalf("slidecrawler: %s: application exited after cancelling quit", op)
	}
}
