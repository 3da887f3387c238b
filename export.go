package slidecrawler

import (
	"context"
	"errors"
	"strings"

	"github.com/cboone/slidecrawler/a11y"
)

// ExportResult is the outcome of an export: the video path and the status
// text the application reported.
type ExportResult struct {
	Path   string
	Status string
}

// Export renders the slideshow to a fresh video file in the session
// directory and returns it. A failed export fails the test.
func (s *Session) Export() ExportResult {
	s.t.Helper()
	res, err := s.TryExport()
	if err != nil {
		s.t.Fatalf("slidecrawler: export: %v", err)
	}
	return res
}

// TryExport is like Export, but a failure reported by the application is
// returned as an *ExportError carrying the raw status text, for tests that
// expect the export to fail. Any other problem still fails the test.
func (s *Session) TryExport() (ExportResult, error) {
	s.t.Helper()
	s.mustRun("export")
	const op = "export"
	l := s.opts.labels
	out := s.nextPath("export", "vob")

	s.Menu(l.SlideshowMenu, l.Export)
	settings := s.lookup(op, s.app, a11y.ByRole(a11y.RoleDialog).Named(l.ExportSettings))
	entry := s.lookup(op, settings, a11y.ByRole(a11y.RoleText))
	s.focus(op, entry)
	s.typeText(op, out)
	s.click(op, s.lookup(op, settings, a11y.ByRole(a11y.RolePushButton).Named(l.OK)))

	progress := s.lookup(op, s.app, a11y.ByName(l.ExportProgress))
	pause := s.lookup(op, progress, a11y.ByName(l.Pause))
	err := poll(s.ctx, "export to finish", s.opts.exportTimeout, s.opts.exportPoll, func(ctx context.Context) (bool, error) {
		showing, err := a11y.Showing(ctx, pause)
		if errors.Is(err, a11y.ErrDead) {
			return true, nil
		}
		return !showing, err
	})
	if err != nil {
		s.fatal(op, err)
	}

	statusNode := s.lookup(op, progress, a11y.ByDescription(l.ExportStatus))
	status, err := statusNode.Text(s.ctx)
	if errors.Is(err, a11y.ErrUnsupported) {
		status, err = statusNode.Name(s.ctx)
	}
	if err != nil {
		s.fatal(op, err)
	}
	s.click(op, s.lookup(op, progress, a11y.ByRole(a11y.RolePushButton).Named(l.Close)))

	res := ExportResult{Path: out, Status: status}
	if exportFailed(status, l.FailureMarker) {
		s.log.Warn("export failed", "path", out, "status", status)
		return res, &ExportError{Path: out, Status: status}
	}
	s.log.Info("exported", "path", out, "status", status)
	return res, nil
}

// exportFailed classifies a status text: it failed if it contains the
// failure marker, ignoring case.
func exportFailed(status, marker string) bool {
	return strings.Contains(strings.ToLower(status), strings.ToLower(marker))
}
