package slidecrawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alessio/shellescape"
	"github.com/google/uuid"

	"github.com/cboone/slidecrawler/a11y"
	"github.com/cboone/slidecrawler/internal/atspi"
	"github.com/cboone/slidecrawler/internal/toolcli"
)

// Session drives at most one instance of the slideshow editor at a time
// and owns a temporary directory for fixtures and exports. It is created
// with Open and cleaned up automatically via t.Cleanup.
//
// A Session is not safe for concurrent use; independent sessions share
// nothing.
type Session struct {
	t        testing.TB
	ctx      context.Context
	opts     options
	log      *slog.Logger
	driver   a11y.Driver
	ownDrv   bool
	launcher Launcher
	tools    map[Tool]*toolcli.Runner
	dir      string
	seq      int

	state State
	app   a11y.Application
	proc  Process
	procs []Process
}

// Open creates a session. Options are resolved in order: opts, the
// environment, the config file, then defaults. No application is started
// until Start.
func Open(t testing.TB, opts ...Option) *Session {
	t.Helper()

	o, err := resolveOptions(opts, os.Getenv)
	if err != nil {
		t.Fatalf("slidecrawler: open: %v", err)
	}

	logger := o.logger
	if logger == nil {
		logger = newTestLogger(t, os.Getenv(envLog))
	}
	launcher := o.launcher
	if launcher == nil {
		launcher = execLauncher{}
	}

	s := &Session{
		t:        t,
		ctx:      t.Context(),
		opts:     o,
		log:      logger,
		driver:   o.driver,
		launcher: launcher,
		tools:    make(map[Tool]*toolcli.Runner),
		dir:      t.TempDir(),
	}

	// Registered after TempDir, so it runs before the directory is removed.
	t.Cleanup(s.cleanup)
	return s
}

func (s *Session) cleanup() {
	for _, p := range s.procs {
		if !p.Exited() {
			if err := p.Kill(); err != nil {
				s.log.Warn("kill failed", "pid", p.Pid(), "err", err)
			}
		}
	}
	if s.ownDrv && s.driver != nil {
		_ = s.driver.Close()
	}
}

// Dir returns the session's temporary directory. Every fixture and export
// lives under it and is removed when the test ends.
func (s *Session) Dir() string {
	return s.dir
}

// Labels returns the accessible names the session looks for.
func (s *Session) Labels() Labels {
	return *s.opts.labels
}

// Start launches the application, optionally opening a document, and waits
// for it to register with the accessibility provider.
func (s *Session) Start(doc ...string) {
	s.t.Helper()
	if err := s.require("start", Unstarted, Closed); err != nil {
		s.t.Fatalf("slidecrawler: %v", err)
	}
	if len(doc) > 1 {
		s.t.Fatalf("slidecrawler: %v", invalidf("start", "at most one document, got %d", len(doc)))
	}

	driver := s.ensureDriver()
	path := s.appPath()
	var args []string
	if len(doc) == 1 {
		args = []string{s.abs("start", doc[0])}
	}

	// Applications already registered are never the one being launched.
	before := make(map[int]bool)
	if apps, err := driver.Applications(s.ctx); err == nil {
		for _, a := range apps {
			if pid, err := a.PID(s.ctx); err == nil && pid != 0 {
				before[pid] = true
			}
		}
	}

	env := append([]string{"LC_ALL=C"}, s.opts.env...)
	s.log.Info("launching", "cmd", shellescape.QuoteCommand(append([]string{path}, args...)))
	proc, err := s.launcher.Launch(s.ctx, path, args, env)
	if err != nil {
		s.t.Fatalf("slidecrawler: start: %v", err)
	}
	s.procs = append(s.procs, proc)

	var app a11y.Application
	what := fmt.Sprintf("%s to register", s.opts.appName)
	err = poll(s.ctx, what, s.opts.startTimeout, s.opts.pollInterval, func(ctx context.Context) (bool, error) {
		if proc.Exited() {
			return false, fmt.Errorf("%s exited before registering%s", s.opts.appName, processOutput(proc))
		}
		a, err := findApplication(ctx, driver, s.opts.appName, proc.Pid(), before)
		if err != nil {
			return false, err
		}
		app = a
		return true, nil
	})
	if err != nil {
		_ = proc.Kill()
		s.t.Fatalf("slidecrawler: start: %v", err)
	}

	s.app = app
	s.proc = proc
	s.transition(Running)
	s.log.Debug("registered", "app", s.opts.appName, "pid", proc.Pid())
}

// findApplication returns the registered application called name that
// belongs to the launched process. Providers may report the pid of a
// wrapper's child, so any pid not registered before launch is accepted.
func findApplication(ctx context.Context, d a11y.Driver, name string, pid int, before map[int]bool) (a11y.Application, error) {
	apps, err := d.Applications(ctx)
	if err != nil {
		return nil, err
	}
	var candidate a11y.Application
	for _, a := range apps {
		n, err := a.Name(ctx)
		if err != nil || n != name {
			continue
		}
		p, err := a.PID(ctx)
		if err != nil {
			continue
		}
		if p == pid {
			return a, nil
		}
		if p == 0 || !before[p] {
			candidate = a
		}
	}
	if candidate != nil {
		return candidate, nil
	}
	return nil, fmt.Errorf("%w: application %q", a11y.ErrNotFound, name)
}

func processOutput(p Process) string {
	ep, ok := p.(*execProcess)
	if !ok {
		return ""
	}
	var b strings.Builder
	if err := ep.ExitErr(); err != nil {
		fmt.Fprintf(&b, "\n    %v", err)
	}
	if out := strings.TrimSpace(ep.Output()); out != "" {
		b.WriteString("\n    output:\n" + indent(out, "    "))
	}
	return b.String()
}

// ensureDriver connects to the accessibility bus on first use. An
// unreachable bus skips the test.
func (s *Session) ensureDriver() a11y.Driver {
	s.t.Helper()
	if s.driver != nil {
		return s.driver
	}
	d, err := atspi.Connect(s.ctx)
	if err != nil {
		s.t.Skipf("slidecrawler: start: accessibility bus unavailable: %v", err)
	}
	s.driver = d
	s.ownDrv = true
	return d
}

// appPath resolves the application binary. With a custom launcher the
// path is passed through unchecked, defaulting to the application name.
func (s *Session) appPath() string {
	s.t.Helper()
	if _, ok := s.launcher.(execLauncher); !ok {
		if s.opts.appPath != "" {
			return s.opts.appPath
		}
		return s.opts.appName
	}
	return resolveAppPath(s.t, s.opts.appPath, s.opts.appName)
}

// Quit invokes the application's quit menu item and waits for the
// application to die. A confirmation alert fails the test: the
// application had unsaved changes.
func (s *Session) Quit() {
	s.t.Helper()
	s.mustRun("quit")
	l := s.opts.labels
	s.Menu(l.SlideshowMenu, l.Quit)

	alert := a11y.ByRole(a11y.RoleAlert).Showing()
	err := poll(s.ctx, s.opts.appName+" to exit", s.opts.quitTimeout, s.opts.pollInterval, func(ctx context.Context) (bool, error) {
		if s.dead() {
			return true, nil
		}
		if _, err := a11y.Find(ctx, s.app, alert); err == nil {
			return false, &DialogError{Dialog: "unsaved-changes alert", Detail: "quit asked for confirmation"}
		}
		return false, nil
	})
	if err != nil {
		s.fatal("quit", err)
	}
	s.closed()
	s.log.Info("quit", "app", s.opts.appName)
}

// Alive reports whether the application is running and reachable. An
// application found dead moves the session to Closed.
func (s *Session) Alive() bool {
	if s.state != Running {
		return false
	}
	if s.dead() {
		s.closed()
		return false
	}
	return true
}

// Title returns the main window title.
func (s *Session) Title() string {
	s.t.Helper()
	s.mustRun("title")
	title, err := windowTitle(s.ctx, s.app)
	if err != nil {
		s.fatal("title", err)
	}
	return title
}

// App returns the accessibility root of the running application, for
// queries the session has no shortcut for.
func (s *Session) App() a11y.Application {
	s.t.Helper()
	s.mustRun("app")
	return s.app
}

// Driver returns the accessibility driver, connecting on first use.
func (s *Session) Driver() a11y.Driver {
	s.t.Helper()
	return s.ensureDriver()
}

func (s *Session) dead() bool {
	return s.proc.Exited() || a11y.Dead(s.ctx, s.app)
}

func (s *Session) closed() {
	s.transition(Closed)
	s.app = nil
	s.proc = nil
}

func (s *Session) mustRun(op string) {
	s.t.Helper()
	if err := s.require(op, Running); err != nil {
		s.t.Fatalf("slidecrawler: %v", err)
	}
}

// fatal fails the test with err. When the application died underneath the
// operation the session moves to Closed; otherwise the current
// accessibility tree is attached.
func (s *Session) fatal(op string, err error) {
	s.t.Helper()
	if s.state == Running && s.dead() {
		out := processOutput(s.proc)
		s.closed()
		s.t.Fatalf("slidecrawler: %s: application exited unexpectedly: %v%s", op, err, out)
	}
	s.t.Fatalf("slidecrawler: %s: %v\n%s", op, err, s.diagnostics())
}

func (s *Session) diagnostics() string {
	if s.state != Running {
		return "    (no application running)"
	}
	dump, err := dumpTree(s.ctx, s.app)
	if err != nil && !errors.Is(err, context.Canceled) {
		return "    accessibility tree unavailable: " + err.Error()
	}
	return "    accessibility tree:\n" + indent(dump, "    ")
}

// nextPath returns a fresh path in the session directory. The sequence
// number orders artifacts; the random suffix keeps names unique even
// across sessions sharing a directory.
func (s *Session) nextPath(kind, ext string) string {
	s.seq++
	name := fmt.Sprintf("%s-%d-%s", kind, s.seq, uuid.NewString())
	if ext != "" {
		name += "." + ext
	}
	return filepath.Join(s.dir, name)
}

func (s *Session) abs(op, path string) string {
	s.t.Helper()
	abs, err := filepath.Abs(path)
	if err != nil {
		s.t.Fatalf("slidecrawler: %s: %v", op, err)
	}
	return abs
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
