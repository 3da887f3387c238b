package slidecrawler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"testing"

	"github.com/alessio/shellescape"
)

// Process is a launched application process.
type Process interface {
	Pid() int
	// Exited reports whether the process has terminated.
	Exited() bool
	Kill() error
}

// Launcher starts the application under test.
type Launcher interface {
	Launch(ctx context.Context, path string, args, env []string) (Process, error)
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context, path string, args, env []string) (Process, error)

// Launch calls f.
func (f LauncherFunc) Launch(ctx context.Context, path string, args, env []string) (Process, error) {
	return f(ctx, path, args, env)
}

// execLauncher runs the application as a child process.
type execLauncher struct{}

func (execLauncher) Launch(_ context.Context, path string, args, env []string) (Process, error) {
	// The process outlives the call that launched it; the session kills it
	// on cleanup, so it is not tied to a context.
	cmd := exec.Command(path, args...)
	cmd.Env = append(os.Environ(), env...)
	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	cmd.Stdout = &p.output
	cmd.Stderr = &p.output
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launch %s: %w", shellescape.QuoteCommand(append([]string{path}, args...)), err)
	}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	output lockedBuffer
	done   chan struct{}
	err    error
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *execProcess) Kill() error {
	if p.Exited() {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil {
		return err
	}
	<-p.done
	return nil
}

// ExitErr returns the error from waiting on the process: nil while it is
// running or when it exited cleanly.
func (p *execProcess) ExitErr() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Output returns everything the process wrote to stdout and stderr.
func (p *execProcess) Output() string {
	return p.output.String()
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// resolveAppPath determines the application binary from, in order:
// 1. WithAppPath option, SLIDECRAWLER_APP / IMAGINATION, config file
// 2. $PATH lookup of the application name
//
// A missing binary skips the test unless it was configured explicitly.
func resolveAppPath(t testing.TB, configured, name string) string {
	t.Helper()

	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			t.Fatalf("slidecrawler: open: application: %v", err)
		}
		return configured
	}

	found, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("slidecrawler: open: %s not found", name)
	}
	return found
}
