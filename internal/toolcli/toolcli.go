// Package toolcli runs the external command-line tools slidecrawler relies
// on (image compositor, EXIF editor, frame extractor, OCR engine). It is
// internal to the slidecrawler package.
package toolcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/alessio/shellescape"
)

// Runner executes one tool binary.
type Runner struct {
	name string
	path string
	env  []string
}

// New creates a Runner for the tool called name, found at path.
func New(name, path string) *Runner {
	return &Runner{name: name, path: path}
}

// SetEnv sets extra environment variables ("KEY=VALUE") for every
// invocation, on top of the inherited environment.
func (r *Runner) SetEnv(env []string) {
	r.env = env
}

// Name returns the logical tool name.
func (r *Runner) Name() string {
	return r.name
}

// Path returns the path to the tool binary.
func (r *Runner) Path() string {
	return r.path
}

// Command returns the shell-quoted command line for args, for logs.
func (r *Runner) Command(args ...string) string {
	return shellescape.QuoteCommand(append([]string{r.path}, args...))
}

// Run executes the tool with args and returns its stdout. If the tool
// fails, the returned *Error carries its stderr.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.path, args...)
	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &Error{
			Tool:   r.name,
			Args:   append([]string{r.path}, args...),
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.String(), nil
}

// Error represents a tool invocation failure.
type Error struct {
	Tool   string
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s failed: %v\ncommand: %s", e.Tool, e.Err, shellescape.QuoteCommand(e.Args))
	if e.Stderr != "" {
		msg += "\nstderr: " + e.Stderr
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Lookup resolves a tool binary on PATH.
func Lookup(binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%s not found: %w", binary, err)
	}
	return path, nil
}
