package slidecrawler

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error kinds. Every error the harness reports wraps one of these, so tests
// can classify failures with errors.Is.
var (
	ErrSyncTimeout      = errors.New("synchronization timeout")
	ErrUnexpectedDialog = errors.New("unexpected dialog state")
	ErrExportFailed     = errors.New("export failed")
	ErrMismatch         = errors.New("verification mismatch")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrPrecondition     = errors.New("precondition failed")
)

// TimeoutError reports that a bounded wait for a UI or process state did not
// resolve in time.
type TimeoutError struct {
	What    string
	Timeout time.Duration
	// Last is the last error the polled condition reported, if any.
	Last error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %v waiting for %s", e.Timeout, e.What)
	if e.Last != nil {
		msg += " (last: " + e.Last.Error() + ")"
	}
	return msg
}

func (e *TimeoutError) Unwrap() []error {
	if e.Last == nil {
		return []error{ErrSyncTimeout}
	}
	return []error{ErrSyncTimeout, e.Last}
}

// DialogError reports a dialog that appeared when none was expected, or that
// failed to appear (or to go away) when it should have.
type DialogError struct {
	Dialog   string
	Expected bool
	Detail   string
}

func (e *DialogError) Error() string {
	var msg string
	if e.Expected {
		msg = fmt.Sprintf("expected %s did not appear", e.Dialog)
	} else {
		msg = fmt.Sprintf("unexpected %s", e.Dialog)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *DialogError) Unwrap() error { return ErrUnexpectedDialog }

// ExportError reports that the application's export finished with a
// failure status. Status is the raw status text shown by the application.
type ExportError struct {
	Path   string
	Status string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export to %s failed: %s", e.Path, strings.TrimSpace(e.Status))
}

func (e *ExportError) Unwrap() error { return ErrExportFailed }

// MismatchError reports recognised text that differs from the expected label.
type MismatchError struct {
	Image string
	Want  string
	Got   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("text in %s: got %q, want %q", e.Image, e.Got, e.Want)
}

func (e *MismatchError) Unwrap() error { return ErrMismatch }

// ArgumentError reports a malformed request to an operation.
type ArgumentError struct {
	Op  string
	Msg string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

func invalidf(op, format string, args ...any) error {
	return &ArgumentError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// StateError reports an operation invoked while the session is in a state
// outside the operation's valid set.
type StateError struct {
	Op      string
	State   State
	Allowed []State
}

func (e *StateError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = s.String()
	}
	return fmt.Sprintf("%s: session is %s, want %s", e.Op, e.State, strings.Join(allowed, " or "))
}

func (e *StateError) Unwrap() error { return ErrPrecondition }
