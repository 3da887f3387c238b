package slidecrawler

import (
	"context"
	"errors"
	"time"

	"github.com/cboone/slidecrawler/a11y"
)

// poll evaluates cond every interval until it holds, returning nil, or
// until timeout elapses, returning a *TimeoutError. The condition is
// evaluated once before the first wait. A condition error wrapping
// a11y.ErrNotFound counts as "not yet"; any other error aborts the wait.
func poll(ctx context.Context, what string, timeout, interval time.Duration, cond func(context.Context) (bool, error)) error {
	deadline := time.Now().Add(timeout)
	var last error
	for {
		ok, err := cond(ctx)
		switch {
		case err == nil && ok:
			return nil
		case err == nil:
		case errors.Is(err, a11y.ErrNotFound):
			last = err
		default:
			return err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return &TimeoutError{What: what, Timeout: timeout, Last: last}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(min(interval, remaining)):
		}
	}
}

// waitSettings resolves per-call wait options against the session
// defaults. Negative values are fatal.
func (s *Session) waitSettings(op string, wopts []WaitOption) (time.Duration, time.Duration) {
	s.t.Helper()

	wo := waitOptions{}
	for _, o := range wopts {
		o(&wo)
	}

	timeout := s.opts.timeout
	if wo.timeout > 0 {
		timeout = wo.timeout
	} else if wo.timeout < 0 {
		s.t.Fatalf("slidecrawler: %s: negative timeout: %v", op, wo.timeout)
	}

	pollInterval := s.opts.pollInterval
	if wo.pollInterval > 0 {
		pollInterval = max(wo.pollInterval, minPollInterval)
	} else if wo.pollInterval < 0 {
		s.t.Fatalf("slidecrawler: %s: negative poll interval: %v", op, wo.pollInterval)
	}
	return timeout, pollInterval
}

// WaitFor polls the application's accessibility tree until the condition
// holds or the timeout expires. On timeout it calls t.Fatal with a
// description of what was expected and the current tree.
func (s *Session) WaitFor(c Condition, wopts ...WaitOption) {
	s.t.Helper()
	if err := s.require("wait-for", Running); err != nil {
		s.t.Fatalf("slidecrawler: %v", err)
	}
	timeout, interval := s.waitSettings("wait-for", wopts)

	desc := "condition"
	err := poll(s.ctx, "condition", timeout, interval, func(ctx context.Context) (bool, error) {
		ok, d, err := c(ctx, s.app)
		desc = d
		return ok, err
	})
	if err == nil {
		return
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		te.What = desc
	}
	s.fatal("wait-for", err)
}

// waitDead waits until n is dead.
func (s *Session) waitDead(what string, n a11y.Node, timeout time.Duration) error {
	return poll(s.ctx, what, timeout, s.opts.pollInterval, func(ctx context.Context) (bool, error) {
		return a11y.Dead(ctx, n), nil
	})
}
