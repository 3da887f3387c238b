package slidecrawler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cboone/slidecrawler/a11y"
)

// A Condition reports whether the application's accessibility tree
// satisfies a condition. The string return is a human-readable
// description for error messages. A non-nil error aborts the wait, except
// for errors wrapping a11y.ErrNotFound, which count as "not yet".
type Condition func(ctx context.Context, app a11y.Node) (ok bool, description string, err error)

// Present matches when a node matching q exists in the tree.
func Present(q a11y.Query) Condition {
	return func(ctx context.Context, app a11y.Node) (bool, string, error) {
		desc := q.String() + " to be present"
		_, err := a11y.Find(ctx, app, q)
		if errors.Is(err, a11y.ErrNotFound) {
			return false, desc, nil
		}
		return err == nil, desc, err
	}
}

// Showing matches when a node matching q exists and is showing.
func Showing(q a11y.Query) Condition {
	return func(ctx context.Context, app a11y.Node) (bool, string, error) {
		ok, _, err := Present(q.Showing())(ctx, app)
		return ok, q.String() + " to be showing", err
	}
}

// Absent matches when no node matching q exists in the tree.
func Absent(q a11y.Query) Condition {
	return func(ctx context.Context, app a11y.Node) (bool, string, error) {
		ok, _, err := Present(q)(ctx, app)
		return !ok, q.String() + " to be absent", err
	}
}

// TitlePrefix matches when the main window title starts with prefix.
func TitlePrefix(prefix string) Condition {
	return func(ctx context.Context, app a11y.Node) (bool, string, error) {
		desc := fmt.Sprintf("window title to start with %q", prefix)
		title, err := windowTitle(ctx, app)
		if err != nil {
			return false, desc, err
		}
		if strings.HasPrefix(title, prefix) {
			return true, desc, nil
		}
		return false, desc + fmt.Sprintf(" (actual: %q)", title), nil
	}
}

// Not inverts a condition.
func Not(c Condition) Condition {
	return func(ctx context.Context, app a11y.Node) (bool, string, error) {
		ok, desc, err := c(ctx, app)
		return !ok, "NOT(" + desc + ")", err
	}
}

// All matches when every provided condition matches.
func All(conds ...Condition) Condition {
	return func(ctx context.Context, app a11y.Node) (bool, string, error) {
		descs := make([]string, 0, len(conds))
		for _, c := range conds {
			ok, desc, err := c(ctx, app)
			descs = append(descs, desc)
			if err != nil || !ok {
				return false, "all of: " + strings.Join(descs, ", "), err
			}
		}
		return true, "all of: " + strings.Join(descs, ", "), nil
	}
}

// Any matches when at least one provided condition matches.
func Any(conds ...Condition) Condition {
	return func(ctx context.Context, app a11y.Node) (bool, string, error) {
		descs := make([]string, 0, len(conds))
		for _, c := range conds {
			ok, desc, err := c(ctx, app)
			descs = append(descs, desc)
			if err != nil {
				return false, "any of: " + strings.Join(descs, ", "), err
			}
			if ok {
				return true, "any of: " + strings.Join(descs, ", "), nil
			}
		}
		return false, "any of: " + strings.Join(descs, ", "), nil
	}
}

// windowTitle returns the name of the application's main frame.
func windowTitle(ctx context.Context, app a11y.Node) (string, error) {
	frame, err := a11y.Find(ctx, app, a11y.ByRole(a11y.RoleFrame))
	if err != nil {
		return "", err
	}
	return frame.Name(ctx)
}
