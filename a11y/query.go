package a11y

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// maxDepth bounds tree walks; real widget trees are far shallower.
const maxDepth = 64

// Query selects nodes by role, accessible name and accessible description.
// Empty fields match anything.
type Query struct {
	Role        Role
	Name        string
	Description string
	// Direct restricts the search to the immediate children of the root.
	Direct bool
	// ShowingOnly skips nodes that are not currently showing.
	ShowingOnly bool
}

// ByRole returns a query matching nodes with the given role.
func ByRole(r Role) Query { return Query{Role: r} }

// ByName returns a query matching nodes with the given accessible name.
func ByName(name string) Query { return Query{Name: name} }

// ByDescription returns a query matching nodes with the given accessible
// description.
func ByDescription(desc string) Query { return Query{Description: desc} }

// Named narrows q to nodes with the given accessible name.
func (q Query) Named(name string) Query {
	q.Name = name
	return q
}

// Showing narrows q to showing nodes.
func (q Query) Showing() Query {
	q.ShowingOnly = true
	return q
}

func (q Query) String() string {
	var parts []string
	if q.Role != "" {
		parts = append(parts, fmt.Sprintf("role=%q", string(q.Role)))
	}
	if q.Name != "" {
		parts = append(parts, fmt.Sprintf("name=%q", q.Name))
	}
	if q.Description != "" {
		parts = append(parts, fmt.Sprintf("description=%q", q.Description))
	}
	if q.ShowingOnly {
		parts = append(parts, "showing")
	}
	if len(parts) == 0 {
		return "any node"
	}
	return strings.Join(parts, " ")
}

// Match reports whether n satisfies q.
func (q Query) Match(ctx context.Context, n Node) (bool, error) {
	if q.Role != "" {
		r, err := n.Role(ctx)
		if err != nil {
			return false, err
		}
		if r != q.Role {
			return false, nil
		}
	}
	if q.Name != "" {
		name, err := n.Name(ctx)
		if err != nil {
			return false, err
		}
		if name != q.Name {
			return false, nil
		}
	}
	if q.Description != "" {
		desc, err := n.Description(ctx)
		if err != nil {
			return false, err
		}
		if desc != q.Description {
			return false, nil
		}
	}
	if q.ShowingOnly {
		return Showing(ctx, n)
	}
	return true, nil
}

// Find returns the first descendant of root (depth-first, pre-order) that
// matches q. The root itself is never returned. It returns an error wrapping
// ErrNotFound if nothing matches, or ErrDead if root is gone.
//
// Descendants that die while the tree is being walked are skipped: the tree
// is live and may be rearranged under the walk.
func Find(ctx context.Context, root Node, q Query) (Node, error) {
	var found Node
	err := walk(ctx, root, q.Direct, func(n Node) (bool, error) {
		ok, err := q.Match(ctx, n)
		if err != nil || !ok {
			return false, err
		}
		found = n
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, q)
	}
	return found, nil
}

// FindAll returns every descendant of root matching q, in depth-first
// pre-order.
func FindAll(ctx context.Context, root Node, q Query) ([]Node, error) {
	var all []Node
	err := walk(ctx, root, q.Direct, func(n Node) (bool, error) {
		ok, err := q.Match(ctx, n)
		if err != nil {
			return false, err
		}
		if ok {
			all = append(all, n)
		}
		return false, nil
	})
	return all, err
}

// walk visits the descendants of root until visit returns stop=true.
func walk(ctx context.Context, root Node, direct bool, visit func(Node) (bool, error)) error {
	children, err := root.Children(ctx)
	if err != nil {
		return err
	}
	_, err = walkChildren(ctx, children, 1, direct, visit)
	return err
}

func walkChildren(ctx context.Context, children []Node, depth int, direct bool, visit func(Node) (bool, error)) (bool, error) {
	for _, c := range children {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		stop, err := visit(c)
		if errors.Is(err, ErrDead) {
			continue
		}
		if err != nil {
			return false, err
		}
		if stop {
			return true, nil
		}
		if direct || depth >= maxDepth {
			continue
		}
		grand, err := c.Children(ctx)
		if errors.Is(err, ErrDead) {
			continue
		}
		if err != nil {
			return false, err
		}
		stop, err = walkChildren(ctx, grand, depth+1, direct, visit)
		if err != nil || stop {
			return stop, err
		}
	}
	return false, nil
}
