package slidecrawler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/cboone/slidecrawler/a11y"
)

const maxDumpDepth = 64

// DumpTree renders the application's accessibility tree, one node per
// line, indented by depth:
//
//	application "imagination"
//	  frame "Imagination"
//	    menu "Slideshow"
//	      menu item "Open" hidden
//	    label "2" desc="Total number of slides"
func (s *Session) DumpTree() string {
	s.t.Helper()
	s.mustRun("dump-tree")
	dump, err := dumpTree(s.ctx, s.app)
	if err != nil {
		s.fatal("dump-tree", err)
	}
	return dump
}

// MatchSnapshot compares the accessibility tree against the golden file
// testdata/snapshots/<test name>/<name>.txt. Run the test with -update to
// create or update golden files.
func (s *Session) MatchSnapshot(name string) {
	s.t.Helper()
	t, ok := s.t.(*testing.T)
	if !ok {
		s.t.Fatalf("slidecrawler: snapshot: golden files need a *testing.T, got %T", s.t)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/snapshots"),
		goldie.WithNameSuffix(".txt"),
		goldie.WithTestNameForDir(true),
	)
	g.Assert(t, sanitizeName(name), []byte(s.DumpTree()))
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitizeName(name string) string {
	return strings.Trim(unsafeNameChars.ReplaceAllString(name, "_"), "_")
}

func dumpTree(ctx context.Context, root a11y.Node) (string, error) {
	var b strings.Builder
	if err := dumpNode(ctx, &b, root, 0); err != nil {
		return b.String(), err
	}
	return b.String(), nil
}

func dumpNode(ctx context.Context, b *strings.Builder, n a11y.Node, depth int) error {
	line, err := describeNode(ctx, n)
	if err != nil {
		return err
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(line)
	b.WriteByte('\n')

	if depth >= maxDumpDepth {
		return nil
	}
	children, err := n.Children(ctx)
	if err != nil {
		return err
	}
	for _, c := range children {
		err := dumpNode(ctx, b, c, depth+1)
		if errors.Is(err, a11y.ErrDead) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func describeNode(ctx context.Context, n a11y.Node) (string, error) {
	role, err := n.Role(ctx)
	if err != nil {
		return "", err
	}
	name, err := n.Name(ctx)
	if err != nil {
		return "", err
	}
	desc, err := n.Description(ctx)
	if err != nil {
		return "", err
	}
	states, err := n.States(ctx)
	if err != nil {
		return "", err
	}

	line := fmt.Sprintf("%s %q", role, name)
	if desc != "" {
		line += fmt.Sprintf(" desc=%q", desc)
	}
	if role != a11y.RoleApplication && !states.Has(a11y.StateShowing) {
		line += " hidden"
	}
	return line, nil
}
