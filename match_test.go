package slidecrawler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cboone/slidecrawler/a11y"
	"github.com/cboone/slidecrawler/internal/fakeapp"
)

// fakeApp launches a simulated editor and returns its accessibility root.
func fakeApp(t *testing.T) (*fakeapp.World, a11y.Application) {
	t.Helper()
	w := fakeapp.New(fakeapp.Options{})
	t.Cleanup(func() { _ = w.Close() })
	if _, err := w.Launch(nil); err != nil {
		t.Fatalf("launch: %v", err)
	}
	apps, err := w.Applications(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	return w, apps[0]
}

func TestConditions(t *testing.T) {
	_, app := fakeApp(t)
	ctx := context.Background()

	quit := a11y.ByRole(a11y.RoleMenuItem).Named("Quit")
	tests := []struct {
		name string
		cond Condition
		ok   bool
		desc string
	}{
		{"present", Present(quit), true, `role="menu item" name="Quit" to be present`},
		{"not showing", Showing(quit), false, `role="menu item" name="Quit" to be showing`},
		{"absent", Absent(a11y.ByRole(a11y.RoleAlert)), true, `role="alert" to be absent`},
		{"title", TitlePrefix("Imag"), true, `window title to start with "Imag"`},
		{"wrong title", TitlePrefix("x"), false, `window title to start with "x" (actual: "Imagination")`},
		{"not", Not(Showing(quit)), true, `NOT(role="menu item" name="Quit" to be showing)`},
		{
			"all stops at first failure",
			All(Present(quit), Showing(quit), Absent(quit)),
			false,
			`all of: role="menu item" name="Quit" to be present, role="menu item" name="Quit" to be showing`,
		},
		{
			"any stops at first success",
			Any(Showing(quit), Present(quit), Absent(quit)),
			true,
			`any of: role="menu item" name="Quit" to be showing, role="menu item" name="Quit" to be present`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, desc, err := tt.cond(ctx, app)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.desc, desc)
		})
	}
}

func TestConditionOnDeadApplication(t *testing.T) {
	w, app := fakeApp(t)
	require.NoError(t, w.Close())

	_, _, err := Present(a11y.ByRole(a11y.RoleFrame))(context.Background(), app)
	assert.True(t, errors.Is(err, a11y.ErrDead), "got %v", err)
}

func TestFindApplication(t *testing.T) {
	w, app := fakeApp(t)
	ctx := context.Background()
	pid, err := app.PID(ctx)
	require.NoError(t, err)

	found, err := findApplication(ctx, w, "imagination", pid, nil)
	require.NoError(t, err)
	assert.Equal(t, app, found)

	// A pid the launcher does not know is accepted when it is new.
	found, err = findApplication(ctx, w, "imagination", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, app, found)

	// ... but not when it was registered before the launch.
	_, err = findApplication(ctx, w, "imagination", 1, map[int]bool{pid: true})
	assert.ErrorIs(t, err, a11y.ErrNotFound)

	_, err = findApplication(ctx, w, "gimp", pid, nil)
	assert.ErrorIs(t, err, a11y.ErrNotFound)
}
