package fakeapp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cboone/slidecrawler/a11y"
	"github.com/cboone/slidecrawler/internal/fakemedia"
)

var ctx = context.Background()

func launch(t *testing.T, opts Options, args ...string) (*World, *Process, a11y.Application) {
	t.Helper()
	w := New(opts)
	t.Cleanup(func() { _ = w.Close() })
	p, err := w.Launch(args)
	require.NoError(t, err)
	apps, err := w.Applications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	return w, p, apps[0]
}

func find(t *testing.T, root a11y.Node, q a11y.Query) a11y.Node {
	t.Helper()
	n, err := a11y.Find(ctx, root, q)
	require.NoError(t, err, "find %s", q)
	return n
}

func click(t *testing.T, root a11y.Node, q a11y.Query) {
	t.Helper()
	require.NoError(t, find(t, root, q).Click(ctx))
}

func name(t *testing.T, n a11y.Node) string {
	t.Helper()
	s, err := n.Name(ctx)
	require.NoError(t, err)
	return s
}

func writeImage(t *testing.T, label string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), label+".jpg")
	require.NoError(t, fakemedia.WriteImage(path, fakemedia.NewImage(label)))
	return path
}

// importPicture drives the import chooser the way a user would.
func importPicture(t *testing.T, w *World, app a11y.Node, path string) {
	t.Helper()
	click(t, app, a11y.ByRole(a11y.RoleMenu).Named("Slideshow"))
	click(t, app, a11y.ByRole(a11y.RoleMenuItem).Named("Import pictures").Showing())
	fc := find(t, app, a11y.ByRole(a11y.RoleFileChooser).Showing())
	require.NoError(t, find(t, fc, a11y.ByDescription("Open your personal folder")).Focus(ctx))
	require.NoError(t, w.PressKey(ctx, a11y.Ctrl('l')))
	require.NoError(t, w.TypeText(ctx, path))
	click(t, fc, a11y.ByRole(a11y.RolePushButton).Named("Open"))
	assert.True(t, a11y.Dead(ctx, fc))
}

func TestLaunchRegisters(t *testing.T) {
	w, p, app := launch(t, Options{})

	assert.Equal(t, "imagination", name(t, app))
	pid, err := app.PID(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.Pid(), pid)
	assert.Equal(t, "Imagination", name(t, find(t, app, a11y.ByRole(a11y.RoleFrame))))

	require.NoError(t, p.Kill())
	assert.True(t, p.Exited())
	assert.True(t, a11y.Dead(ctx, app))
	apps, err := w.Applications(ctx)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestMenusShowOnClick(t *testing.T) {
	_, _, app := launch(t, Options{})

	quit := a11y.ByRole(a11y.RoleMenuItem).Named("Quit")
	item := find(t, app, quit)
	showing, err := a11y.Showing(ctx, item)
	require.NoError(t, err)
	assert.False(t, showing)

	click(t, app, a11y.ByRole(a11y.RoleMenu).Named("Slideshow"))
	showing, err = a11y.Showing(ctx, item)
	require.NoError(t, err)
	assert.True(t, showing)

	// Opening another menu closes the first.
	click(t, app, a11y.ByRole(a11y.RoleMenu).Named("Slide"))
	showing, err = a11y.Showing(ctx, item)
	require.NoError(t, err)
	assert.False(t, showing)
}

func TestImportPicture(t *testing.T) {
	w, _, app := launch(t, Options{})
	importPicture(t, w, app, writeImage(t, "AB"))

	assert.Equal(t, "1", name(t, find(t, app, a11y.ByDescription("Total number of slides"))))
	text, err := find(t, app, a11y.ByDescription("Current slide number")).Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", text)
	assert.Equal(t, []string{"Slideshow", "Slideshow/Import pictures", "Open File/Open"}, w.Clicks())
}

func TestImportMissingPictureKeepsChooser(t *testing.T) {
	w, _, app := launch(t, Options{})
	click(t, app, a11y.ByRole(a11y.RoleMenu).Named("Slideshow"))
	click(t, app, a11y.ByRole(a11y.RoleMenuItem).Named("Import pictures").Showing())
	fc := find(t, app, a11y.ByRole(a11y.RoleFileChooser))
	require.NoError(t, w.PressKey(ctx, a11y.Ctrl('l')))

	// Ctrl+L only works inside the chooser.
	entry := find(t, fc, a11y.ByRole(a11y.RoleText))
	showing, err := a11y.Showing(ctx, entry)
	require.NoError(t, err)
	assert.False(t, showing)

	require.NoError(t, find(t, fc, a11y.ByName("Home")).Focus(ctx))
	require.NoError(t, w.PressKey(ctx, a11y.Ctrl('l')))
	require.NoError(t, w.TypeText(ctx, "/nonexistent.jpg\n"))
	assert.False(t, a11y.Dead(ctx, fc))
	assert.Equal(t, "0", name(t, find(t, app, a11y.ByDescription("Total number of slides"))))
}

func TestStickyConfirm(t *testing.T) {
	w, _, app := launch(t, Options{StickyConfirm: true})
	click(t, app, a11y.ByRole(a11y.RoleMenu).Named("Slideshow"))
	click(t, app, a11y.ByRole(a11y.RoleMenuItem).Named("Save As").Showing())

	fc := find(t, app, a11y.ByRole(a11y.RoleFileChooser).Named("Save File"))
	path := filepath.Join(t.TempDir(), "doc")
	require.NoError(t, w.TypeText(ctx, path))

	ok := find(t, fc, a11y.ByRole(a11y.RolePushButton).Named("Save"))
	require.NoError(t, ok.Click(ctx))
	assert.False(t, a11y.Dead(ctx, fc))
	require.NoError(t, ok.Click(ctx))
	assert.True(t, a11y.Dead(ctx, fc))

	_, err := os.Stat(path + ".img")
	require.NoError(t, err)
	assert.Equal(t, "doc.img - Imagination", name(t, find(t, app, a11y.ByRole(a11y.RoleFrame))))
}

func TestQuitAsksWhenModified(t *testing.T) {
	w, p, app := launch(t, Options{})
	importPicture(t, w, app, writeImage(t, "AB"))

	click(t, app, a11y.ByRole(a11y.RoleMenu).Named("Slideshow"))
	click(t, app, a11y.ByRole(a11y.RoleMenuItem).Named("Quit").Showing())
	alert := find(t, app, a11y.ByRole(a11y.RoleAlert))
	assert.False(t, p.Exited())

	click(t, alert, a11y.ByName("Cancel"))
	assert.True(t, a11y.Dead(ctx, alert))
	assert.False(t, p.Exited())

	click(t, app, a11y.ByRole(a11y.RoleMenu).Named("Slideshow"))
	click(t, app, a11y.ByRole(a11y.RoleMenuItem).Named("Quit").Showing())
	click(t, find(t, app, a11y.ByRole(a11y.RoleAlert)), a11y.ByName("Close without Saving"))
	assert.True(t, p.Exited())
}

func TestOpenDocumentFromArgs(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "two.img")
	require.NoError(t, writeDocument(doc, document{Slides: []slide{
		{Image: writeImage(t, "AB")},
		{Image: writeImage(t, "CD"), Transition: fakemedia.WipeLeftToRight},
	}}))

	_, _, app := launch(t, Options{}, doc)
	assert.Equal(t, "2", name(t, find(t, app, a11y.ByDescription("Total number of slides"))))
	assert.Equal(t, "two.img - Imagination", name(t, find(t, app, a11y.ByRole(a11y.RoleFrame))))
}

func TestRenderTimeline(t *testing.T) {
	w := New(Options{})
	e := newEditor(w, &Process{w: w, pid: 1})
	n := writeImage(t, "N")
	e.doc.Slides = []slide{
		{Image: n, Transform: fakemedia.Transform{Turns: 3}},
		{Image: writeImage(t, "AB")},
		{Image: writeImage(t, "CD"), Transition: fakemedia.WipeLeftToRight},
	}

	v, err := e.render()
	require.NoError(t, err)
	require.Len(t, v.Segments, 4)
	assert.Equal(t, 7.0, v.Duration())

	for at, want := range map[float64]string{0.5: "Z", 1.5: "AB", 4: "CB", 6.5: "CD"} {
		got, ok := v.TextAt(at)
		require.True(t, ok)
		assert.Equal(t, want, got, "at %v", at)
	}

	require.NoError(t, os.Remove(n))
	_, err = e.render()
	assert.EqualError(t, err, "cannot load "+n)
}

func TestExportDialog(t *testing.T) {
	w, _, app := launch(t, Options{ExportPolls: 2})
	importPicture(t, w, app, writeImage(t, "AB"))
	out := filepath.Join(t.TempDir(), "out.vob")

	click(t, app, a11y.ByRole(a11y.RoleMenu).Named("Slideshow"))
	click(t, app, a11y.ByRole(a11y.RoleMenuItem).Named("Export").Showing())
	settings := find(t, app, a11y.ByRole(a11y.RoleDialog).Named("Export Settings"))
	entry := find(t, settings, a11y.ByRole(a11y.RoleText))
	text, err := entry.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "slideshow.vob", text)

	require.NoError(t, entry.Focus(ctx))
	require.NoError(t, w.TypeText(ctx, out))
	click(t, settings, a11y.ByName("OK"))

	progress := find(t, app, a11y.ByRole(a11y.RoleFrame).Named("Exporting the slideshow"))
	pause := find(t, progress, a11y.ByName("Pause"))
	for range 2 {
		showing, err := a11y.Showing(ctx, pause)
		require.NoError(t, err)
		assert.True(t, showing)
	}
	showing, err := a11y.Showing(ctx, pause)
	require.NoError(t, err)
	assert.False(t, showing)

	status, err := find(t, progress, a11y.ByDescription("Status of export")).Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Slideshow exported successfully", status)

	v, err := fakemedia.ReadVideo(out)
	require.NoError(t, err)
	got, ok := v.TextAt(0.5)
	require.True(t, ok)
	assert.Equal(t, "AB", got)
}

func TestWidgetPath(t *testing.T) {
	w := New(Options{})
	e := newEditor(w, &Process{w: w, pid: 1})
	flip := e.frame.children[1].children[1].children[0]
	assert.Equal(t, "Flip horizontally the selected slides/push button", flip.path())
	assert.Equal(t, "Slide Settings/Transition type", e.combo.path())
}

func TestClosedWorld(t *testing.T) {
	w := New(Options{})
	require.NoError(t, w.Close())
	_, err := w.Launch(nil)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = w.Applications(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}
