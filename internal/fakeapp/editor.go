package fakeapp

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cboone/slidecrawler/a11y"
	"github.com/cboone/slidecrawler/internal/fakemedia"
)

// Timeline of an exported slideshow, in seconds.
const (
	SlideDuration      = 1.0
	TransitionDuration = 4.0
)

// Transitions offered by the slide settings, by category.
var transitions = []struct {
	category string
	names    []string
}{
	{"Bar Wipe", []string{"Left to Right", "Right to Left"}},
	{"Cross Fade", []string{"Normal"}},
}

const documentExt = ".img"

type slide struct {
	Image      string              `yaml:"image"`
	Transform  fakemedia.Transform `yaml:"transform"`
	Transition string              `yaml:"transition,omitempty"`
}

type document struct {
	Slides []slide `yaml:"slides"`
}

// editor is one running instance of the simulated slideshow editor.
type editor struct {
	w    *World
	proc *Process

	root     *widget
	frame    *widget
	count    *widget
	current  *widget
	combo    *widget
	popups   []*widget
	modal    *widget
	doc      document
	cur      int
	file     string
	modified bool
}

func newEditor(w *World, p *Process) *editor {
	e := &editor{w: w, proc: p, cur: -1}
	e.root = &widget{w: w, app: e, role: a11y.RoleApplication, name: w.opts.Name}
	e.frame = e.root.add(a11y.RoleFrame, "", "")

	bar := e.frame.add(a11y.RoleMenuBar, "", "")
	e.menu(bar, "Slideshow", []menuItem{
		{"Open", func() { e.showChooser(false, e.openDocument) }},
		{"Import pictures", func() { e.showChooser(false, e.importPicture) }},
		{"Import slideshow", func() { e.showChooser(false, e.importDocument) }},
		{"Save As", func() { e.showChooser(true, e.saveAs) }},
		{"Export", e.showExportSettings},
		{"Quit", e.quit},
	})
	e.menu(bar, "Slide", []menuItem{
		{"Rotate clockwise", func() { e.transform(func(t fakemedia.Transform) fakemedia.Transform { return t.Rotate(3) }) }},
		{"Rotate counter-clockwise", func() { e.transform(func(t fakemedia.Transform) fakemedia.Transform { return t.Rotate(1) }) }},
	})

	tools := e.frame.add(a11y.RoleToolBar, "", "")
	save := tools.add(a11y.RolePanel, "", "Save the slideshow").add(a11y.RolePushButton, "", "")
	save.onClick = e.save
	flip := tools.add(a11y.RolePanel, "", "Flip horizontally the selected slides").add(a11y.RolePushButton, "", "")
	flip.onClick = func() { e.transform(fakemedia.Transform.Mirror) }

	settings := e.frame.add(a11y.RolePanel, "Slide Settings", "")
	e.combo = settings.add(a11y.RoleComboBox, "", "Transition type")
	e.combo.onClick = func() {
		e.closeMenus()
		e.combo.setChildrenHidden(false)
	}
	e.popups = append(e.popups, e.combo)
	for _, tr := range transitions {
		items := make([]menuItem, 0, len(tr.names))
		for _, name := range tr.names {
			effect := tr.category + "/" + name
			items = append(items, menuItem{name, func() { e.setTransition(effect) }})
		}
		m := e.menu(e.combo, tr.category, items)
		m.hidden = true
		m.onClick = func() { m.setChildrenHidden(false) }
	}

	e.count = e.frame.add(a11y.RoleLabel, "0", "Total number of slides")
	e.current = e.frame.add(a11y.RoleText, "", "Current slide number")
	e.current.editable = true
	e.current.onEnter = e.chooseSlide
	return e
}

type menuItem struct {
	name   string
	action func()
}

// menu adds a menu whose items show once it is clicked. Clicking an item
// closes every menu, then runs its action.
func (e *editor) menu(parent *widget, name string, items []menuItem) *widget {
	m := parent.add(a11y.RoleMenu, name, "")
	m.onClick = func() {
		e.closeMenus()
		m.setChildrenHidden(false)
	}
	for _, it := range items {
		item := m.add(a11y.RoleMenuItem, it.name, "")
		item.hidden = true
		item.onClick = func() {
			e.closeMenus()
			it.action()
		}
	}
	e.popups = append(e.popups, m)
	return m
}

func (e *editor) closeMenus() {
	for _, p := range e.popups {
		p.setChildrenHidden(true)
	}
}

// refresh recomputes the widgets that mirror the document.
func (e *editor) refresh() {
	if e.root.dead {
		return
	}
	e.frame.name = e.title()
	e.count.name = strconv.Itoa(len(e.doc.Slides))
	e.current.text = ""
	e.combo.name = "None"
	if s := e.selected(); s != nil {
		e.current.text = strconv.Itoa(e.cur + 1)
		if s.Transition != "" {
			e.combo.name = s.Transition[strings.Index(s.Transition, "/")+1:]
		}
	}
}

func (e *editor) title() string {
	if e.file == "" {
		return "Imagination"
	}
	t := filepath.Base(e.file) + " - Imagination"
	if e.modified {
		t = "*" + t
	}
	return t
}

func (e *editor) selected() *slide {
	if e.cur < 0 || e.cur >= len(e.doc.Slides) {
		return nil
	}
	return &e.doc.Slides[e.cur]
}

func (e *editor) chooseSlide() {
	i, err := strconv.Atoi(strings.TrimSpace(e.current.text))
	if err != nil || i < 1 || i > len(e.doc.Slides) {
		return
	}
	e.cur = i - 1
}

func (e *editor) transform(f func(fakemedia.Transform) fakemedia.Transform) {
	if s := e.selected(); s != nil {
		s.Transform = f(s.Transform)
		e.modified = true
	}
}

func (e *editor) setTransition(effect string) {
	if s := e.selected(); s != nil {
		s.Transition = effect
		e.modified = true
	}
}

// showChooser opens a file chooser. Open choosers reveal their location
// entry on Ctrl+L; save choosers start with the name entry focused. done
// receives the typed path and reports whether it was accepted.
func (e *editor) showChooser(save bool, done func(path string) bool) {
	title, confirm := "Open File", "Open"
	if save {
		title, confirm = "Save File", "Save"
	}
	fc := e.root.add(a11y.RoleFileChooser, title, "")
	fc.add(a11y.RolePushButton, "Home", "Open your personal folder")
	entry := fc.add(a11y.RoleText, "", "")
	entry.editable = true
	entry.hidden = !save
	fc.add(a11y.RolePushButton, "Cancel", "").onClick = fc.destroy
	ok := fc.add(a11y.RolePushButton, confirm, "")

	armed := !e.w.opts.StickyConfirm
	ok.onClick = func() {
		if !armed {
			armed = true
			e.w.focus = ok
			return
		}
		if done(strings.TrimSpace(entry.text)) {
			fc.destroy()
		}
	}
	entry.onEnter = ok.onClick
	if save {
		entry.selected = true
		e.w.focus = entry
	}
}

func (e *editor) importPicture(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	e.doc.Slides = append(e.doc.Slides, slide{Image: path})
	e.cur = len(e.doc.Slides) - 1
	e.modified = true
	return true
}

func (e *editor) openDocument(path string) bool {
	doc, err := readDocument(path)
	if err != nil {
		return false
	}
	e.doc = doc
	e.file = path
	e.modified = false
	e.cur = -1
	if len(doc.Slides) > 0 {
		e.cur = 0
	}
	return true
}

func (e *editor) importDocument(path string) bool {
	doc, err := readDocument(path)
	if err != nil {
		return false
	}
	e.doc.Slides = append(e.doc.Slides, doc.Slides...)
	if e.cur < 0 && len(e.doc.Slides) > 0 {
		e.cur = 0
	}
	e.modified = true
	return true
}

// saveAs writes the document, appending the extension to the typed name
// when it is missing.
func (e *editor) saveAs(path string) bool {
	if path == "" {
		return false
	}
	if !strings.HasSuffix(path, documentExt) {
		path += documentExt
	}
	if err := writeDocument(path, e.doc); err != nil {
		return false
	}
	e.file = path
	e.modified = false
	return true
}

func (e *editor) save() {
	if e.file == "" {
		e.showChooser(true, e.saveAs)
		return
	}
	if err := writeDocument(e.file, e.doc); err == nil {
		e.modified = false
	}
}

// quit exits at once, or asks first when there are unsaved changes.
func (e *editor) quit() {
	if !e.modified {
		e.exit()
		return
	}
	if e.modal != nil && !e.modal.dead {
		return
	}
	alert := e.root.add(a11y.RoleAlert, "Question", "")
	e.modal = alert
	label := alert.add(a11y.RoleLabel, "", "")
	label.text = "You didn't save your slideshow yet. Are you sure you want to close it?"
	alert.add(a11y.RolePushButton, "Cancel", "").onClick = alert.destroy
	alert.add(a11y.RolePushButton, "Close without Saving", "").onClick = e.exit
	alert.add(a11y.RolePushButton, "Save", "").onClick = func() {
		alert.destroy()
		e.save()
		if !e.modified {
			e.exit()
		}
	}
}

// exit tears the editor down.
func (e *editor) exit() {
	e.root.kill()
	if f := e.w.focus; f != nil && f.app == e {
		e.w.focus = nil
	}
	for i, x := range e.w.editors {
		if x == e {
			e.w.editors = append(e.w.editors[:i:i], e.w.editors[i+1:]...)
			break
		}
	}
	e.proc.exited = true
}

func (e *editor) showExportSettings() {
	d := e.root.add(a11y.RoleDialog, "Export Settings", "")
	entry := d.add(a11y.RoleText, "", "")
	entry.editable = true
	entry.text = "slideshow.vob"
	d.add(a11y.RolePushButton, "Cancel", "").onClick = d.destroy
	d.add(a11y.RolePushButton, "OK", "").onClick = func() {
		d.destroy()
		e.export(strings.TrimSpace(entry.text))
	}
}

// export renders the slideshow to path and shows the progress window. The
// pause button stays showing for ExportPolls state reads; the final status
// appears when it hides.
func (e *editor) export(path string) {
	d := e.root.add(a11y.RoleFrame, "Exporting the slideshow", "")
	pause := d.add(a11y.RolePushButton, "Pause", "")
	status := d.add(a11y.RoleLabel, "", "Status of export")
	status.text = "Exporting the slideshow..."
	d.add(a11y.RolePushButton, "Close", "").onClick = d.destroy

	final := "Slideshow exported successfully"
	video, err := e.render()
	if err == nil {
		err = fakemedia.WriteVideo(path, video)
	}
	if err != nil {
		final = "Export failed: " + err.Error()
	}

	remaining := e.w.opts.ExportPolls
	pause.onStates = func() {
		if remaining > 0 {
			remaining--
			return
		}
		pause.hidden = true
		status.text = final
		pause.onStates = nil
	}
}

// render lays the slides out on the export timeline. Each slide shows for
// SlideDuration, preceded by its transition, if any, from the slide before.
func (e *editor) render() (fakemedia.Video, error) {
	var v fakemedia.Video
	t, prev := 0.0, ""
	for i, s := range e.doc.Slides {
		img, err := fakemedia.ReadImage(s.Image)
		if err != nil {
			return v, fmt.Errorf("cannot load %s", s.Image)
		}
		text := fakemedia.Render(img.Label, img.Display().Then(s.Transform))
		if i > 0 && s.Transition != "" {
			v.Segments = append(v.Segments, fakemedia.Segment{
				Start:  t,
				End:    t + TransitionDuration,
				Text:   text,
				From:   prev,
				Effect: s.Transition,
			})
			t += TransitionDuration
		}
		v.Segments = append(v.Segments, fakemedia.Segment{Start: t, End: t + SlideDuration, Text: text})
		t += SlideDuration
		prev = text
	}
	return v, nil
}

func readDocument(path string) (document, error) {
	var doc document
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	err = yaml.Unmarshal(data, &doc)
	return doc, err
}

func writeDocument(path string, doc document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
