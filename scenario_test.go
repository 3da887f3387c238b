package slidecrawler_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cboone/slidecrawler"
	"github.com/cboone/slidecrawler/internal/fakeapp"
)

// envE2E runs the scenarios against the real application and tools
// instead of the simulation.
const envE2E = "SLIDECRAWLER_E2E"

func scenario(t *testing.T) *slidecrawler.Session {
	t.Helper()
	if os.Getenv(envE2E) == "1" {
		return slidecrawler.Open(t)
	}
	s, _ := openFake(t, fakeapp.Options{StickyConfirm: true})
	return s
}

// TestScenarioMain saves, reopens, merges and exports slideshows, checking
// the rendered frames. Slides show for a second; the bar wipe into the
// slide "CD" lasts four.
func TestScenarioMain(t *testing.T) {
	s := scenario(t)

	s.Start()
	s.AddSlide(s.TextToImage("AB").Path)
	s.AssertShouldSave()
	s.AddSlide(s.TextToImage("CD").Path)
	s.ChooseSlide(2)
	s.SetTransitionType("Bar Wipe", "Left to Right")
	slideshow := filepath.Join(s.Dir(), "result.img")
	s.SaveAs(slideshow)
	require.Equal(t, 2, s.NSlides())
	s.Quit()

	s.Start()
	s.OpenSlideshow(slideshow)
	require.Equal(t, 2, s.NSlides())
	video := s.Export().Path
	assert.Equal(t, "AB", s.TextAt(video, 0.5))
	assert.Equal(t, "CD", s.TextAt(video, 5.5))
	// Halfway through the wipe.
	assert.Equal(t, "CB", s.TextAt(video, 3))
	s.Quit()

	// Opening from the command line leaves nothing to save.
	s.Start(slideshow)
	require.Equal(t, 2, s.NSlides())
	s.Quit()

	s.Start()
	s.AddSlide(s.TextToImage("N").Path)
	require.Equal(t, 1, s.NSlides())
	s.AssertShouldSave()
	slideshow2 := filepath.Join(s.Dir(), "result2.img")
	s.SaveAs(slideshow2)
	s.Menu(s.Labels().SlideshowMenu, s.Labels().ImportSlideshow)
	s.OpenFile(slideshow)
	s.AssertShouldSave()
	require.Equal(t, 3, s.NSlides())
	s.Save()
	s.Quit()

	s.Start(slideshow2)
	require.Equal(t, 3, s.NSlides())
	video = s.Export().Path
	expectMerged(t, s, video)
	s.ChooseSlide(1)
	s.Rotate(-90)
	s.AssertShouldSave()
	slideshow3 := filepath.Join(s.Dir(), "result3.img")
	s.SaveAs(slideshow3)
	s.AddSlide(s.TextToImage("d").Path)
	s.Flip()
	s.Save()
	require.Equal(t, 4, s.NSlides())

	// Save As leaves the slideshow it was opened from alone.
	s.OpenSlideshow(slideshow2)
	require.Equal(t, 3, s.NSlides())
	video = s.Export().Path
	expectMerged(t, s, video)
	s.Quit()

	s.Start(slideshow3)
	require.Equal(t, 4, s.NSlides())
	video = s.Export().Path
	assert.Equal(t, "Z", s.TextAt(video, 0.5))
	assert.Equal(t, "AB", s.TextAt(video, 1.5))
	assert.Equal(t, "CD", s.TextAt(video, 6.5))
	assert.Equal(t, "CB", s.TextAt(video, 4))
	assert.Equal(t, "b", s.TextAt(video, 7.5))
	s.Quit()
}

func expectMerged(t *testing.T, s *slidecrawler.Session, video string) {
	t.Helper()
	assert.Equal(t, "N", s.TextAt(video, 0.5))
	assert.Equal(t, "AB", s.TextAt(video, 1.5))
	assert.Equal(t, "CD", s.TextAt(video, 6.5))
	assert.Equal(t, "CB", s.TextAt(video, 4))
}

// TestScenarioExif checks that slides honour EXIF orientation, and that
// undoing it with the editor's own flip and rotation restores the letter.
func TestScenarioExif(t *testing.T) {
	s := scenario(t)
	b := s.TextToImage("b")

	type rotated struct {
		fixture slidecrawler.Fixture
		letter  string
	}
	// Only the letters with an unambiguous reading are checked.
	letters := map[[2]int]string{
		{0, 0}:   "b",
		{0, 1}:   "d",
		{180, 0}: "q",
		{180, 1}: "P",
	}
	var data []rotated
	for angle := 0; angle < 360; angle += 90 {
		for _, flip := range []bool{true, false} {
			f, ok := s.ExifRotate(b, angle, flip)
			if !ok {
				continue
			}
			key := [2]int{angle, 0}
			if flip {
				key[1] = 1
			}
			letter := letters[key]
			if letter != "" {
				s.ExpectText(f.Path, letter)
			}
			data = append(data, rotated{f, letter})
		}
	}
	require.Len(t, data, 6)

	s.Start()
	for _, d := range data {
		s.AddSlide(d.fixture.Path)
		s.AddSlide(d.fixture.Path)
		if d.fixture.Flip {
			s.Flip()
		}
		s.Rotate(-d.fixture.Rotation)
	}
	video := s.Export().Path
	s.AssertShouldSave()
	s.SaveAs(filepath.Join(s.Dir(), "exif.img"))

	at := 0.5
	for _, d := range data {
		what := fmt.Sprintf("b rotated by %d, flip %v", d.fixture.Rotation, d.fixture.Flip)
		if d.letter != "" {
			assert.Equal(t, d.letter, s.TextAt(video, at), "%s at %vs", what, at)
		}
		at++
		assert.Equal(t, "b", s.TextAt(video, at), "%s corrected, at %vs", what, at)
		at++
	}
	s.Quit()
}

// TestScenarioBadFile checks that a picture vanishing from disk makes the
// export fail, naming the picture, without taking the editor down.
func TestScenarioBadFile(t *testing.T) {
	s := scenario(t)
	a, b, c := s.TextToImage("a"), s.TextToImage("b"), s.TextToImage("c")

	s.Start()
	for _, f := range []slidecrawler.Fixture{a, b, c} {
		s.AddSlide(f.Path)
	}
	require.NoError(t, os.Remove(b.Path))

	_, err := s.TryExport()
	var ee *slidecrawler.ExportError
	require.True(t, errors.As(err, &ee), "export should have failed, got %v", err)
	assert.Contains(t, ee.Status, b.Path)

	s.AssertShouldSave()
	s.SaveAs(filepath.Join(s.Dir(), "badfile.img"))
	s.Quit()
}
