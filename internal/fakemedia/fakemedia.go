// Package fakemedia defines the stand-in image and video files exchanged by
// the simulated slideshow editor and the fake command-line tools. Images
// carry their label and orientation instead of pixels; videos carry a
// timeline of what is on screen.
package fakemedia

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	imageMagic = "fakeimage"
	videoMagic = "fakevideo"
)

// Transform is a symmetry of the canvas: an optional horizontal mirror
// followed by Turns counter-clockwise quarter turns.
type Transform struct {
	Turns int  `yaml:"turns"`
	Flip  bool `yaml:"flip"`
}

// Identity leaves the canvas unchanged.
var Identity = Transform{}

func (t Transform) normal() Transform {
	t.Turns = ((t.Turns % 4) + 4) % 4
	return t
}

// Then returns the transform applying t first, then next.
func (t Transform) Then(next Transform) Transform {
	turns := t.Turns
	if next.Flip {
		turns = -turns
	}
	return Transform{Turns: next.Turns + turns, Flip: t.Flip != next.Flip}.normal()
}

// Rotate returns t followed by q counter-clockwise quarter turns.
func (t Transform) Rotate(q int) Transform {
	return t.Then(Transform{Turns: q})
}

// Mirror returns t followed by a horizontal mirror.
func (t Transform) Mirror() Transform {
	return t.Then(Transform{Flip: true})
}

// Orientation returns the transform a viewer applies for an EXIF
// orientation tag. Unknown tags display as stored.
func Orientation(tag int) Transform {
	switch tag {
	case 2:
		return Transform{Flip: true}
	case 3:
		return Transform{Turns: 2}
	case 4:
		return Transform{Turns: 2, Flip: true}
	case 5:
		return Transform{Turns: 1, Flip: true}
	case 6:
		return Transform{Turns: 3}
	case 7:
		return Transform{Turns: 3, Flip: true}
	case 8:
		return Transform{Turns: 1}
	default:
		return Identity
	}
}

// glyphs lists how single characters read once transformed. Anything
// else reads as "?".
var glyphs = []struct {
	label string
	t     Transform
	reads string
}{
	{"b", Transform{Flip: true}, "d"},
	{"b", Transform{Turns: 2}, "q"},
	{"b", Transform{Turns: 2, Flip: true}, "P"},
	{"d", Transform{Flip: true}, "b"},
	{"d", Transform{Turns: 2}, "p"},
	{"d", Transform{Turns: 2, Flip: true}, "q"},
	{"N", Transform{Turns: 1}, "Z"},
	{"N", Transform{Turns: 2}, "N"},
	{"N", Transform{Turns: 3}, "Z"},
}

// Render returns what a reader makes of label drawn under t.
func Render(label string, t Transform) string {
	t = t.normal()
	if t == Identity {
		return label
	}
	for _, g := range glyphs {
		if g.label == label && g.t == t {
			return g.reads
		}
	}
	return "?"
}

// Image is a fake picture.
type Image struct {
	Magic string `yaml:"magic"`
	Label string `yaml:"label"`
	// Orientation is the EXIF orientation tag; 0 and 1 mean none.
	Orientation int `yaml:"orientation"`
	// Pixels is the transform baked into the stored pixels.
	Pixels Transform `yaml:"pixels"`
}

// NewImage returns an upright image of label.
func NewImage(label string) Image {
	return Image{Magic: imageMagic, Label: label, Orientation: 1}
}

// Display returns the transform under which a viewer honouring the
// orientation tag shows the label.
func (img Image) Display() Transform {
	return img.Pixels.Then(Orientation(img.Orientation))
}

// Text returns what a reader sees in the image.
func (img Image) Text() string {
	return Render(img.Label, img.Display())
}

// ReadImage loads a fake image.
func ReadImage(path string) (Image, error) {
	var img Image
	if err := readYAML(path, &img); err != nil {
		return img, err
	}
	if img.Magic != imageMagic {
		return img, fmt.Errorf("%s: not an image", path)
	}
	return img, nil
}

// WriteImage stores a fake image.
func WriteImage(path string, img Image) error {
	img.Magic = imageMagic
	return writeYAML(path, img)
}

// Transition effects understood by Video.TextAt.
const (
	WipeLeftToRight = "Bar Wipe/Left to Right"
	WipeRightToLeft = "Bar Wipe/Right to Left"
)

// Segment is a span of the timeline, in seconds, [Start, End). A segment
// with an Effect transitions from From to Text.
type Segment struct {
	Start  float64 `yaml:"start"`
	End    float64 `yaml:"end"`
	Text   string  `yaml:"text"`
	From   string  `yaml:"from,omitempty"`
	Effect string  `yaml:"effect,omitempty"`
}

// Video is a fake rendered slideshow.
type Video struct {
	Magic    string    `yaml:"magic"`
	Segments []Segment `yaml:"segments"`
}

// Duration returns the end of the last segment.
func (v Video) Duration() float64 {
	if len(v.Segments) == 0 {
		return 0
	}
	return v.Segments[len(v.Segments)-1].End
}

// TextAt returns the text on screen at t seconds. ok is false past the end.
func (v Video) TextAt(t float64) (string, bool) {
	for _, s := range v.Segments {
		if t < s.Start || t >= s.End {
			continue
		}
		if s.Effect == "" {
			return s.Text, true
		}
		return wipe(s, (t-s.Start)/(s.End-s.Start)), true
	}
	return "", false
}

// wipe returns the text of a transition segment at progress p in [0, 1).
func wipe(s Segment, p float64) string {
	to, from := []rune(s.Text), []rune(s.From)
	n := max(len(to), len(from))
	to = pad(to, n)
	from = pad(from, n)
	cut := int(math.Round(p * float64(n)))

	var out []rune
	switch s.Effect {
	case WipeLeftToRight:
		out = append(append(out, to[:cut]...), from[cut:]...)
	case WipeRightToLeft:
		out = append(append(out, from[:n-cut]...), to[n-cut:]...)
	default:
		if p < 0.5 {
			out = from
		} else {
			out = to
		}
	}
	return strings.TrimSpace(string(out))
}

func pad(r []rune, n int) []rune {
	for len(r) < n {
		r = append(r, ' ')
	}
	return r
}

// ReadVideo loads a fake video.
func ReadVideo(path string) (Video, error) {
	var v Video
	if err := readYAML(path, &v); err != nil {
		return v, err
	}
	if v.Magic != videoMagic {
		return v, fmt.Errorf("%s: not a video", path)
	}
	return v, nil
}

// WriteVideo stores a fake video.
func WriteVideo(path string, v Video) error {
	v.Magic = videoMagic
	return writeYAML(path, v)
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
