package slidecrawler

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/cboone/slidecrawler/internal/toolcli"
)

// Fixture is a file generated in the session directory, together with the
// parameters that produced it.
type Fixture struct {
	Path string
	// Kind is "text", "exif" or "frame".
	Kind string
	// Text is the label rendered by TextToImage.
	Text string
	// Source is the file the fixture was derived from.
	Source   string
	Rotation int
	Flip     bool
	// Tag is the EXIF orientation written by ExifRotate.
	Tag int
	// At is the timestamp, in seconds, of a frame extracted by FrameAt.
	At      float64
	Created time.Time
}

// OrientationTag returns the EXIF orientation tag that makes a renderer
// rotate an image by rotation degrees counter-clockwise, after mirroring
// it horizontally when flip is set. Quarter turns combined with a flip have
// no tag: ok is false. Rotations that are not multiples of 90 fail.
func OrientationTag(rotation int, flip bool) (tag int, ok bool, err error) {
	if rotation%90 != 0 {
		return 0, false, invalidf("exif-rotate", "cannot rotate by %d, not a multiple of 90", rotation)
	}
	switch ((rotation%360 + 360) % 360) / 90 {
	case 0:
		if flip {
			return 2, true, nil
		}
		return 1, true, nil
	case 1:
		if flip {
			return 0, false, nil
		}
		return 8, true, nil
	case 2:
		if flip {
			return 4, true, nil
		}
		return 3, true, nil
	default:
		if flip {
			return 0, false, nil
		}
		return 6, true, nil
	}
}

// TextToImage renders text on a blank canvas of the fixture size.
func (s *Session) TextToImage(text string) Fixture {
	s.t.Helper()
	out := s.nextPath("text", "jpg")
	size := fmt.Sprintf("%dx%d", s.opts.fixtureWidth, s.opts.fixtureHeight)
	s.run(ToolConvert, "-size", size, "label:"+text, out)
	return Fixture{Path: out, Kind: "text", Text: text, Created: time.Now()}
}

// ExifRotate copies f and sets the copy's EXIF orientation so that viewers
// show it rotated by rotation degrees counter-clockwise, mirrored first if
// flip is set. The pixels are untouched. ok is false, and no file is
// created, when no orientation tag describes the transform.
func (s *Session) ExifRotate(f Fixture, rotation int, flip bool) (Fixture, bool) {
	s.t.Helper()
	tag, ok, err := OrientationTag(rotation, flip)
	if err != nil {
		s.t.Fatalf("slidecrawler: %v", err)
	}
	if !ok {
		s.log.Debug("no orientation tag", "rotation", rotation, "flip", flip)
		return Fixture{}, false
	}

	out := s.nextPath("exif", "jpg")
	if err := copyFile(f.Path, out); err != nil {
		s.t.Fatalf("slidecrawler: exif-rotate: %v", err)
	}
	s.run(ToolExiftool, "-Orientation="+strconv.Itoa(tag), "-n", "-overwrite_original", out)
	return Fixture{
		Path:     out,
		Kind:     "exif",
		Text:     f.Text,
		Source:   f.Path,
		Rotation: rotation,
		Flip:     flip,
		Tag:      tag,
		Created:  time.Now(),
	}, true
}

// FrameAt extracts the frame shown at seconds into video.
func (s *Session) FrameAt(video string, seconds float64) Fixture {
	s.t.Helper()
	if seconds < 0 {
		s.t.Fatalf("slidecrawler: %v", invalidf("frame-at", "negative timestamp %v", seconds))
	}
	out := s.nextPath("frame", "jpg")
	ts := strconv.FormatFloat(seconds, 'f', -1, 64)
	s.run(ToolFFmpeg, "-y", "-loglevel", "error", "-i", video, "-ss", ts, "-vframes", "1", out)
	if _, err := os.Stat(out); err != nil {
		s.t.Fatalf("slidecrawler: frame-at: no frame at %ss of %s", ts, video)
	}
	return Fixture{Path: out, Kind: "frame", Source: video, At: seconds, Created: time.Now()}
}

// run invokes an external tool and returns its stdout. Tool failures fail
// the test.
func (s *Session) run(tool Tool, args ...string) string {
	s.t.Helper()
	r := s.tool(tool)
	s.log.Debug("run", "cmd", r.Command(args...))
	out, err := r.Run(s.ctx, args...)
	if err != nil {
		s.t.Fatalf("slidecrawler: %s: %v", tool, err)
	}
	return out
}

// tool resolves a tool runner on first use, from in order:
// 1. WithToolPath, SLIDECRAWLER_<TOOL>, the config file
// 2. $PATH lookup
//
// A missing tool skips the test unless it was configured explicitly.
func (s *Session) tool(tool Tool) *toolcli.Runner {
	s.t.Helper()
	if r, ok := s.tools[tool]; ok {
		return r
	}

	path := s.opts.tools[tool]
	if path != "" {
		if _, err := exec.LookPath(path); err != nil {
			s.t.Fatalf("slidecrawler: %s: %v", tool, err)
		}
	} else {
		found, err := toolcli.Lookup(string(tool))
		if err != nil {
			s.t.Skipf("slidecrawler: %v", err)
		}
		path = found
	}

	r := toolcli.New(string(tool), path)
	r.SetEnv([]string{"LC_ALL=C"})
	s.tools[tool] = r
	return r
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
