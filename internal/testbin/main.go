// Command testbin is a fixture program standing in for the external tools
// the slidecrawler harness runs. It impersonates whichever tool it is
// invoked as (by argv[0] basename, usually through a symlink), reading and
// writing fakemedia files instead of real images and videos.
//
// Behavior:
//   - convert -size WxH label:TEXT OUT: writes an upright image of TEXT
//   - convert IN [-auto-orient] [-fuzz N] [-trim] OUT: copies IN, baking
//     its orientation tag into the pixels with -auto-orient
//   - exiftool -Orientation=N -n [-overwrite_original] FILE: sets the tag
//   - ffmpeg [-y] [-loglevel L] -i VIDEO -ss SECONDS -vframes 1 OUT:
//     writes the frame shown at SECONDS; fails past the end of the video
//   - tesseract IN OUTBASE [--psm N]: writes the text read in IN to
//     OUTBASE.txt
//
// Every invocation is appended to $TESTBIN_LOG when set.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cboone/slidecrawler/internal/fakemedia"
)

func main() {
	tool := filepath.Base(os.Args[0])
	args := os.Args[1:]
	logInvocation(tool, args)

	var err error
	switch tool {
	case "convert":
		err = convert(args)
	case "exiftool":
		err = exiftool(args)
	case "ffmpeg":
		err = ffmpeg(args)
	case "tesseract":
		err = tesseract(args)
	default:
		fmt.Fprintf(os.Stderr, "testbin: unknown tool %q\n", tool)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", tool, err)
		os.Exit(1)
	}
}

func logInvocation(tool string, args []string) {
	path := os.Getenv("TESTBIN_LOG")
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintln(f, strings.Join(append([]string{tool}, args...), " "))
}

func convert(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: convert -size WxH label:TEXT OUT | convert IN [ops] OUT")
	}
	out := args[len(args)-1]

	if args[0] == "-size" {
		if len(args) != 4 || !strings.HasPrefix(args[2], "label:") {
			return fmt.Errorf("unsupported arguments %q", args)
		}
		if _, _, ok := strings.Cut(args[1], "x"); !ok {
			return fmt.Errorf("bad size %q", args[1])
		}
		return fakemedia.WriteImage(out, fakemedia.NewImage(strings.TrimPrefix(args[2], "label:")))
	}

	img, err := fakemedia.ReadImage(args[0])
	if err != nil {
		return err
	}
	for _, op := range args[1 : len(args)-1] {
		if op == "-auto-orient" {
			img.Pixels = img.Display()
			img.Orientation = 1
		}
	}
	return fakemedia.WriteImage(out, img)
}

func exiftool(args []string) error {
	tag := -1
	var file string
	for _, a := range args {
		switch {
		case strings.HasPrefix(a, "-Orientation="):
			n, err := strconv.Atoi(strings.TrimPrefix(a, "-Orientation="))
			if err != nil || n < 1 || n > 8 {
				return fmt.Errorf("bad orientation %q", a)
			}
			tag = n
		case strings.HasPrefix(a, "-"):
		default:
			file = a
		}
	}
	if tag < 0 || file == "" {
		return errors.New("usage: exiftool -Orientation=N -n FILE")
	}
	img, err := fakemedia.ReadImage(file)
	if err != nil {
		return err
	}
	img.Orientation = tag
	return fakemedia.WriteImage(file, img)
}

func ffmpeg(args []string) error {
	var in, at string
	for i := 0; i < len(args)-1; i++ {
		switch args[i] {
		case "-i":
			in = args[i+1]
			i++
		case "-ss":
			at = args[i+1]
			i++
		case "-loglevel", "-vframes":
			i++
		}
	}
	if in == "" || at == "" || len(args) == 0 {
		return errors.New("usage: ffmpeg -i VIDEO -ss SECONDS -vframes 1 OUT")
	}
	out := args[len(args)-1]

	seconds, err := strconv.ParseFloat(at, 64)
	if err != nil {
		return fmt.Errorf("bad timestamp %q", at)
	}
	v, err := fakemedia.ReadVideo(in)
	if err != nil {
		return err
	}
	text, ok := v.TextAt(seconds)
	if !ok {
		return fmt.Errorf("no frame at %vs, video is %vs long", seconds, v.Duration())
	}
	return fakemedia.WriteImage(out, fakemedia.NewImage(text))
}

func tesseract(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: tesseract IN OUTBASE [--psm N]")
	}
	img, err := fakemedia.ReadImage(args[0])
	if err != nil {
		return err
	}
	// tesseract ends its output with a newline and a form feed.
	return os.WriteFile(args[1]+".txt", []byte(img.Text()+"\n\f"), 0o644)
}
