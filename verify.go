package slidecrawler

import (
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// OCR returns the text recognised in image, trimmed and NFKC-normalised.
// The image is auto-oriented and its uniform border trimmed first.
//
// The image must hold exactly one line of text. Anything else gives an
// unspecified result; multi-line output is logged as a warning.
func (s *Session) OCR(image string) string {
	s.t.Helper()
	base := s.nextPath("ocr", "")
	trimmed := base + ".jpg"
	s.run(ToolConvert, image, "-auto-orient", "-fuzz", "1%", "-trim", trimmed)
	s.run(ToolTesseract, trimmed, base, "--psm", "7")

	raw, err := os.ReadFile(base + ".txt")
	if err != nil {
		s.t.Fatalf("slidecrawler: ocr: %v", err)
	}
	text := normalizeOCR(string(raw))
	if strings.Contains(text, "\n") {
		s.log.Warn("ocr read several lines; result is unreliable", "image", image, "text", text)
	}
	s.log.Info("ocr", "image", image, "text", text)
	return text
}

// normalizeOCR folds compatibility characters tesseract likes to emit
// (ligatures, full-width forms) into their plain equivalents.
func normalizeOCR(raw string) string {
	return strings.TrimSpace(norm.NFKC.String(raw))
}

// ExpectText fails the test unless OCR reads want in image.
func (s *Session) ExpectText(image, want string) {
	s.t.Helper()
	if got := s.OCR(image); got != want {
		s.t.Fatalf("slidecrawler: %v", &MismatchError{Image: image, Want: want, Got: got})
	}
}

// TextAt returns the text shown at seconds into video.
func (s *Session) TextAt(video string, seconds float64) string {
	s.t.Helper()
	return s.OCR(s.FrameAt(video, seconds).Path)
}
