package slidecrawler

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const envLog = "SLIDECRAWLER_LOG"

// tbWriter forwards each formatted log record to t.Log, so output is
// attached to the test that produced it. t.Log attributes every line to
// Write; the record's own source attribute names the logging call.
type tbWriter struct {
	mu sync.Mutex
	t  testing.TB
}

func (w *tbWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// newTestLogger returns a text logger writing through t.Log. The level is
// read from SLIDECRAWLER_LOG ("debug", "info", "warn", "error"); the
// default is info.
func newTestLogger(t testing.TB, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil || level == "" {
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(&tbWriter{t: t}, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				// The test log already orders records.
				return slog.Attr{}
			case slog.SourceKey:
				if src, ok := a.Value.Any().(*slog.Source); ok {
					a.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return a
		},
	})
	return slog.New(handler)
}
