package toolcli_test

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/cboone/slidecrawler/internal/toolcli"
)

func findShell(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not found in PATH")
	}
	return path
}

func TestRunnerBasic(t *testing.T) {
	sh := findShell(t)
	runner := toolcli.New("shell", sh)

	if runner.Name() != "shell" {
		t.Errorf("Name() = %q, want %q", runner.Name(), "shell")
	}
	if runner.Path() != sh {
		t.Errorf("Path() = %q, want %q", runner.Path(), sh)
	}

	out, err := runner.Run(context.Background(), "-c", "echo hello")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("Run output = %q, want %q", out, "hello")
	}
}

func TestRunnerEnv(t *testing.T) {
	sh := findShell(t)
	runner := toolcli.New("shell", sh)
	runner.SetEnv([]string{"SLIDECRAWLER_PROBE=42"})

	out, err := runner.Run(context.Background(), "-c", "echo $SLIDECRAWLER_PROBE")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "42" {
		t.Errorf("Run output = %q, want %q", out, "42")
	}
}

func TestRunnerError(t *testing.T) {
	sh := findShell(t)
	runner := toolcli.New("shell", sh)

	_, err := runner.Run(context.Background(), "-c", "echo broken >&2; exit 3")
	if err == nil {
		t.Fatal("expected error for failing command")
	}

	var toolErr *toolcli.Error
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *toolcli.Error, got %T", err)
	}
	if toolErr.Tool != "shell" {
		t.Errorf("Tool = %q, want %q", toolErr.Tool, "shell")
	}
	if toolErr.Stderr != "broken" {
		t.Errorf("Stderr = %q, want %q", toolErr.Stderr, "broken")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Errorf("expected exit status 3, got %v", err)
	}
	if !strings.Contains(err.Error(), "'echo broken >&2; exit 3'") {
		t.Errorf("error should carry the quoted command line, got %q", err.Error())
	}
}

func TestCommandQuoting(t *testing.T) {
	runner := toolcli.New("convert", "/usr/bin/convert")
	got := runner.Command("-size", "400x600", "label:A B", "/tmp/out.jpg")
	want := "/usr/bin/convert -size 400x600 'label:A B' /tmp/out.jpg"
	if got != want {
		t.Errorf("Command() = %q, want %q", got, want)
	}
}

func TestLookupMissing(t *testing.T) {
	if _, err := toolcli.Lookup("slidecrawler-no-such-tool"); err == nil {
		t.Fatal("expected error for missing tool")
	}
}
