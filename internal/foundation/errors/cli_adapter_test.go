package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("invalid input").Build(), 2},
		{"config", ConfigError("bad config").Build(), 7},
		{"layout", PageError(CategoryLayout, "missing").Build(), 9},
		{"filesystem", FileSystemError("disk").Build(), 11},
		{"unclassified", errors.New("unknown error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	pageErr := WrapError(errors.New(`layout "post" not found`), CategoryLayout, "layout resolution failed").
		WithContext("path", "blog/first.md").
		WithContext("stage", "layout").
		Build()

	got := adapter.FormatError(pageErr)
	want := `Error: blog/first.md (layout): layout resolution failed: layout "post" not found`
	if got != want {
		t.Errorf("FormatError() = %q, want %q", got, want)
	}

	if adapter.FormatError(nil) != "" {
		t.Error("expected empty string for nil error")
	}
	if got := adapter.FormatError(errors.New("plain")); got != "Error: plain" {
		t.Errorf("unexpected plain format %q", got)
	}

	joined := errors.Join(pageErr, PageError(CategoryTemplate, "render failed").WithContext("path", "about.html").Build())
	lines := strings.Split(adapter.FormatError(joined), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one line per joined error, got %d", len(lines))
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out

	code := adapter.HandleError(ConfigError("config file not found").Build())
	if code != 7 {
		t.Errorf("expected exit code 7, got %d", code)
	}
	if !strings.Contains(out.String(), "config file not found") {
		t.Errorf("expected message on output, got %q", out.String())
	}
	if !strings.Contains(logs.String(), "category=config") {
		t.Errorf("expected category in logs, got %q", logs.String())
	}
}
