package logfields

import (
	"errors"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    interface{}
	}{
		{"BuildID", KeyBuildID, "b-1", BuildID("b-1")},
		{"Stage", KeyStage, "layout", Stage("layout")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Source", KeySource, "index.md", Source("index.md")},
		{"Output", KeyOutput, "index.html", Output("index.html")},
		{"Layout", KeyLayout, "default", Layout("default")},
		{"Engine", KeyEngine, "liquid", Engine("liquid")},
		{"URL", KeyURL, "nats://x", URL("nats://x")},
		{"Subject", KeySubject, "site.built", Subject("site.built")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, ok := c.attr.(interface {
				String() string
			})
			if !ok {
				t.Fatalf("attr does not implement String()")
			}
			want := c.attrKey + "=" + c.attrVal
			if got := a.String(); got != want {
				t.Fatalf("got %q want %q", got, want)
			}
		})
	}
}

func TestNumericAndErrorHelpers(t *testing.T) {
	if got := Count(3).String(); got != "count=3" {
		t.Fatalf("Count: got %q", got)
	}
	if got := DurationMS(1.5).String(); got != "duration_ms=1.5" {
		t.Fatalf("DurationMS: got %q", got)
	}
	if got := Error(nil).String(); got != "error=" {
		t.Fatalf("Error(nil): got %q", got)
	}
	if got := Error(errors.New("boom")).String(); got != "error=boom" {
		t.Fatalf("Error: got %q", got)
	}
}
