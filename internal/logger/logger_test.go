package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	if IsVerbose() {
		t.Error("expected verbose to be false")
	}
	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestQuietMode_SuppressesDebugInfoSection(t *testing.T) {
	buf := capture(t, false)

	Debug("debug %d", 1)
	Info("info %s", "x")
	Section("Ingest")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestQuietMode_PrintsWarnAndError(t *testing.T) {
	buf := capture(t, false)

	Warn("skipping %s", "a.docx")
	Error("failed: %v", "boom")

	want := "[WARN] skipping a.docx\n[ERROR] failed: boom\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestVerboseMode(t *testing.T) {
	buf := capture(t, true)

	Section("Retrieve")
	Debug("top_k=%d", 3)
	Info("found %d", 2)

	out := buf.String()
	for _, want := range []string{"\n=== Retrieve ===\n", "[DEBUG] top_k=3\n", "[INFO] found 2\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}
