package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesDatedFile(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Info("catalog loaded", "count", 10)
	Close()

	files, _ := filepath.Glob(filepath.Join(dir, "logs", "herbal-*.log"))
	if len(files) != 1 {
		t.Fatalf("log files = %v", files)
	}
	data, _ := os.ReadFile(files[0])
	for _, want := range []string{"herbal started", "catalog loaded", "count=10", "shutting down"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log missing %q:\n%s", want, data)
		}
	}
}

func TestInitWriterLevels(t *testing.T) {
	defer func() { Logger = nil }()

	var buf bytes.Buffer
	InitWriter(&buf, false)
	Debug("hidden")
	Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("info level output:\n%s", buf.String())
	}

	buf.Reset()
	InitWriter(&buf, true)
	Debug("visible now")
	if !strings.Contains(buf.String(), "visible now") {
		t.Errorf("debug level output:\n%s", buf.String())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	Logger = nil
	Info("x")
	Error("y")
	if WithPrefix("p") != nil {
		t.Error("WithPrefix should be nil without a logger")
	}
}
