package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/herbal/internal/otel"
)

const sampleLog = `{"t":"2026-10-18T09:00:00Z","level":"info","kind":"sys.startup","comp":"main","user":"asha"}
{"t":"2026-10-18T09:00:01Z","level":"info","kind":"capture.start","comp":"capture"}
not json
{"t":"2026-10-18T09:00:02Z","level":"error","kind":"capture.error","comp":"capture","err":"exit status 1"}
{"t":"2026-10-18T09:00:03Z","level":"info","kind":"favorites.toggle","comp":"session","user":"ravi","plant":"Neem"}
`

func TestReadTailLines(t *testing.T) {
	all := func(eventRecord) bool { return true }

	lines := readTailLines(strings.NewReader(sampleLog), 2, all)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].ev.Kind != "capture.error" || lines[1].ev.Kind != "favorites.toggle" {
		t.Errorf("tail kinds = %s, %s", lines[0].ev.Kind, lines[1].ev.Kind)
	}

	if got := readTailLines(strings.NewReader(sampleLog), 0, all); len(got) != 0 {
		t.Errorf("tail 0 returned %d lines", len(got))
	}
}

func TestEventFilter(t *testing.T) {
	tests := []struct {
		name string
		f    eventFilter
		want int
	}{
		{"none", eventFilter{}, 4},
		{"kind prefix", eventFilter{kind: "capture"}, 2},
		{"min level", eventFilter{level: "warn"}, 1},
		{"comp", eventFilter{comp: "main"}, 1},
		{"user", eventFilter{user: "ravi"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readTailLines(strings.NewReader(sampleLog), 50, tt.f.match)
			if len(got) != tt.want {
				t.Errorf("matched %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	ev := eventRecord{
		Time:  time.Date(2026, 10, 18, 9, 0, 3, 0, time.UTC),
		Level: "info",
		Kind:  "favorites.toggle",
		Comp:  "session",
		User:  "ravi",
		Plant: "Neem",
		DurMs: 1.5,
	}
	got := formatEvent(ev, nil, false)
	for _, want := range []string{"09:00:03.000", "INFO", "favorites.toggle", "user=ravi", `plant="Neem"`, "(1.5ms)"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEvent missing %q: %s", want, got)
		}
	}

	raw := []byte(`{"kind":"x"}`)
	if got := formatEvent(eventRecord{}, raw, true); got != string(raw) {
		t.Errorf("raw = %q", got)
	}
}

func TestFollowEventsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- followEvents(ctx, strings.NewReader(sampleLog), &out, func(eventRecord) bool { return true }, true)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("followEvents: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("followEvents did not stop")
	}
	if n := strings.Count(out.String(), "\n"); n != 4 {
		t.Errorf("followed %d lines, want 4:\n%s", n, out.String())
	}
}

func TestEventsCommandReadsLoggerOutput(t *testing.T) {
	setupHome(t)
	path := filepath.Join(t.TempDir(), "events.jsonl")

	l, err := otel.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	l.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindCatalogDuplicate, Comp: "catalog", Plant: "Neem"})
	l.Info(otel.KindStartup, "main", "hello")
	l.Close()

	out := mustRun(t, "events", "--file", path, "--level", "warn", "--json")
	var ev eventRecord
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &ev); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if ev.Kind != string(otel.KindCatalogDuplicate) || ev.Plant != "Neem" {
		t.Errorf("event = %+v", ev)
	}

	if _, err := run(t, "events", "--file", filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("expected error for a missing log")
	}
	_ = os.Remove(path)
}
