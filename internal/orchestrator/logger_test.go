package orchestrator

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/arbor/pkg/models"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 9, 30, 15, 250_000_000, time.UTC)
}

func TestDebugLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	l, err := NewDebugLogger(path)
	if err != nil {
		t.Fatalf("NewDebugLogger failed: %v", err)
	}
	l.Log("expand %s %q", "milestone", "MVP")
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "--- arbor ") {
		t.Error("log should start with a session header")
	}
	if !strings.Contains(content, `expand milestone "MVP"`) {
		t.Errorf("log missing message: %s", content)
	}
}

func TestDebugLogger_EmptyPathIsNop(t *testing.T) {
	l, err := NewDebugLogger("")
	if err != nil {
		t.Fatalf("NewDebugLogger(\"\") failed: %v", err)
	}
	l.Log("ignored")
	if err := l.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}

func TestDebugLogger_Prefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, fixedClock)

	l.Log("plain")
	run := l.WithPrefix("run 1a2b")
	run.Log("saved %d shells", 3)
	run.WithPrefix("resume").Log("nested")

	want := "[09:30:15.250] plain\n" +
		"[09:30:15.250] [run 1a2b] saved 3 shells\n" +
		"[09:30:15.250] [run 1a2b resume] nested\n"
	if buf.String() != want {
		t.Errorf("log =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestDebugLogger_Event(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, fixedClock)

	l.Event(Event{Type: EventShellsSaved, Level: models.LevelEpic, NodeName: "MVP", Count: 2, Path: "roadmaps/shop.roadmap.json"})
	l.Event(Event{Type: EventAttemptFailed, Level: models.LevelTask, NodeName: "Browse", Attempt: 2, MaxAttempts: 3, Error: errors.New("no tasks")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], `event shells_saved level=epic node="MVP" count=2 path=roadmaps/shop.roadmap.json`) {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], `event attempt_failed level=task node="Browse" attempt=2/3 err="no tasks"`) {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestDebugLogger_NilAndNop(t *testing.T) {
	var l *DebugLogger
	l.Log("ignored")
	l.Event(Event{Type: EventNodeSkipped})
	if l.WithPrefix("x") != nil {
		t.Error("WithPrefix on nil logger should stay nil")
	}
	if err := l.Close(); err != nil {
		t.Errorf("nil Close = %v", err)
	}

	nop := NopLogger()
	nop.WithPrefix("run").Log("ignored")
	if err := nop.Close(); err != nil {
		t.Errorf("nop Close = %v", err)
	}
}
