// Package review provides interactive reviewers that approve, regenerate
// or abort each proposed skeleton list before it becomes shells.
package review

import (
	"fmt"
	"io"
	"strings"

	"github.com/ShayCichocki/arbor/internal/orchestrator"
	"github.com/ShayCichocki/arbor/pkg/models"
)

// Reviewer kinds accepted by New.
const (
	KindTerminal = "terminal"
	KindTUI      = "tui"
)

// New builds a reviewer by kind. Terminal reviewers read from in and write
// to out; the TUI reviewer takes over the terminal.
func New(kind string, in io.Reader, out io.Writer) (orchestrator.Reviewer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindTerminal:
		return NewTerminalReviewer(in, out), nil
	case KindTUI:
		return NewTUIReviewer(in, out), nil
	}
	return nil, fmt.Errorf("unknown reviewer %q: must be %q or %q", kind, KindTerminal, KindTUI)
}

func title(req orchestrator.ReviewRequest) string {
	s := fmt.Sprintf("Proposed %s for %q", req.Level.Plural(), req.Parent)
	if req.Round > 1 {
		s += fmt.Sprintf(" (round %d)", req.Round)
	}
	return s
}

// detailLines are the indented lines shown under an item.
func detailLines(sk models.Skeleton) []string {
	var lines []string
	if sk.Goal != "" {
		lines = append(lines, "Goal: "+sk.Goal)
	}
	if sk.Description != "" {
		lines = append(lines, sk.Description)
	}
	for _, ac := range sk.AcceptanceCriteria {
		lines = append(lines, "- "+ac)
	}
	return lines
}
