package review

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ShayCichocki/arbor/internal/orchestrator"
)

// TerminalReviewer prompts on a line-oriented terminal.
type TerminalReviewer struct {
	reader *bufio.Reader
	out    io.Writer

	header *color.Color
	name   *color.Color
	dim    *color.Color
	warn   *color.Color
}

// NewTerminalReviewer creates a reviewer reading answers from in.
func NewTerminalReviewer(in io.Reader, out io.Writer) *TerminalReviewer {
	return &TerminalReviewer{
		reader: bufio.NewReader(in),
		out:    out,
		header: color.New(color.FgCyan, color.Bold),
		name:   color.New(color.Bold),
		dim:    color.New(color.Faint),
		warn:   color.New(color.FgYellow),
	}
}

// Review prints the proposed items and asks for a decision until a valid
// answer is given. End of input counts as abort.
func (r *TerminalReviewer) Review(ctx context.Context, req orchestrator.ReviewRequest) (orchestrator.Decision, error) {
	if err := ctx.Err(); err != nil {
		return orchestrator.DecisionAbort, err
	}

	fmt.Fprintln(r.out)
	r.header.Fprintln(r.out, title(req))
	fmt.Fprintln(r.out, strings.Repeat("-", 60))
	for i, item := range req.Items {
		fmt.Fprintf(r.out, "%2d. ", i+1)
		r.name.Fprint(r.out, item.Name)
		fmt.Fprintf(r.out, " [%s]\n", item.Priority)
		for _, line := range detailLines(item) {
			r.dim.Fprintf(r.out, "    %s\n", line)
		}
	}
	fmt.Fprintln(r.out, strings.Repeat("-", 60))

	for {
		if err := ctx.Err(); err != nil {
			return orchestrator.DecisionAbort, err
		}
		fmt.Fprint(r.out, "[a]pprove, [r]egenerate, [q]uit: ")

		line, err := r.reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return orchestrator.DecisionAbort, nil
			}
			return orchestrator.DecisionAbort, fmt.Errorf("read review input: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "a", "approve", "y", "yes", "":
			return orchestrator.DecisionApprove, nil
		case "r", "regenerate":
			return orchestrator.DecisionRegenerate, nil
		case "q", "quit", "abort":
			return orchestrator.DecisionAbort, nil
		default:
			r.warn.Fprintf(r.out, "Unrecognised answer %q.\n", strings.TrimSpace(line))
		}
	}
}
