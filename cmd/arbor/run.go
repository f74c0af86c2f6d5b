package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/arbor/internal/generate"
	"github.com/ShayCichocki/arbor/internal/metrics"
	"github.com/ShayCichocki/arbor/internal/notify"
	"github.com/ShayCichocki/arbor/internal/orchestrator"
	"github.com/ShayCichocki/arbor/internal/review"
	"github.com/ShayCichocki/arbor/internal/state"
	"github.com/ShayCichocki/arbor/pkg/models"
)

// runRequest describes one orchestrated command invocation.
type runRequest struct {
	command     string
	project     string
	provider    string
	interactive bool
}

type orchestrateFunc func(ctx context.Context, o *orchestrator.Orchestrator) (*models.Roadmap, error)

// orchestrate wires the orchestrator to the configured client, reviewer,
// debug log, metrics, run ledger and stop signal, then runs fn.
func orchestrate(cmd *cobra.Command, ws *workspace, req runRequest, fn orchestrateFunc) (*models.Roadmap, error) {
	cfg := *ws.cfg
	if req.provider != "" {
		cfg.Provider = req.provider
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	out := cmd.OutOrStdout()

	reg, client, err := buildRegistry(&cfg)
	if err != nil {
		return nil, err
	}

	logger := orchestrator.NopLogger()
	if cfg.Logging.DebugLog != "" {
		if l, err := orchestrator.NewDebugLogger(ws.path(cfg.Logging.DebugLog)); err == nil {
			logger = l
		} else {
			printStatus(out, "⚠", fmt.Sprintf("Debug log disabled: %v", err), color.FgYellow)
		}
	}
	defer logger.Close()
	runID := uuid.NewString()
	logger = logger.WithPrefix(req.command + " " + runID[:8])

	m := metrics.New()
	printer := newEventPrinter(out)
	opts := []orchestrator.Option{
		orchestrator.WithMaxAttempts(cfg.Generation.MaxAttempts),
		orchestrator.WithLogger(logger),
		orchestrator.WithEventHandler(func(ev orchestrator.Event) {
			logger.Event(ev)
			m.HandleEvent(ev)
			printer.handle(ev)
		}),
	}
	for level, text := range cfg.Generation.Guidance {
		opts = append(opts, orchestrator.WithGuidance(models.Level(level), text))
	}
	if req.interactive {
		r, err := review.New(cfg.Generation.Reviewer, cmd.InOrStdin(), out)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithReviewer(r))
	}

	o, err := orchestrator.New(orchestrator.RequiredConfig{
		Clients:  reg,
		Provider: cfg.Provider,
		Saver:    ws.store,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}

	ledger, err := ws.openLedger()
	if err != nil {
		printStatus(out, "⚠", fmt.Sprintf("Run ledger unavailable: %v", err), color.FgYellow)
		ledger = nil
	}
	if ledger != nil {
		defer ledger.Close()
	}
	run := &state.Run{
		ID:          runID,
		Command:     req.command,
		Project:     req.project,
		RoadmapPath: ws.store.RoadmapPath(req.project),
		Provider:    cfg.Provider,
		Model:       string(client.Model()),
		StartedAt:   time.Now(),
	}
	if ledger != nil {
		if err := ledger.CreateRun(run); err != nil {
			logger.Log("ledger create run: %v", err)
		}
	}

	sigCtx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := sigCtx, context.CancelFunc(func() {})
	if watcher, err := notify.New(ws.arborDir()); err == nil {
		defer watcher.Close()
		if err := watcher.Clear(); err != nil {
			logger.Log("clear stale stop file: %v", err)
		}
		ctx, cancel = watcher.Bind(sigCtx)
	} else {
		logger.Log("stop watcher unavailable: %v", err)
	}
	defer cancel()

	logger.Log("project=%q run=%s provider=%s model=%s", req.project, run.ID, cfg.Provider, run.Model)
	rm, runErr := fn(ctx, o)

	inTok, outTok := client.Tracker().Total()
	m.AddTokens(inTok, outTok)
	m.ObserveRun(req.command, time.Since(run.StartedAt), runErr)

	if ledger != nil {
		run.Calls = client.Tracker().Calls()
		run.InputTokens = inTok
		run.OutputTokens = outTok
		if err := ledger.FinishRun(run, runStatus(runErr), runErr, time.Now()); err != nil {
			logger.Log("ledger finish run: %v", err)
		}
	}
	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(ws.path(cfg.Metrics.Textfile)); err != nil {
			printStatus(out, "⚠", err.Error(), color.FgYellow)
		}
	}

	if added := printer.summary(); added != "" {
		fmt.Fprintf(out, "\n%s\n", added)
	}
	fmt.Fprintf(out, "\n%d model calls, %d input / %d output tokens (≈ $%.2f)\n",
		client.Tracker().Calls(), inTok, outTok, client.Tracker().Cost())
	return rm, runErr
}

// runStatus maps a run error to its ledger status.
func runStatus(err error) state.RunStatus {
	switch {
	case err == nil:
		return state.RunCompleted
	case errors.Is(err, orchestrator.ErrAborted):
		return state.RunAborted
	case errors.Is(err, context.Canceled):
		return state.RunCanceled
	default:
		return state.RunFailed
	}
}

// reportFailure prints what went wrong and how to continue. The roadmap on
// disk is left as the last successful save.
func reportFailure(out io.Writer, project string, err error) {
	var genErr *generate.GenerationError
	switch {
	case errors.As(err, &genErr):
		printStatus(out, "✗", fmt.Sprintf("%s generation failed after %d attempts", genErr.Level.Title(), genErr.Attempts), color.FgRed)
		for i, e := range genErr.Errors {
			fmt.Fprintf(out, "    attempt %d: %v\n", i+1, e)
		}
	case errors.Is(err, orchestrator.ErrAborted):
		printStatus(out, "✗", "Aborted during review", color.FgRed)
	case errors.Is(err, context.Canceled):
		printStatus(out, "⚠", "Stopped", color.FgYellow)
	default:
		printStatus(out, "✗", err.Error(), color.FgRed)
	}
	fmt.Fprintf(out, "\nProgress is saved. Continue with:\n  arbor resume %s\n", project)
}

// printStatus prints a status line with color
func printStatus(out io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(out, "%s %s\n", c.Sprint(symbol), message)
}

// eventPrinter renders orchestrator events as console progress lines.
type eventPrinter struct {
	out  io.Writer
	dim  *color.Color
	made map[models.Level]int
}

func newEventPrinter(out io.Writer) *eventPrinter {
	return &eventPrinter{out: out, dim: color.New(color.Faint), made: make(map[models.Level]int)}
}

func (p *eventPrinter) handle(ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventExpansionStarted:
		p.dim.Fprintf(p.out, "→ %s: generating %s\n", ev.NodeName, ev.Level.Plural())
	case orchestrator.EventAttemptFailed:
		printStatus(p.out, "⚠", fmt.Sprintf("%s attempt %d/%d failed: %v", ev.Level, ev.Attempt, ev.MaxAttempts, ev.Error), color.FgYellow)
	case orchestrator.EventShellsSaved, orchestrator.EventTasksSaved:
		p.made[ev.Level] += ev.Count
		printStatus(p.out, "✓", fmt.Sprintf("%s: %d %s saved", ev.NodeName, ev.Count, plural(ev.Level, ev.Count)), color.FgGreen)
	case orchestrator.EventNodeSkipped:
		p.dim.Fprintf(p.out, "· %s %q already complete\n", ev.Level, ev.NodeName)
	case orchestrator.EventReviewRegenerate:
		printStatus(p.out, "↻", fmt.Sprintf("%s: regenerating %s", ev.NodeName, ev.Level.Plural()), color.FgCyan)
	}
}

// summary lists how many nodes of each level were saved during the run,
// top level first. It is empty when nothing was saved.
func (p *eventPrinter) summary() string {
	var parts []string
	for _, level := range models.Levels {
		if n := p.made[level]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, plural(level, n)))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Added " + strings.Join(parts, ", ")
}

func plural(level models.Level, n int) string {
	if n == 1 {
		return string(level)
	}
	return level.Plural()
}
