package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/arbor/internal/state"
	"github.com/ShayCichocki/arbor/internal/storage"
)

var (
	statusRuns  int
	statusPrune time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List saved roadmaps and recent runs",
	Long: `Display every saved roadmap with its completeness and resume point,
followed by the most recent generate and resume runs from the ledger.`,
	Args: cobra.NoArgs,
	RunE: runStatusCmd,
}

func init() {
	statusCmd.Flags().IntVarP(&statusRuns, "runs", "n", 10, "Number of recent runs to show (0 for all)")
	statusCmd.Flags().DurationVar(&statusPrune, "prune", 0, "Delete finished runs older than this (e.g. 720h)")
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	entries, err := ws.store.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No roadmaps in %s. Run 'arbor generate <project.yaml>' to start.\n", ws.store.Dir())
	} else {
		fmt.Fprintf(out, "Roadmaps in %s:\n", ws.store.Dir())
		for _, e := range entries {
			describeEntry(out, ws, e)
		}
	}

	dbPath := ws.path(ws.cfg.State.DBPath)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil
	}
	db, err := ws.openLedger()
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer db.Close()

	if statusPrune > 0 {
		n, err := db.PurgeRunsBefore(time.Now().Add(-statusPrune))
		if err != nil {
			return fmt.Errorf("prune runs: %w", err)
		}
		fmt.Fprintf(out, "\nPruned %d runs older than %s\n", n, statusPrune)
	}

	runs, err := db.ListRuns("", statusRuns)
	if err != nil {
		return err
	}
	if len(runs) > 0 {
		fmt.Fprintln(out, "\nRecent runs:")
		for _, r := range runs {
			displayRun(out, r)
		}
	}
	return nil
}

func describeEntry(out io.Writer, ws *workspace, e storage.Entry) {
	rm, err := ws.store.Load(e.Path)
	if err != nil {
		printStatus(out, "✗", fmt.Sprintf("%s: %v", e.Slug, err), color.FgRed)
		return
	}
	c := rm.Counts()
	summary := fmt.Sprintf("%s (%d/%d/%d/%d, %dh, updated %s)",
		e.Slug, c.Milestones, c.Epics, c.Stories, c.Tasks, rm.TotalHours(), e.ModTime.Format("2006-01-02 15:04"))
	if point := storage.FindResumePoint(rm); point != nil {
		printStatus(out, "○", summary, color.FgYellow)
		fmt.Fprintf(out, "    resume at %s\n", point)
		return
	}
	printStatus(out, "✓", summary, color.FgGreen)
}

func displayRun(out io.Writer, r state.Run) {
	symbol, attr := "✓", color.FgGreen
	switch r.Status {
	case state.RunRunning:
		symbol, attr = "…", color.FgCyan
	case state.RunFailed:
		symbol, attr = "✗", color.FgRed
	case state.RunAborted, state.RunCanceled:
		symbol, attr = "⚠", color.FgYellow
	}

	line := fmt.Sprintf("%s %-8s %-20s %-9s %3d calls %7d tokens",
		r.StartedAt.Local().Format("2006-01-02 15:04"), r.Command, r.Project, r.Status,
		r.Calls, r.InputTokens+r.OutputTokens)
	if d := r.Duration(); d > 0 {
		line += fmt.Sprintf("  %s", d.Round(time.Second))
	}
	printStatus(out, symbol, line, attr)
	if r.Error != "" {
		fmt.Fprintf(out, "    %s\n", r.Error)
	}
}
