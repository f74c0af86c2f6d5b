package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/arbor/internal/orchestrator"
	"github.com/ShayCichocki/arbor/internal/storage"
	"github.com/ShayCichocki/arbor/pkg/models"
)

var (
	resumeInteractive bool
	resumeProvider    string
	resumeDryRun      bool
)

var resumeCmd = &cobra.Command{
	Use:   "resume <project|roadmap.json>",
	Short: "Finish an incomplete roadmap",
	Long: `Resume fills in every level that is still missing, depth first.

Complete milestones, epics and stories are skipped without any model call,
so resuming a finished roadmap does nothing.

Examples:
  arbor resume my-shop
  arbor resume roadmaps/my-shop.roadmap.json
  arbor resume my-shop --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().BoolVarP(&resumeInteractive, "interactive", "i", false, "Review each proposed batch before it is saved")
	resumeCmd.Flags().StringVar(&resumeProvider, "provider", "", "Override the configured provider (anthropic, bedrock)")
	resumeCmd.Flags().BoolVar(&resumeDryRun, "dry-run", false, "Show where generation would resume without calling the model")
}

func runResume(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	rm, path, err := ws.loadRoadmap(args[0])
	if err != nil {
		return err
	}

	point := storage.FindResumePoint(rm)
	if point == nil {
		printStatus(out, "✓", fmt.Sprintf("Roadmap %q is already complete; nothing to do", rm.ProjectName), color.FgGreen)
		return nil
	}
	fmt.Fprintf(out, "Resuming %s\n", color.New(color.Bold).Sprint(rm.ProjectName))
	fmt.Fprintf(out, "  Resume point: %s\n", point)
	fmt.Fprintf(out, "  Known expansions remaining: at least %d\n", orchestrator.EstimateResumeSteps(rm))
	describeLastRun(out, ws, rm.ProjectName)
	fmt.Fprintln(out)
	if resumeDryRun {
		return nil
	}

	rm, err = orchestrate(cmd, ws, runRequest{
		command:     "resume",
		project:     rm.ProjectName,
		provider:    resumeProvider,
		interactive: resumeInteractive || ws.cfg.Generation.Interactive,
	}, func(ctx context.Context, o *orchestrator.Orchestrator) (*models.Roadmap, error) {
		return o.Resume(ctx, rm)
	})
	if err != nil {
		reportFailure(out, args[0], err)
		return err
	}

	printSummary(out, rm, path)
	return nil
}

// describeLastRun mentions how the previous run for project ended, if the
// ledger has one.
func describeLastRun(out io.Writer, ws *workspace, project string) {
	if _, err := os.Stat(ws.path(ws.cfg.State.DBPath)); err != nil {
		return
	}
	db, err := ws.openLedger()
	if err != nil {
		return
	}
	defer db.Close()

	last, err := db.LatestRun(project)
	if err != nil {
		return
	}
	line := fmt.Sprintf("  Last run: %s %s at %s", last.Command, last.Status, last.StartedAt.Local().Format("2006-01-02 15:04"))
	if last.Error != "" {
		line += " (" + last.Error + ")"
	}
	fmt.Fprintln(out, line)
}
