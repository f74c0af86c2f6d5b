package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/arbor/internal/orchestrator"
	"github.com/ShayCichocki/arbor/internal/storage"
	"github.com/ShayCichocki/arbor/pkg/models"
)

var (
	generateInteractive bool
	generateProvider    string
	generateForce       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <project.yaml>",
	Short: "Generate a complete roadmap from a project description",
	Long: `Generate a roadmap from a project description file (YAML or JSON).

Milestones are generated first, then epics for each milestone, stories for
each epic and tasks for each story. Every batch is saved before the next
level is requested, so a failure leaves a roadmap that 'arbor resume' can
finish.

Examples:
  arbor generate project.yaml
  arbor generate project.yaml --interactive
  arbor generate project.json --provider bedrock`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVarP(&generateInteractive, "interactive", "i", false, "Review each proposed batch before it is saved")
	generateCmd.Flags().StringVar(&generateProvider, "provider", "", "Override the configured provider (anthropic, bedrock)")
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "Overwrite an existing roadmap for this project")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	pc, err := storage.LoadProjectContext(args[0])
	if err != nil {
		return err
	}
	if ws.store.Exists(pc.Name) && !generateForce {
		return fmt.Errorf("a roadmap for %q already exists at %s; use 'arbor resume %s' or --force",
			pc.Name, ws.store.RoadmapPath(pc.Name), storage.Slugify(pc.Name))
	}

	fmt.Fprintf(out, "Generating roadmap for %s...\n\n", color.New(color.Bold).Sprint(pc.Name))

	rm, err := orchestrate(cmd, ws, runRequest{
		command:     "generate",
		project:     pc.Name,
		provider:    generateProvider,
		interactive: generateInteractive || ws.cfg.Generation.Interactive,
	}, func(ctx context.Context, o *orchestrator.Orchestrator) (*models.Roadmap, error) {
		return o.Generate(ctx, pc)
	})
	if err != nil {
		reportFailure(out, storage.Slugify(pc.Name), err)
		return err
	}

	printSummary(out, rm, ws.store.RoadmapPath(pc.Name))
	return nil
}

// printSummary prints the counts and where the roadmap lives.
func printSummary(out io.Writer, rm *models.Roadmap, path string) {
	c := rm.Counts()
	fmt.Fprintf(out, "\n%s Roadmap complete: %d milestones, %d epics, %d stories, %d tasks (%d hours)\n",
		color.GreenString("✓"), c.Milestones, c.Epics, c.Stories, c.Tasks, rm.TotalHours())
	fmt.Fprintf(out, "  Saved to %s\n", path)
}
