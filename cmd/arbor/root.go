package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Hierarchical roadmap generator",
	Long: `Arbor turns a project description into a delivery roadmap:
milestones, epics, user stories and implementation tasks.

Each level is requested from Claude as structured output, validated, and
persisted before the next level is generated, so an interrupted run can
be picked up again with 'arbor resume'.

Typical flow:
  arbor init
  arbor generate project.yaml
  arbor show <project>
  arbor export <project> --format markdown`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(versionCmd)
}
