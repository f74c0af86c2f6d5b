package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/arbor/internal/export"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <project|roadmap.json>",
	Short: "Export a roadmap as Markdown, CSV or JSON",
	Long: `Export renders a saved roadmap for other tools.

  markdown  nested outline with task checklists
  csv       one row per task with its milestone, epic and story
  json      the roadmap document itself

Examples:
  arbor export my-shop
  arbor export my-shop --format csv -o tasks.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "Output format: markdown, csv, json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "Output file ('-' for stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	rm, _, err := ws.loadRoadmap(args[0])
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "-" && exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutput, err)
		}
		defer f.Close()
		w = f
	}

	if err := export.Write(w, rm, format); err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	if f, ok := w.(*os.File); ok && f != os.Stdout {
		if err := f.Sync(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", exportOutput)
	}
	return nil
}
