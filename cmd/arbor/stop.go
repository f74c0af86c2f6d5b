package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/arbor/internal/notify"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask a running generate or resume to stop",
	Long: `Stop creates .arbor/signals/stop. A running generation notices it,
cancels its in-flight call and exits; everything saved so far can be
continued with 'arbor resume'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		w, err := notify.New(ws.arborDir())
		if err != nil {
			return fmt.Errorf("open signals directory: %w", err)
		}
		defer w.Close()

		if err := w.RequestStop(); err != nil {
			return fmt.Errorf("request stop: %w", err)
		}
		printStatus(cmd.OutOrStdout(), "✓", "Stop requested", color.FgGreen)
		return nil
	},
}
