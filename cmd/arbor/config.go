package main

import (
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ShayCichocki/arbor/internal/config"
)

var configProject bool

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify arbor configuration.

Without arguments, displays the effective configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/arbor/config.yaml
Project-specific overrides live in .arbor.yaml (use --project to write there).`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.Viper()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		out := cmd.OutOrStdout()

		switch len(args) {
		case 0:
			displayAllConfig(out, v)
			return nil
		case 1:
			value, err := configValue(v, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
			return nil
		default:
			path, err := configTarget(configProject)
			if err != nil {
				return err
			}
			if err := config.SetValue(path, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(out, "Set %s = %s in %s\n", args[0], displayValue(args[0], args[1]), path)
			return nil
		}
	},
}

func init() {
	configCmd.Flags().BoolVar(&configProject, "project", false, "Write to the project .arbor.yaml instead of the user config")
}

// displayAllConfig prints every known key with its effective value.
func displayAllConfig(out io.Writer, v *viper.Viper) {
	for _, key := range config.Keys() {
		fmt.Fprintf(out, "%s: %s\n", key, displayValue(key, v.GetString(key)))
	}
	guidance := v.GetStringMapString("generation.guidance")
	for _, level := range slices.Sorted(maps.Keys(guidance)) {
		fmt.Fprintf(out, "generation.guidance.%s: %s\n", level, guidance[level])
	}
}

// configValue retrieves a configuration value by dot-notation key.
func configValue(v *viper.Viper, key string) (string, error) {
	key = strings.ToLower(key)
	if !config.IsKey(key) {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return displayValue(key, v.GetString(key)), nil
}

// displayValue masks secrets and marks unset values.
func displayValue(key, value string) string {
	if value == "" {
		return "(not set)"
	}
	if key == "anthropic.api_key" {
		return config.MaskAPIKey(value)
	}
	return value
}

// configTarget picks the file a set writes to.
func configTarget(project bool) (string, error) {
	if !project {
		return config.GetUserConfigPath(), nil
	}
	if path := config.GetProjectConfigPath(); path != "" {
		return path, nil
	}
	abs, err := filepath.Abs(config.ProjectConfigName)
	if err != nil {
		return "", err
	}
	return abs, nil
}
