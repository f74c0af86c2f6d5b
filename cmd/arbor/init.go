package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/arbor/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize an arbor project",
	Long: `Initialize a directory for use with arbor.

This command:
  - Creates the .arbor directory (logs, signals, run ledger)
  - Writes a .arbor.yaml project configuration
  - Writes an example project.yaml to describe what to plan
  - Adds arbor entries to .gitignore

The directory argument is optional and defaults to the current directory.

Examples:
  arbor init              # Initialize current directory
  arbor init ./myproject  # Initialize specific directory
  arbor init --force      # Rewrite the templates`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration templates")
}

// exampleProject is written as project.yaml.
const exampleProject = `# Describe the project to plan, then run: arbor generate project.yaml
name: My Project
vision: >
  One or two sentences on what the project should achieve.
target_users:
  - Who will use it
constraints:
  - Budget, deadlines or compliance limits
must_have:
  - Features the roadmap has to cover
nice_to_have:
  - Features that can wait
tech_preferences:
  - Preferred languages, frameworks and services
notes: ""
`

var gitignoreEntries = []string{
	".arbor/logs/",
	".arbor/signals/",
	".arbor/metrics/",
	".arbor/state.db*",
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}
	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Fprintf(out, "Initializing arbor in %s...\n\n", absPath)

	if err := scaffold(out, absPath, initForce); err != nil {
		return err
	}

	cfg, err := config.LoadFromPath(filepath.Join(absPath, config.ProjectConfigName))
	if err != nil {
		return fmt.Errorf("load new project config: %w", err)
	}
	ws := newWorkspace(absPath, cfg)
	if db, err := ws.openLedger(); err != nil {
		printStatus(out, "⚠", fmt.Sprintf("Run ledger unavailable: %v", err), color.FgYellow)
	} else {
		db.Close()
		printStatus(out, "✓", "Created run ledger", color.FgGreen)
	}

	if _, source, err := config.ResolveAPIKey(cfg); err != nil {
		printStatus(out, "⚠", "ANTHROPIC_API_KEY not set (you can set it later, or use provider: bedrock)", color.FgYellow)
	} else {
		printStatus(out, "✓", fmt.Sprintf("API key found (%s)", source), color.FgGreen)
	}

	fmt.Fprintf(out, "\n%s arbor initialization complete!\n\n", color.GreenString("✓"))
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Describe your project in project.yaml")
	fmt.Fprintln(out, "  2. arbor generate project.yaml")
	fmt.Fprintln(out, "  3. arbor show <project>")
	return nil
}

// scaffold creates the .arbor layout and templates under root.
func scaffold(out io.Writer, root string, force bool) error {
	arborDir := filepath.Join(root, ".arbor")
	for _, dir := range []string{arborDir, filepath.Join(arborDir, "logs"), filepath.Join(arborDir, "signals")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	printStatus(out, "✓", "Created .arbor directory structure", color.FgGreen)

	templates := []struct {
		name    string
		content string
	}{
		{config.ProjectConfigName, config.ProjectTemplate},
		{"project.yaml", exampleProject},
	}
	for _, tmpl := range templates {
		written, err := writeTemplate(filepath.Join(root, tmpl.name), tmpl.content, force)
		if err != nil {
			return err
		}
		if written {
			printStatus(out, "✓", "Created "+tmpl.name, color.FgGreen)
		} else {
			printStatus(out, "○", tmpl.name+" exists (use --force to overwrite)", color.FgYellow)
		}
	}

	added, err := updateGitignore(root)
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	if added {
		printStatus(out, "✓", "Updated .gitignore with arbor entries", color.FgGreen)
	}
	return nil
}

// writeTemplate writes content to path unless the file exists and force is off.
func writeTemplate(path, content string, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// updateGitignore appends missing arbor entries. It reports whether
// anything was added.
func updateGitignore(root string) (bool, error) {
	path := filepath.Join(root, ".gitignore")

	var existing string
	if data, err := os.ReadFile(path); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(existing, "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, entry := range gitignoreEntries {
		if !present[entry] {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	var b strings.Builder
	b.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		b.WriteString("\n")
	}
	if existing != "" {
		b.WriteString("\n")
	}
	b.WriteString("# arbor\n")
	for _, entry := range missing {
		b.WriteString(entry + "\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return false, err
	}
	return true, nil
}
