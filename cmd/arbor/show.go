package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/arbor/internal/storage"
	"github.com/ShayCichocki/arbor/pkg/models"
)

var showTasks bool

var showCmd = &cobra.Command{
	Use:   "show <project|roadmap.json>",
	Short: "Render a roadmap as a tree",
	Long: `Show prints the roadmap hierarchy with completeness markers, priorities
and hour estimates, followed by the resume point if generation is not
finished.

Examples:
  arbor show my-shop
  arbor show my-shop --tasks`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showTasks, "tasks", false, "Include individual tasks")
}

func runShow(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	rm, _, err := ws.loadRoadmap(args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), renderRoadmap(rm, showTasks))
	return nil
}

var (
	rootStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	priorityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	enumStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).MarginRight(1)
)

// renderRoadmap returns the tree view plus a summary and resume point.
func renderRoadmap(rm *models.Roadmap, withTasks bool) string {
	c := rm.Counts()
	root := tree.Root(rootStyle.Render(rm.ProjectName)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle)

	for _, m := range rm.Milestones {
		mt := tree.Root(nodeLabel(m.IsComplete(), m.Name, m.Priority, m.TotalHours(), pendingNote(len(m.Epics), models.LevelEpic)))
		for _, e := range m.Epics {
			et := tree.Root(nodeLabel(e.IsComplete(), e.Name, e.Priority, e.TotalHours(), pendingNote(len(e.Stories), models.LevelStory)))
			for _, s := range e.Stories {
				label := nodeLabel(s.IsComplete(), s.Name, s.Priority, s.TotalHours(), pendingNote(len(s.Tasks), models.LevelTask))
				if !withTasks || len(s.Tasks) == 0 {
					if len(s.Tasks) > 0 {
						label += mutedStyle.Render(fmt.Sprintf(" %d tasks", len(s.Tasks)))
					}
					et.Child(label)
					continue
				}
				st := tree.Root(label)
				for _, t := range s.Tasks {
					st.Child(fmt.Sprintf("%s %s", t.Name, mutedStyle.Render(fmt.Sprintf("(%s, %dh)", t.Priority, t.EstimatedHours))))
				}
				et.Child(st)
			}
			mt.Child(et)
		}
		root.Child(mt)
	}

	var b strings.Builder
	b.WriteString(root.String())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%d milestones · %d epics · %d stories · %d tasks · %d hours\n",
		c.Milestones, c.Epics, c.Stories, c.Tasks, rm.TotalHours())
	if point := storage.FindResumePoint(rm); point != nil {
		b.WriteString(pendingStyle.Render("Resume point: " + point.String()))
		b.WriteString("\n")
	} else {
		b.WriteString(doneStyle.Render("Complete"))
		b.WriteString("\n")
	}
	return b.String()
}

func nodeLabel(complete bool, name string, p models.Priority, hours int, note string) string {
	marker := pendingStyle.Render("○")
	if complete {
		marker = doneStyle.Render("✓")
	}
	label := fmt.Sprintf("%s %s %s", marker, name, priorityStyle.Render("["+string(p)+"]"))
	if hours > 0 {
		label += mutedStyle.Render(fmt.Sprintf(" %dh", hours))
	}
	if note != "" {
		label += " " + pendingStyle.Render(note)
	}
	return label
}

func pendingNote(children int, level models.Level) string {
	if children > 0 {
		return ""
	}
	return "(no " + level.Plural() + " yet)"
}
