// Package export renders a roadmap into formats other tools consume.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ShayCichocki/arbor/pkg/models"
)

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatMarkdown, FormatCSV, FormatJSON}

// ParseFormat accepts a format name or a common alias ("md").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown export format %q: must be one of markdown, csv, json", s)
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	default:
		return ".json"
	}
}

// Write renders rm to w in the given format.
func Write(w io.Writer, rm *models.Roadmap, f Format) error {
	if rm == nil {
		return fmt.Errorf("export: roadmap is nil")
	}
	switch f {
	case FormatMarkdown:
		return Markdown(w, rm)
	case FormatCSV:
		return CSV(w, rm)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rm)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// Markdown writes a nested outline with numbered headings, a totals table
// and a checkbox list of tasks per story. Levels that have not been
// generated yet are called out so partial roadmaps read sensibly.
func Markdown(w io.Writer, rm *models.Roadmap) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", rm.ProjectName)
	paragraph(&b, rm.Context.Vision)

	c := rm.Counts()
	b.WriteString("\n| Milestones | Epics | Stories | Tasks | Hours |\n")
	b.WriteString("|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n", c.Milestones, c.Epics, c.Stories, c.Tasks, rm.TotalHours())

	if len(rm.Milestones) == 0 {
		pending(&b, "milestones")
	}
	for i, m := range rm.Milestones {
		mNum := strconv.Itoa(i + 1)
		fmt.Fprintf(&b, "\n## Milestone %s: %s\n", mNum, m.Name)
		meta(&b, m.Priority, m.Status, m.Goal)
		paragraph(&b, m.Description)
		if len(m.Epics) == 0 {
			pending(&b, "epics")
		}

		for j, e := range m.Epics {
			eNum := mNum + "." + strconv.Itoa(j+1)
			fmt.Fprintf(&b, "\n### Epic %s: %s\n", eNum, e.Name)
			meta(&b, e.Priority, e.Status, e.Goal)
			paragraph(&b, e.Description)
			if len(e.Stories) == 0 {
				pending(&b, "stories")
			}

			for k, s := range e.Stories {
				sNum := eNum + "." + strconv.Itoa(k+1)
				fmt.Fprintf(&b, "\n#### Story %s: %s\n", sNum, s.Name)
				meta(&b, s.Priority, s.Status, "")
				paragraph(&b, s.Description)
				if len(s.AcceptanceCriteria) > 0 {
					b.WriteString("\nAcceptance criteria:\n\n")
					for _, ac := range s.AcceptanceCriteria {
						fmt.Fprintf(&b, "- %s\n", ac)
					}
				}
				if len(s.Tasks) == 0 {
					pending(&b, "tasks")
					continue
				}
				writeTasks(&b, sNum, s.Tasks)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTasks(b *strings.Builder, storyNum string, tasks []*models.Task) {
	numbers := make(map[string]string, len(tasks))
	for i, t := range tasks {
		numbers[t.ID] = storyNum + "." + strconv.Itoa(i+1)
	}

	b.WriteString("\nTasks:\n\n")
	for _, t := range tasks {
		box := " "
		if t.Status == models.StatusCompleted {
			box = "x"
		}
		details := []string{string(t.Priority), strconv.Itoa(t.EstimatedHours) + "h"}
		if len(t.Prerequisites) > 0 {
			after := make([]string, len(t.Prerequisites))
			for i, id := range t.Prerequisites {
				after[i] = id
				if n, ok := numbers[id]; ok {
					after[i] = n
				}
			}
			details = append(details, "after "+strings.Join(after, ", "))
		}
		fmt.Fprintf(b, "- [%s] %s %s (%s)\n", box, numbers[t.ID], t.Name, strings.Join(details, ", "))
	}
}

func meta(b *strings.Builder, p models.Priority, s models.Status, goal string) {
	fmt.Fprintf(b, "\n- Priority: %s\n- Status: %s\n", p, s.OrDefault())
	if goal = strings.TrimSpace(goal); goal != "" {
		fmt.Fprintf(b, "- Goal: %s\n", goal)
	}
}

func paragraph(b *strings.Builder, text string) {
	if text = strings.TrimSpace(text); text != "" {
		fmt.Fprintf(b, "\n%s\n", text)
	}
}

func pending(b *strings.Builder, what string) {
	fmt.Fprintf(b, "\n_No %s generated yet._\n", what)
}

var csvHeader = []string{
	"milestone", "epic", "story", "task_id", "task", "priority", "status",
	"estimated_hours", "prerequisites", "acceptance_criteria",
}

// CSV writes one row per task with its lineage. Prerequisites are listed
// by task name, separated by semicolons.
func CSV(w io.Writer, rm *models.Roadmap) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, m := range rm.Milestones {
		for _, e := range m.Epics {
			for _, s := range e.Stories {
				names := make(map[string]string, len(s.Tasks))
				for _, t := range s.Tasks {
					names[t.ID] = t.Name
				}
				for _, t := range s.Tasks {
					prereqs := make([]string, len(t.Prerequisites))
					for i, id := range t.Prerequisites {
						prereqs[i] = id
						if n, ok := names[id]; ok {
							prereqs[i] = n
						}
					}
					row := []string{
						m.Name, e.Name, s.Name, t.ID, t.Name,
						string(t.Priority), string(t.Status.OrDefault()),
						strconv.Itoa(t.EstimatedHours),
						strings.Join(prereqs, ";"),
						strings.Join(t.AcceptanceCriteria, "; "),
					}
					if err := cw.Write(row); err != nil {
						return fmt.Errorf("write csv row for task %s: %w", t.ID, err)
					}
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
