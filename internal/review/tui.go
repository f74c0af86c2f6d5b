package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/arbor/internal/orchestrator"
)

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	Approve    key.Binding
	Regenerate key.Binding
	Abort      key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "details"),
	),
	Approve: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "approve"),
	),
	Regenerate: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "regenerate"),
	),
	Abort: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "abort"),
	),
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			PaddingLeft(6)

	priorityStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

type reviewModel struct {
	req      orchestrator.ReviewRequest
	cursor   int
	expanded map[int]bool
	decision *orchestrator.Decision
}

func newReviewModel(req orchestrator.ReviewRequest) reviewModel {
	return reviewModel{req: req, expanded: make(map[int]bool)}
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.req.Items)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Toggle):
		m.expanded[m.cursor] = !m.expanded[m.cursor]
	case key.Matches(keyMsg, keys.Approve):
		return m.decide(orchestrator.DecisionApprove)
	case key.Matches(keyMsg, keys.Regenerate):
		return m.decide(orchestrator.DecisionRegenerate)
	case key.Matches(keyMsg, keys.Abort):
		return m.decide(orchestrator.DecisionAbort)
	}
	return m, nil
}

func (m reviewModel) decide(d orchestrator.Decision) (tea.Model, tea.Cmd) {
	m.decision = &d
	return m, tea.Quit
}

func (m reviewModel) View() string {
	if m.decision != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title(m.req)))
	b.WriteString("\n")

	for i, item := range m.req.Items {
		cursor := "  "
		name := item.Name
		if i == m.cursor {
			cursor = "> "
			name = selectedItemStyle.Render(name)
		}
		line := fmt.Sprintf("%s%d. %s %s", cursor, i+1, name, priorityStyle.Render("["+item.Priority+"]"))
		b.WriteString(itemStyle.Render(line))
		b.WriteString("\n")
		if m.expanded[i] {
			for _, d := range detailLines(item) {
				b.WriteString(detailStyle.Render(d))
				b.WriteString("\n")
			}
		}
	}

	help := []string{}
	for _, k := range []key.Binding{keys.Up, keys.Down, keys.Toggle, keys.Approve, keys.Regenerate, keys.Abort} {
		h := k.Help()
		help = append(help, h.Key+": "+h.Desc)
	}
	b.WriteString(helpStyle.Render(strings.Join(help, " | ")))
	b.WriteString("\n")
	return b.String()
}

// TUIReviewer shows each proposal in a bubbletea list.
type TUIReviewer struct {
	opts []tea.ProgramOption
}

// NewTUIReviewer creates a reviewer bound to the given terminal streams.
func NewTUIReviewer(in io.Reader, out io.Writer) *TUIReviewer {
	return &TUIReviewer{opts: []tea.ProgramOption{tea.WithInput(in), tea.WithOutput(out)}}
}

// Review runs the program until a decision key is pressed. An empty
// proposal is approved without prompting.
func (r *TUIReviewer) Review(ctx context.Context, req orchestrator.ReviewRequest) (orchestrator.Decision, error) {
	if len(req.Items) == 0 {
		return orchestrator.DecisionApprove, nil
	}

	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, r.opts...)
	final, err := tea.NewProgram(newReviewModel(req), opts...).Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return orchestrator.DecisionAbort, ctxErr
	}
	if err != nil {
		return orchestrator.DecisionAbort, fmt.Errorf("run review UI: %w", err)
	}

	m, ok := final.(reviewModel)
	if !ok {
		return orchestrator.DecisionAbort, fmt.Errorf("unexpected model type: %T", final)
	}
	if m.decision == nil {
		return orchestrator.DecisionAbort, errors.New("review UI exited without a decision")
	}
	return *m.decision, nil
}
