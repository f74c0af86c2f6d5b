// Package prompt renders the system and user prompts for each roadmap level.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/ShayCichocki/arbor/pkg/models"
)

// Ancestor is the name and goal of a node above the one being expanded.
type Ancestor struct {
	Level models.Level
	Name  string
	Goal  string
}

// Input carries everything a level prompt can reference.
// When PriorErrors is non-empty the user prompt is rendered in refine mode
// and only the errors are shown.
type Input struct {
	Context     *models.ProjectContext
	Ancestors   []Ancestor
	Siblings    []string
	Guidance    string
	PriorErrors []string
}

// Refine reports whether the input asks for a corrective retry.
func (in Input) Refine() bool {
	return len(in.PriorErrors) > 0
}

// Renderer turns a level and its inputs into a system/user prompt pair.
type Renderer interface {
	Render(level models.Level, in Input) (system, user string, err error)
}

// TemplateRenderer renders prompts from text/template sources.
type TemplateRenderer struct {
	system map[models.Level]string
	user   *template.Template
	refine *template.Template
}

// NewTemplateRenderer parses the built-in templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	funcs := template.FuncMap{
		"title":  func(l models.Level) string { return l.Title() },
		"plural": func(l models.Level) string { return l.Plural() },
		"join":   strings.Join,
		"inc":    func(i int) int { return i + 1 },
	}

	user, err := template.New("user").Funcs(funcs).Parse(userTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse user template: %w", err)
	}
	refine, err := template.New("refine").Funcs(funcs).Parse(refineTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse refine template: %w", err)
	}

	return &TemplateRenderer{
		system: map[models.Level]string{
			models.LevelMilestone: milestoneSystemPrompt,
			models.LevelEpic:      epicSystemPrompt,
			models.LevelStory:     storySystemPrompt,
			models.LevelTask:      taskSystemPrompt,
		},
		user:   user,
		refine: refine,
	}, nil
}

type templateData struct {
	Level models.Level
	Input
}

// Render implements Renderer.
func (r *TemplateRenderer) Render(level models.Level, in Input) (string, string, error) {
	system, ok := r.system[level]
	if !ok {
		return "", "", fmt.Errorf("no prompt for level %q", level)
	}

	tmpl := r.user
	if in.Refine() {
		tmpl = r.refine
	} else if in.Context == nil {
		return "", "", fmt.Errorf("render %s prompt: project context is required", level)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{Level: level, Input: in}); err != nil {
		return "", "", fmt.Errorf("render %s prompt: %w", level, err)
	}
	return system, buf.String(), nil
}
