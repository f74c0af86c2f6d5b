package models

import (
	"fmt"
	"strings"
)

// Skeleton is a proposed non-leaf node before it is expanded.
type Skeleton struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Goal        string `json:"goal"`
	Priority    string `json:"priority"`
	// AcceptanceCriteria is only requested for stories.
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
}

// SkeletonList is the structured response for milestone, epic and story generation.
type SkeletonList struct {
	Items []Skeleton `json:"items"`
}

// TaskSpec is a fully formed leaf task as returned by the model.
// Prerequisites reference sibling task names, not IDs.
type TaskSpec struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Priority            string   `json:"priority"`
	EstimatedHours      int      `json:"estimated_hours"`
	Prerequisites       []string `json:"prerequisites"`
	AcceptanceCriteria  []string `json:"acceptance_criteria"`
	ImplementationNotes string   `json:"implementation_notes"`
	AgentDirective      string   `json:"agent_directive"`
}

// TaskList is the structured response for task generation.
type TaskList struct {
	Tasks []TaskSpec `json:"tasks"`
}

// Validate checks the skeleton list against the schema rules.
func (l SkeletonList) Validate() error {
	if len(l.Items) == 0 {
		return fmt.Errorf("items: expected at least one entry")
	}
	seen := make(map[string]bool, len(l.Items))
	for i, sk := range l.Items {
		name := strings.TrimSpace(sk.Name)
		if name == "" {
			return fmt.Errorf("items[%d].name: must not be empty", i)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return fmt.Errorf("items[%d].name: duplicate name %q", i, name)
		}
		seen[key] = true
		if strings.TrimSpace(sk.Description) == "" {
			return fmt.Errorf("items[%d].description: must not be empty", i)
		}
		if _, err := ParsePriority(sk.Priority); err != nil {
			return fmt.Errorf("items[%d].priority: %w", i, err)
		}
		if strings.TrimSpace(sk.Goal) == "" {
			return fmt.Errorf("items[%d].goal: must not be empty", i)
		}
	}
	return nil
}

// ValidateStories adds the story-level rule: every item carries at least
// one non-blank acceptance criterion.
func (l SkeletonList) ValidateStories() error {
	for i, sk := range l.Items {
		if !hasCheck(sk.AcceptanceCriteria) {
			return fmt.Errorf("items[%d].acceptance_criteria: must contain at least one check", i)
		}
	}
	return nil
}

func hasCheck(criteria []string) bool {
	for _, c := range criteria {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

// Validate checks the task list against the schema rules.
func (l TaskList) Validate() error {
	if len(l.Tasks) == 0 {
		return fmt.Errorf("tasks: expected at least one entry")
	}
	seen := make(map[string]bool, len(l.Tasks))
	for i, ts := range l.Tasks {
		name := strings.TrimSpace(ts.Name)
		if name == "" {
			return fmt.Errorf("tasks[%d].name: must not be empty", i)
		}
		if seen[name] {
			return fmt.Errorf("tasks[%d].name: duplicate name %q", i, name)
		}
		seen[name] = true
		if strings.TrimSpace(ts.Description) == "" {
			return fmt.Errorf("tasks[%d].description: must not be empty", i)
		}
		if _, err := ParsePriority(ts.Priority); err != nil {
			return fmt.Errorf("tasks[%d].priority: %w", i, err)
		}
		if ts.EstimatedHours < MinTaskHours || ts.EstimatedHours > MaxTaskHours {
			return fmt.Errorf("tasks[%d].estimated_hours: %d outside %d-%d",
				i, ts.EstimatedHours, MinTaskHours, MaxTaskHours)
		}
		if strings.TrimSpace(ts.AgentDirective) == "" {
			return fmt.Errorf("tasks[%d].agent_directive: must not be empty", i)
		}
	}
	return nil
}
