package models

import "time"

// Roadmap is the generated deliverable tree plus the context it came from.
type Roadmap struct {
	// ID is the unique identifier for this roadmap.
	ID string `json:"id"`
	// ProjectName is copied from the context and keys the persisted files.
	ProjectName string `json:"project_name"`
	// Context is the project description the tree was generated from.
	Context ProjectContext `json:"context"`
	// Milestones are the top-level deliverables, in generation order.
	Milestones []*Milestone `json:"milestones"`
	// CreatedAt is when the roadmap was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is bumped on every mutation.
	UpdatedAt time.Time `json:"updated_at"`
}

// Milestone is a major delivery checkpoint.
type Milestone struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Goal        string   `json:"goal"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	Epics       []*Epic  `json:"epics"`
}

// Epic is a body of work inside a milestone.
type Epic struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Goal        string   `json:"goal"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	Stories     []*Story `json:"stories"`
}

// Story is a user-facing slice of an epic.
type Story struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Priority           Priority `json:"priority"`
	Status             Status   `json:"status"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	Tasks              []*Task  `json:"tasks"`
}

// Task is a leaf unit of work, always created fully formed.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Name is the short description of the task.
	Name string `json:"name"`
	// Description provides detailed information about the task.
	Description string `json:"description"`
	// Priority ranks the task within its story.
	Priority Priority `json:"priority"`
	// Status is the current state of the task.
	Status Status `json:"status"`
	// EstimatedHours is the effort estimate, between MinTaskHours and MaxTaskHours.
	EstimatedHours int `json:"estimated_hours"`
	// Prerequisites lists task IDs that must complete before this task.
	Prerequisites []string `json:"prerequisites"`
	// AcceptanceCriteria defines the criteria for task completion.
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	// ImplementationNotes carries technical hints for whoever picks it up.
	ImplementationNotes string `json:"implementation_notes"`
	// AgentDirective is the instruction handed to a downstream coding agent.
	AgentDirective string `json:"agent_directive"`
}

// Effort bounds for a single task, in hours.
const (
	MinTaskHours = 1
	MaxTaskHours = 40
)

// Counts holds per-level item totals for a roadmap.
type Counts struct {
	Milestones int `json:"milestones"`
	Epics      int `json:"epics"`
	Stories    int `json:"stories"`
	Tasks      int `json:"tasks"`
}

// IsComplete reports whether the roadmap has milestones and all of them are complete.
func (r *Roadmap) IsComplete() bool {
	if len(r.Milestones) == 0 {
		return false
	}
	for _, m := range r.Milestones {
		if !m.IsComplete() {
			return false
		}
	}
	return true
}

// IsComplete reports whether the milestone has epics and all of them are complete.
func (m *Milestone) IsComplete() bool {
	if len(m.Epics) == 0 {
		return false
	}
	for _, e := range m.Epics {
		if !e.IsComplete() {
			return false
		}
	}
	return true
}

// IsComplete reports whether the epic has stories and all of them are complete.
func (e *Epic) IsComplete() bool {
	if len(e.Stories) == 0 {
		return false
	}
	for _, s := range e.Stories {
		if !s.IsComplete() {
			return false
		}
	}
	return true
}

// IsComplete reports whether the story has tasks. Tasks are complete once created.
func (s *Story) IsComplete() bool {
	return len(s.Tasks) > 0
}

// TotalHours sums task estimates across the whole roadmap.
func (r *Roadmap) TotalHours() int {
	total := 0
	for _, m := range r.Milestones {
		total += m.TotalHours()
	}
	return total
}

// TotalHours sums task estimates under the milestone.
func (m *Milestone) TotalHours() int {
	total := 0
	for _, e := range m.Epics {
		total += e.TotalHours()
	}
	return total
}

// TotalHours sums task estimates under the epic.
func (e *Epic) TotalHours() int {
	total := 0
	for _, s := range e.Stories {
		total += s.TotalHours()
	}
	return total
}

// TotalHours sums the story's task estimates.
func (s *Story) TotalHours() int {
	total := 0
	for _, t := range s.Tasks {
		total += t.EstimatedHours
	}
	return total
}

// Counts returns the number of items at each level.
func (r *Roadmap) Counts() Counts {
	var c Counts
	c.Milestones = len(r.Milestones)
	for _, m := range r.Milestones {
		c.Epics += len(m.Epics)
		for _, e := range m.Epics {
			c.Stories += len(e.Stories)
			for _, s := range e.Stories {
				c.Tasks += len(s.Tasks)
			}
		}
	}
	return c
}

// Names returns the names of every existing node at the given level, in tree order.
func (r *Roadmap) Names(level Level) []string {
	var names []string
	for _, m := range r.Milestones {
		if level == LevelMilestone {
			names = append(names, m.Name)
			continue
		}
		for _, e := range m.Epics {
			if level == LevelEpic {
				names = append(names, e.Name)
				continue
			}
			for _, s := range e.Stories {
				if level == LevelStory {
					names = append(names, s.Name)
					continue
				}
				for _, t := range s.Tasks {
					names = append(names, t.Name)
				}
			}
		}
	}
	return names
}
