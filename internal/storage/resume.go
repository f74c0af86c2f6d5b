package storage

import (
	"fmt"

	"github.com/ShayCichocki/arbor/pkg/models"
)

// ResumePoint identifies the first node, depth-first, that has no children
// yet. Level is empty when the roadmap itself has no milestones.
type ResumePoint struct {
	Level   models.Level
	ID      string
	Name    string
	Missing models.Level
}

// String returns a description such as `Milestone "B": no epics generated`.
func (p *ResumePoint) String() string {
	if p == nil {
		return "complete"
	}
	kind := "Roadmap"
	if p.Level != "" {
		kind = p.Level.Title()
	}
	return fmt.Sprintf("%s %q: no %s generated", kind, p.Name, p.Missing.Plural())
}

// FindResumePoint walks milestones in order, descending into each one
// before moving on, and returns the first childless non-leaf node. It
// returns nil exactly when rm.IsComplete().
func FindResumePoint(rm *models.Roadmap) *ResumePoint {
	if rm == nil {
		return nil
	}
	if len(rm.Milestones) == 0 {
		return &ResumePoint{ID: rm.ID, Name: rm.ProjectName, Missing: models.LevelMilestone}
	}
	for _, m := range rm.Milestones {
		if len(m.Epics) == 0 {
			return &ResumePoint{Level: models.LevelMilestone, ID: m.ID, Name: m.Name, Missing: models.LevelEpic}
		}
		for _, e := range m.Epics {
			if len(e.Stories) == 0 {
				return &ResumePoint{Level: models.LevelEpic, ID: e.ID, Name: e.Name, Missing: models.LevelStory}
			}
			for _, s := range e.Stories {
				if len(s.Tasks) == 0 {
					return &ResumePoint{Level: models.LevelStory, ID: s.ID, Name: s.Name, Missing: models.LevelTask}
				}
			}
		}
	}
	return nil
}

// ResumePoint returns the resume point of rm, or nil if it is complete.
func (m *Manager) ResumePoint(rm *models.Roadmap) *ResumePoint {
	return FindResumePoint(rm)
}
