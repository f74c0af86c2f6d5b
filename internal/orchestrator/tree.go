package orchestrator

import (
	"github.com/ShayCichocki/arbor/internal/prompt"
	"github.com/ShayCichocki/arbor/pkg/models"
)

// node is a position in the roadmap tree. Exactly one pointer is set.
type node struct {
	roadmap   *models.Roadmap
	milestone *models.Milestone
	epic      *models.Epic
	story     *models.Story
}

// frame is one pending entry on the traversal stack.
type frame struct {
	node      node
	ancestors []prompt.Ancestor
}

// level returns the node's own level; empty for the roadmap root.
func (n node) level() models.Level {
	switch {
	case n.milestone != nil:
		return models.LevelMilestone
	case n.epic != nil:
		return models.LevelEpic
	case n.story != nil:
		return models.LevelStory
	default:
		return ""
	}
}

// childLevel returns the level of the node's children.
func (n node) childLevel() models.Level {
	switch {
	case n.milestone != nil:
		return models.LevelEpic
	case n.epic != nil:
		return models.LevelStory
	case n.story != nil:
		return models.LevelTask
	default:
		return models.LevelMilestone
	}
}

func (n node) id() string {
	switch {
	case n.milestone != nil:
		return n.milestone.ID
	case n.epic != nil:
		return n.epic.ID
	case n.story != nil:
		return n.story.ID
	default:
		return n.roadmap.ID
	}
}

func (n node) name() string {
	switch {
	case n.milestone != nil:
		return n.milestone.Name
	case n.epic != nil:
		return n.epic.Name
	case n.story != nil:
		return n.story.Name
	default:
		return n.roadmap.ProjectName
	}
}

func (n node) hasChildren() bool {
	switch {
	case n.milestone != nil:
		return len(n.milestone.Epics) > 0
	case n.epic != nil:
		return len(n.epic.Stories) > 0
	case n.story != nil:
		return len(n.story.Tasks) > 0
	default:
		return len(n.roadmap.Milestones) > 0
	}
}

func (n node) complete() bool {
	switch {
	case n.milestone != nil:
		return n.milestone.IsComplete()
	case n.epic != nil:
		return n.epic.IsComplete()
	case n.story != nil:
		return n.story.IsComplete()
	default:
		return n.roadmap.IsComplete()
	}
}

// children returns the non-leaf children; tasks are never walked.
func (n node) children() []node {
	var out []node
	switch {
	case n.milestone != nil:
		for _, e := range n.milestone.Epics {
			out = append(out, node{epic: e})
		}
	case n.epic != nil:
		for _, s := range n.epic.Stories {
			out = append(out, node{story: s})
		}
	case n.story != nil:
	default:
		for _, m := range n.roadmap.Milestones {
			out = append(out, node{milestone: m})
		}
	}
	return out
}

// ancestor describes the node for the prompts of its descendants. Stories
// have no goal, so their description stands in.
func (n node) ancestor() prompt.Ancestor {
	switch {
	case n.milestone != nil:
		return prompt.Ancestor{Level: models.LevelMilestone, Name: n.milestone.Name, Goal: n.milestone.Goal}
	case n.epic != nil:
		return prompt.Ancestor{Level: models.LevelEpic, Name: n.epic.Name, Goal: n.epic.Goal}
	default:
		return prompt.Ancestor{Level: models.LevelStory, Name: n.story.Name, Goal: n.story.Description}
	}
}

// lineage returns the ancestors a prompt for this node's children sees:
// everything above the node plus the node itself.
func (f frame) lineage() []prompt.Ancestor {
	out := append([]prompt.Ancestor(nil), f.ancestors...)
	if f.node.roadmap == nil {
		out = append(out, f.node.ancestor())
	}
	return out
}
