package generate

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/arbor/internal/prompt"
	"github.com/ShayCichocki/arbor/pkg/models"
)

// SkeletonGenerator produces skeleton lists for the non-leaf levels.
type SkeletonGenerator = Generator[models.SkeletonList]

// TaskGenerator produces fully formed task lists.
type TaskGenerator = Generator[models.TaskList]

// NewMilestoneGenerator creates the milestone-level generator.
func NewMilestoneGenerator(client Client, renderer prompt.Renderer, opts Options) *SkeletonGenerator {
	return New[models.SkeletonList](models.LevelMilestone, models.SkeletonListSchema(models.LevelMilestone), client, renderer, opts)
}

// NewEpicGenerator creates the epic-level generator.
func NewEpicGenerator(client Client, renderer prompt.Renderer, opts Options) *SkeletonGenerator {
	return New[models.SkeletonList](models.LevelEpic, models.SkeletonListSchema(models.LevelEpic), client, renderer, opts)
}

// NewStoryGenerator creates the story-level generator. Every story must
// come back with acceptance criteria.
func NewStoryGenerator(client Client, renderer prompt.Renderer, opts Options) *SkeletonGenerator {
	return New[models.SkeletonList](models.LevelStory, models.SkeletonListSchema(models.LevelStory), client, renderer, opts).
		WithValidator(models.SkeletonList.ValidateStories)
}

// NewTaskGenerator creates the task-level generator. Task lists must also
// have resolvable, acyclic prerequisites.
func NewTaskGenerator(client Client, renderer prompt.Renderer, opts Options) *TaskGenerator {
	return New[models.TaskList](models.LevelTask, models.TaskListSchema(), client, renderer, opts).
		WithValidator(ValidatePrerequisites)
}

// ValidatePrerequisites checks that every prerequisite names another task
// in the same list and that the prerequisites form no cycle.
func ValidatePrerequisites(list models.TaskList) error {
	byName := make(map[string]models.TaskSpec, len(list.Tasks))
	for _, ts := range list.Tasks {
		byName[ts.Name] = ts
	}
	for _, ts := range list.Tasks {
		for _, dep := range ts.Prerequisites {
			if dep == ts.Name {
				return fmt.Errorf("task %q lists itself as a prerequisite", ts.Name)
			}
			if _, ok := byName[dep]; !ok {
				return fmt.Errorf("unknown prerequisite %q for task %q", dep, ts.Name)
			}
		}
	}

	state := make(map[string]int) // 0=unvisited, 1=visiting, 2=visited

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		if state[name] == 2 {
			return nil
		}
		if state[name] == 1 {
			cycleStart := 0
			for i, p := range path {
				if p == name {
					cycleStart = i
					break
				}
			}
			cycle := append(path[cycleStart:], name)
			return fmt.Errorf("circular prerequisite detected: %s", strings.Join(cycle, " -> "))
		}

		state[name] = 1
		for _, dep := range byName[name].Prerequisites {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = 2
		return nil
	}

	for _, ts := range list.Tasks {
		if state[ts.Name] == 0 {
			if err := visit(ts.Name, nil); err != nil {
				return err
			}
		}
	}
	return nil
}
