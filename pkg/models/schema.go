package models

// Schema describes the structured object a generation call must return.
// Properties and Required follow JSON Schema object semantics.
type Schema struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func stringListProp(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": desc,
		"items":       map[string]any{"type": "string"},
	}
}

func priorityProp() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Relative priority among siblings",
		"enum":        []string{"critical", "high", "medium", "low"},
	}
}

// SkeletonListSchema returns the schema for a list of skeletons at the given
// level. Story skeletons also carry acceptance criteria.
func SkeletonListSchema(level Level) Schema {
	props := map[string]any{
		"name":        stringProp("Short, unique " + string(level) + " name"),
		"description": stringProp("What this " + string(level) + " covers"),
		"goal":        stringProp("The outcome this " + string(level) + " delivers"),
		"priority":    priorityProp(),
	}
	required := []string{"name", "description", "goal", "priority"}
	if level == LevelStory {
		props["acceptance_criteria"] = stringListProp("Checks that prove the story is done")
		required = append(required, "acceptance_criteria")
	}

	return Schema{
		Name:        "submit_" + level.Plural(),
		Description: "Submit the proposed " + level.Plural() + " as an ordered list.",
		Properties: map[string]any{
			"items": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":       "object",
					"properties": props,
					"required":   required,
				},
			},
		},
		Required: []string{"items"},
	}
}

// TaskListSchema returns the schema for a list of fully formed tasks.
func TaskListSchema() Schema {
	return Schema{
		Name:        "submit_tasks",
		Description: "Submit the implementation tasks for the story as an ordered list.",
		Properties: map[string]any{
			"tasks": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":        stringProp("Short, unique task name"),
						"description": stringProp("What has to be done"),
						"priority":    priorityProp(),
						"estimated_hours": map[string]any{
							"type":        "integer",
							"minimum":     MinTaskHours,
							"maximum":     MaxTaskHours,
							"description": "Effort estimate in hours",
						},
						"prerequisites":        stringListProp("Names of sibling tasks that must finish first"),
						"acceptance_criteria":  stringListProp("Checks that prove the task is done"),
						"implementation_notes": stringProp("Technical hints"),
						"agent_directive":      stringProp("Self-contained instruction for a coding agent"),
					},
					"required": []string{"name", "description", "priority", "estimated_hours", "acceptance_criteria", "agent_directive"},
				},
			},
		},
		Required: []string{"tasks"},
	}
}
