package prompt

const sharedRules = `
Rules:
- Return your answer ONLY through the provided tool. Do not reply with prose.
- Order items in the sequence they should be delivered.
- Names must be short, specific and unique.
- Priority is one of: critical, high, medium, low.
- Stay consistent with the ancestors you are given; do not repeat topics already covered by the listed existing items.`

const milestoneSystemPrompt = `You are a delivery lead turning a project description into a roadmap.
Propose the MILESTONES for the project: major, independently demonstrable delivery checkpoints.
Each milestone needs a goal stating the observable outcome a stakeholder could verify.
Prefer 3-6 milestones.` + sharedRules

const epicSystemPrompt = `You are a delivery lead breaking a milestone into EPICS.
An epic is a coherent body of work that can be delivered by one team within the milestone.
Each epic needs a goal stating the outcome it delivers inside the milestone.
Prefer 2-6 epics per milestone.` + sharedRules

const storySystemPrompt = `You are a product owner breaking an epic into USER STORIES.
Each story describes user-visible value ("As a ... I want ... so that ...") in its description,
its goal is the acceptance outcome, and acceptance_criteria lists the checks that prove the story is done.
Prefer 2-6 stories per epic.` + sharedRules

const taskSystemPrompt = `You are a senior engineer breaking a user story into IMPLEMENTATION TASKS.
Each task must be completable by one developer or coding agent in 1-40 hours.
For every task provide: an hours estimate, acceptance_criteria (concrete checks),
implementation_notes (technical hints), an agent_directive (a self-contained instruction a coding agent can execute without further context),
and prerequisites listing the NAMES of other tasks in this same list that must finish first.` + sharedRules

const userTemplate = `# Project: {{.Context.Name}}

## Vision
{{.Context.Vision}}
{{- if .Context.TargetUsers}}

## Target users
{{- range .Context.TargetUsers}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Context.Constraints}}

## Constraints
{{- range .Context.Constraints}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Context.MustHave}}

## Must have
{{- range .Context.MustHave}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Context.NiceToHave}}

## Nice to have
{{- range .Context.NiceToHave}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Context.TechPreferences}}

## Tech preferences
{{- range .Context.TechPreferences}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Context.Notes}}

## Notes
{{.Context.Notes}}
{{- end}}
{{- if .Ancestors}}

## You are expanding
{{- range .Ancestors}}
- {{title .Level}} "{{.Name}}"{{if .Goal}}: {{.Goal}}{{end}}
{{- end}}
{{- end}}
{{- if .Siblings}}

## Existing {{plural .Level}} (do not duplicate)
{{- range .Siblings}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Guidance}}

## Additional guidance
{{.Guidance}}
{{- end}}

Generate the {{plural .Level}} now.
`

const refineTemplate = `Your previous {{.Level}} response was rejected.

## Errors from earlier attempts
{{- range $i, $e := .PriorErrors}}
{{inc $i}}. {{$e}}
{{- end}}

Return a corrected list of {{plural .Level}} that fixes every error above.
`
