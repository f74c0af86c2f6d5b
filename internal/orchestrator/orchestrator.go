package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/arbor/internal/generate"
	"github.com/ShayCichocki/arbor/internal/prompt"
	"github.com/ShayCichocki/arbor/pkg/models"
)

// ClientSource resolves a structured-output client by provider name.
type ClientSource interface {
	Client(name string) (generate.Client, error)
}

// Saver persists the full roadmap and returns where it was written.
type Saver interface {
	Save(rm *models.Roadmap) (string, error)
}

// Orchestrator expands roadmaps level by level. It assumes it is the only
// writer of the roadmaps it is given.
type Orchestrator struct {
	clients  ClientSource
	provider string
	saver    Saver
	opts     orchestratorOptions
}

// generators holds one generator per level for a single run.
type generators struct {
	skeletons map[models.Level]*generate.SkeletonGenerator
	tasks     *generate.TaskGenerator
}

// New creates an orchestrator.
func New(req RequiredConfig, opts ...Option) (*Orchestrator, error) {
	if req.Clients == nil {
		return nil, fmt.Errorf("client source is required")
	}
	if req.Provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if req.Saver == nil {
		return nil, fmt.Errorf("saver is required")
	}

	o := orchestratorOptions{
		maxAttempts: generate.DefaultMaxAttempts,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.renderer == nil {
		r, err := prompt.NewTemplateRenderer()
		if err != nil {
			return nil, err
		}
		o.renderer = r
	}

	return &Orchestrator{
		clients:  req.Clients,
		provider: req.Provider,
		saver:    req.Saver,
		opts:     o,
	}, nil
}

// Generate creates a roadmap for pc and expands it completely. The empty
// roadmap is saved before the first call so a failure at any level leaves
// something to resume. Generation failures are returned unchanged.
func (o *Orchestrator) Generate(ctx context.Context, pc *models.ProjectContext) (*models.Roadmap, error) {
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	gens, err := o.generators()
	if err != nil {
		return nil, err
	}

	now := o.now()
	rm := &models.Roadmap{
		ID:          o.opts.newID(),
		ProjectName: pc.Name,
		Context:     *pc,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	o.opts.logger.Log("generate: roadmap %s for %q", rm.ID, rm.ProjectName)

	if _, err := o.save(rm); err != nil {
		return rm, err
	}
	return rm, o.walk(ctx, rm, gens, false)
}

// Resume fills in every childless node of rm, skipping complete subtrees.
// A complete roadmap is returned untouched: no calls and no writes.
func (o *Orchestrator) Resume(ctx context.Context, rm *models.Roadmap) (*models.Roadmap, error) {
	if rm == nil {
		return nil, fmt.Errorf("roadmap is nil")
	}
	if rm.IsComplete() {
		o.opts.logger.Log("resume: roadmap %s already complete", rm.ID)
		return rm, nil
	}
	gens, err := o.generators()
	if err != nil {
		return nil, err
	}
	o.opts.logger.Log("resume: roadmap %s (%d expansions pending)", rm.ID, EstimateResumeSteps(rm))
	return rm, o.walk(ctx, rm, gens, true)
}

// EstimateResumeSteps counts the expansion calls needed for the nodes that
// already exist but have no children. Incomplete nodes that already have
// children are not counted, since resume never regenerates them, so this
// is not a count of every incomplete non-leaf node. Shells created along
// the way add further calls, so the figure is a lower bound. It has no
// side effects.
func EstimateResumeSteps(rm *models.Roadmap) int {
	if rm == nil {
		return 0
	}
	steps := 0
	stack := []node{{roadmap: rm}}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.complete() {
			continue
		}
		if !n.hasChildren() {
			steps++
			continue
		}
		stack = append(stack, n.children()...)
	}
	return steps
}

// walk is the single traversal behind Generate and Resume. Nodes are
// visited depth-first in child order; a childless node is expanded before
// its new children are pushed.
func (o *Orchestrator) walk(ctx context.Context, rm *models.Roadmap, gens *generators, skipComplete bool) error {
	stack := []frame{{node: node{roadmap: rm}}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if skipComplete && f.node.complete() {
			if f.node.roadmap == nil {
				o.opts.logger.Log("skip %s %q: complete", f.node.level(), f.node.name())
				o.emit(Event{Type: EventNodeSkipped, Level: f.node.level(), NodeID: f.node.id(), NodeName: f.node.name()})
			}
			continue
		}

		if !f.node.hasChildren() {
			if err := o.expand(ctx, rm, gens, f); err != nil {
				return err
			}
		}

		if f.node.childLevel() == models.LevelTask {
			continue
		}
		kids := f.node.children()
		lineage := f.lineage()
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: kids[i], ancestors: lineage})
		}
	}
	return nil
}

// expand generates and attaches the children of one node, then saves.
func (o *Orchestrator) expand(ctx context.Context, rm *models.Roadmap, gens *generators, f frame) error {
	level := f.node.childLevel()
	req := generate.Request{
		Context:   &rm.Context,
		Ancestors: f.lineage(),
		Siblings:  rm.Names(level),
		Guidance:  o.opts.guidance[level],
	}

	o.opts.logger.Log("expand %s %q: generating %s", nodeKind(f.node), f.node.name(), level.Plural())
	o.emit(Event{Type: EventExpansionStarted, Level: level, NodeID: f.node.id(), NodeName: f.node.name()})

	if level == models.LevelTask {
		list, err := gens.tasks.Generate(ctx, req)
		if err != nil {
			o.opts.logger.Log("expand %q failed: %v", f.node.name(), err)
			return err
		}
		f.node.story.Tasks = o.materializeTasks(list)
		path, err := o.save(rm)
		if err != nil {
			return err
		}
		o.emit(Event{Type: EventTasksSaved, Level: level, NodeID: f.node.id(), NodeName: f.node.name(), Count: len(list.Tasks), Path: path})
		return nil
	}

	list, err := o.approvedSkeletons(ctx, gens.skeletons[level], req, f.node)
	if err != nil {
		o.opts.logger.Log("expand %q failed: %v", f.node.name(), err)
		return err
	}

	o.attachShells(f.node, list.Items)
	path, err := o.save(rm)
	if err != nil {
		return err
	}
	o.emit(Event{Type: EventShellsSaved, Level: level, NodeID: f.node.id(), NodeName: f.node.name(), Count: len(list.Items), Path: path})
	return nil
}

// approvedSkeletons generates a skeleton list and, in interactive mode,
// repeats until the reviewer approves one.
func (o *Orchestrator) approvedSkeletons(ctx context.Context, gen *generate.SkeletonGenerator, req generate.Request, parent node) (models.SkeletonList, error) {
	for round := 1; ; round++ {
		list, err := gen.Generate(ctx, req)
		if err != nil {
			return list, err
		}
		if o.opts.reviewer == nil {
			return list, nil
		}

		decision, err := o.opts.reviewer.Review(ctx, ReviewRequest{
			Level:  gen.Level(),
			Parent: parent.name(),
			Items:  list.Items,
			Round:  round,
		})
		if err != nil {
			return list, fmt.Errorf("review %s: %w", gen.Level().Plural(), err)
		}
		o.opts.logger.Log("review %s for %q round %d: %s", gen.Level().Plural(), parent.name(), round, decision)

		switch decision {
		case DecisionApprove:
			return list, nil
		case DecisionRegenerate:
			o.emit(Event{Type: EventReviewRegenerate, Level: gen.Level(), NodeID: parent.id(), NodeName: parent.name()})
		default:
			return list, ErrAborted
		}
	}
}

// attachShells materializes every skeleton and appends them all at once.
func (o *Orchestrator) attachShells(n node, items []models.Skeleton) {
	switch {
	case n.milestone != nil:
		epics := make([]*models.Epic, 0, len(items))
		for _, sk := range items {
			epics = append(epics, &models.Epic{
				ID: o.opts.newID(), Name: sk.Name, Description: sk.Description, Goal: sk.Goal,
				Priority: priorityOf(sk.Priority), Status: models.StatusNotStarted,
			})
		}
		n.milestone.Epics = append(n.milestone.Epics, epics...)
	case n.epic != nil:
		stories := make([]*models.Story, 0, len(items))
		for _, sk := range items {
			stories = append(stories, &models.Story{
				ID: o.opts.newID(), Name: sk.Name, Description: sk.Description,
				Priority: priorityOf(sk.Priority), Status: models.StatusNotStarted,
				AcceptanceCriteria: storyCriteria(sk),
			})
		}
		n.epic.Stories = append(n.epic.Stories, stories...)
	default:
		milestones := make([]*models.Milestone, 0, len(items))
		for _, sk := range items {
			milestones = append(milestones, &models.Milestone{
				ID: o.opts.newID(), Name: sk.Name, Description: sk.Description, Goal: sk.Goal,
				Priority: priorityOf(sk.Priority), Status: models.StatusNotStarted,
			})
		}
		n.roadmap.Milestones = append(n.roadmap.Milestones, milestones...)
	}
}

// materializeTasks assigns ids and rewrites prerequisite names as ids.
func (o *Orchestrator) materializeTasks(list models.TaskList) []*models.Task {
	ids := make(map[string]string, len(list.Tasks))
	tasks := make([]*models.Task, 0, len(list.Tasks))
	for _, ts := range list.Tasks {
		id := o.opts.newID()
		ids[ts.Name] = id
		tasks = append(tasks, &models.Task{
			ID:                  id,
			Name:                ts.Name,
			Description:         ts.Description,
			Priority:            priorityOf(ts.Priority),
			Status:              models.StatusNotStarted,
			EstimatedHours:      ts.EstimatedHours,
			AcceptanceCriteria:  append([]string{}, ts.AcceptanceCriteria...),
			ImplementationNotes: ts.ImplementationNotes,
			AgentDirective:      ts.AgentDirective,
		})
	}
	for i, ts := range list.Tasks {
		prereqs := make([]string, 0, len(ts.Prerequisites))
		for _, name := range ts.Prerequisites {
			prereqs = append(prereqs, ids[name])
		}
		tasks[i].Prerequisites = prereqs
	}
	return tasks
}

func (o *Orchestrator) generators() (*generators, error) {
	client, err := o.clients.Client(o.provider)
	if err != nil {
		return nil, fmt.Errorf("resolve AI client: %w", err)
	}
	opts := generate.Options{
		MaxAttempts: o.opts.maxAttempts,
		OnAttemptFailed: func(a generate.Attempt) {
			o.opts.logger.Log("%s attempt %d/%d failed: %v", a.Level, a.Number, a.Max, a.Err)
			o.emit(Event{Type: EventAttemptFailed, Level: a.Level, Attempt: a.Number, MaxAttempts: a.Max, Error: a.Err})
		},
	}
	r := o.opts.renderer
	return &generators{
		skeletons: map[models.Level]*generate.SkeletonGenerator{
			models.LevelMilestone: generate.NewMilestoneGenerator(client, r, opts),
			models.LevelEpic:      generate.NewEpicGenerator(client, r, opts),
			models.LevelStory:     generate.NewStoryGenerator(client, r, opts),
		},
		tasks: generate.NewTaskGenerator(client, r, opts),
	}, nil
}

// save stamps UpdatedAt and writes the whole tree.
func (o *Orchestrator) save(rm *models.Roadmap) (string, error) {
	rm.UpdatedAt = o.now()
	path, err := o.saver.Save(rm)
	if err != nil {
		o.opts.logger.Log("save roadmap %s failed: %v", rm.ID, err)
		return "", fmt.Errorf("save roadmap: %w", err)
	}
	return path, nil
}

func (o *Orchestrator) now() time.Time {
	return o.opts.now().UTC()
}

func (o *Orchestrator) emit(ev Event) {
	if o.opts.onEvent == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = o.now()
	}
	o.opts.onEvent(ev)
}

func nodeKind(n node) string {
	if n.roadmap != nil {
		return "roadmap"
	}
	return string(n.level())
}

// priorityOf maps a validated priority string onto the enum.
func priorityOf(s string) models.Priority {
	p, err := models.ParsePriority(s)
	if err != nil {
		return models.PriorityMedium
	}
	return p
}

// storyCriteria copies a story skeleton's acceptance criteria, dropping blanks.
func storyCriteria(sk models.Skeleton) []string {
	out := make([]string, 0, len(sk.AcceptanceCriteria))
	for _, c := range sk.AcceptanceCriteria {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
