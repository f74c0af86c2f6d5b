package orchestrator

import (
	"time"

	"github.com/ShayCichocki/arbor/internal/prompt"
	"github.com/ShayCichocki/arbor/pkg/models"
)

// RequiredConfig contains the collaborators an Orchestrator cannot run without.
type RequiredConfig struct {
	// Clients resolves the AI client for Provider.
	Clients ClientSource
	// Provider names the client to use.
	Provider string
	// Saver persists the whole roadmap after every mutation.
	Saver Saver
}

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*orchestratorOptions)

type orchestratorOptions struct {
	renderer    prompt.Renderer
	reviewer    Reviewer
	maxAttempts int
	guidance    map[models.Level]string
	onEvent     func(Event)
	logger      *DebugLogger
	now         func() time.Time
	newID       func() string
}

// WithRenderer overrides the built-in prompt templates.
func WithRenderer(r prompt.Renderer) Option {
	return func(o *orchestratorOptions) { o.renderer = r }
}

// WithReviewer enables interactive mode: every skeleton list is shown to r
// before it is turned into shells.
func WithReviewer(r Reviewer) Option {
	return func(o *orchestratorOptions) { o.reviewer = r }
}

// WithMaxAttempts sets the per-level attempt limit (default: 3).
func WithMaxAttempts(n int) Option {
	return func(o *orchestratorOptions) { o.maxAttempts = n }
}

// WithGuidance adds free-text guidance to every prompt for level.
func WithGuidance(level models.Level, text string) Option {
	return func(o *orchestratorOptions) {
		if o.guidance == nil {
			o.guidance = make(map[models.Level]string)
		}
		o.guidance[level] = text
	}
}

// WithEventHandler receives progress events. It is called synchronously.
func WithEventHandler(fn func(Event)) Option {
	return func(o *orchestratorOptions) { o.onEvent = fn }
}

// WithLogger sets the debug logger.
func WithLogger(l *DebugLogger) Option {
	return func(o *orchestratorOptions) { o.logger = l }
}

// WithClock sets the time source used for roadmap timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *orchestratorOptions) { o.now = now }
}

// WithIDGenerator sets the node identifier source (default: uuid v4).
func WithIDGenerator(fn func() string) Option {
	return func(o *orchestratorOptions) { o.newID = fn }
}
