// Package generate asks the AI service for the children of a roadmap node,
// validates the structured result and retries with error feedback.
package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShayCichocki/arbor/internal/prompt"
	"github.com/ShayCichocki/arbor/pkg/models"
)

// DefaultMaxAttempts is the number of calls made before giving up on a level.
const DefaultMaxAttempts = 3

// Client is a structured-output AI client. Generate decodes the model's
// answer for schema into out, or returns an error describing why it could not.
type Client interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, schema models.Schema, out any) error
}

// Validatable is implemented by every structured response type.
type Validatable interface {
	Validate() error
}

// Request is the context for one "generate children of this node" call.
type Request struct {
	Context   *models.ProjectContext
	Ancestors []prompt.Ancestor
	Siblings  []string
	Guidance  string
}

// Attempt describes a failed attempt, reported before the next retry.
type Attempt struct {
	Level  models.Level
	Number int
	Max    int
	Err    error
}

// GenerationError is returned once every attempt for a level has failed.
type GenerationError struct {
	Level    models.Level
	Attempts int
	Errors   []string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed after %d attempts: %s",
		e.Level, e.Attempts, strings.Join(e.Errors, "; "))
}

// Options configures a Generator.
type Options struct {
	// MaxAttempts is the maximum number of calls (default: 3).
	MaxAttempts int
	// OnAttemptFailed is called after each failed attempt.
	OnAttemptFailed func(Attempt)
}

// Generator runs the retry-with-feedback loop for one tree level.
type Generator[T Validatable] struct {
	level       models.Level
	schema      models.Schema
	client      Client
	renderer    prompt.Renderer
	maxAttempts int
	validate    func(T) error
	onAttempt   func(Attempt)
}

// New creates a generator for the given level and response schema.
func New[T Validatable](level models.Level, schema models.Schema, client Client, renderer prompt.Renderer, opts Options) *Generator[T] {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator[T]{
		level:       level,
		schema:      schema,
		client:      client,
		renderer:    renderer,
		maxAttempts: maxAttempts,
		onAttempt:   opts.OnAttemptFailed,
	}
}

// WithValidator installs a level-specific check that runs after schema validation.
func (g *Generator[T]) WithValidator(fn func(T) error) *Generator[T] {
	g.validate = fn
	return g
}

// Level returns the level this generator produces.
func (g *Generator[T]) Level() models.Level {
	return g.level
}

// MaxAttempts returns the configured attempt limit.
func (g *Generator[T]) MaxAttempts() int {
	return g.maxAttempts
}

// Generate produces one validated response. After a failure the next prompt
// carries only the accumulated error messages, not the original request.
func (g *Generator[T]) Generate(ctx context.Context, req Request) (T, error) {
	var zero T
	var errs []string

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		in := prompt.Input{
			Context:   req.Context,
			Ancestors: req.Ancestors,
			Siblings:  req.Siblings,
			Guidance:  req.Guidance,
		}
		if len(errs) > 0 {
			in = prompt.Input{PriorErrors: append([]string(nil), errs...)}
		}

		system, user, err := g.renderer.Render(g.level, in)
		if err != nil {
			return zero, fmt.Errorf("render %s prompt: %w", g.level, err)
		}

		out, err := g.call(ctx, system, user)
		if err == nil {
			return out, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		errs = append(errs, err.Error())
		if g.onAttempt != nil {
			g.onAttempt(Attempt{Level: g.level, Number: attempt, Max: g.maxAttempts, Err: err})
		}
	}

	return zero, &GenerationError{Level: g.level, Attempts: g.maxAttempts, Errors: errs}
}

func (g *Generator[T]) call(ctx context.Context, system, user string) (T, error) {
	var out T
	if err := g.client.Generate(ctx, system, user, g.schema, &out); err != nil {
		return out, err
	}
	if err := out.Validate(); err != nil {
		return out, fmt.Errorf("schema validation: %w", err)
	}
	if g.validate != nil {
		if err := g.validate(out); err != nil {
			return out, fmt.Errorf("%s validation: %w", g.level, err)
		}
	}
	return out, nil
}
