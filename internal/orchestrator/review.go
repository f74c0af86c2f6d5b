package orchestrator

import (
	"context"
	"errors"

	"github.com/ShayCichocki/arbor/pkg/models"
)

// ErrAborted is returned when the reviewer aborts a run.
var ErrAborted = errors.New("generation aborted by reviewer")

// Decision is the reviewer's answer to a proposed skeleton list.
type Decision int

const (
	// DecisionApprove turns the skeletons into shells.
	DecisionApprove Decision = iota
	// DecisionRegenerate discards the list and asks again. The discarded
	// list is not fed back to the model.
	DecisionRegenerate
	// DecisionAbort stops the run with ErrAborted.
	DecisionAbort
)

func (d Decision) String() string {
	switch d {
	case DecisionApprove:
		return "approve"
	case DecisionRegenerate:
		return "regenerate"
	case DecisionAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// ReviewRequest is one skeleton list awaiting approval.
type ReviewRequest struct {
	// Level of the proposed children.
	Level models.Level
	// Parent is the name of the node being expanded (the project name for milestones).
	Parent string
	// Items are the proposed children, in order.
	Items []models.Skeleton
	// Round counts regenerations for this node, starting at 1.
	Round int
}

// Reviewer decides whether a proposed skeleton list is kept.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (Decision, error)
}

// ReviewerFunc adapts a function to the Reviewer interface.
type ReviewerFunc func(ctx context.Context, req ReviewRequest) (Decision, error)

// Review implements Reviewer.
func (f ReviewerFunc) Review(ctx context.Context, req ReviewRequest) (Decision, error) {
	return f(ctx, req)
}
