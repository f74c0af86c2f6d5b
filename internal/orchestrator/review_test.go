package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/arbor/internal/generate/generatetest"
	"github.com/ShayCichocki/arbor/pkg/models"
)

func TestReview_RegenerateDiscardsWithoutFeedback(t *testing.T) {
	client := &generatetest.PlannerClient{Width: 1}
	var requests []ReviewRequest
	reviewer := ReviewerFunc(func(_ context.Context, req ReviewRequest) (Decision, error) {
		requests = append(requests, req)
		if req.Level == models.LevelMilestone && req.Round == 1 {
			return DecisionRegenerate, nil
		}
		return DecisionApprove, nil
	})
	var regenerated int
	o := newTestOrchestrator(t, client, &memSaver{},
		WithReviewer(reviewer),
		WithEventHandler(func(ev Event) {
			if ev.Type == EventReviewRegenerate {
				regenerated++
			}
		}))

	rm, err := o.Generate(context.Background(), projectContext())
	require.NoError(t, err)
	assert.True(t, rm.IsComplete())
	assert.Equal(t, 1, regenerated)

	calls := client.Calls()
	require.GreaterOrEqual(t, len(calls), 2)
	assert.Equal(t, "submit_milestones", calls[0].Schema)
	assert.Equal(t, "submit_milestones", calls[1].Schema)
	assert.Equal(t, calls[0].User, calls[1].User, "regeneration must not carry the discarded list")

	require.Len(t, rm.Milestones, 1)
	assert.Equal(t, "submit_milestones-2", rm.Milestones[0].Name)

	// Milestones twice, then epics and stories once each; tasks are not reviewed.
	require.Len(t, requests, 4)
	assert.Equal(t, "Tide Pool", requests[0].Parent)
	assert.Equal(t, 2, requests[1].Round)
	assert.Equal(t, models.LevelEpic, requests[2].Level)
	assert.Equal(t, "submit_milestones-2", requests[2].Parent)
	assert.Equal(t, models.LevelStory, requests[3].Level)
}

func TestReview_Abort(t *testing.T) {
	client := &generatetest.PlannerClient{Width: 2}
	saver := &memSaver{}
	reviewer := ReviewerFunc(func(context.Context, ReviewRequest) (Decision, error) {
		return DecisionAbort, nil
	})
	o := newTestOrchestrator(t, client, saver, WithReviewer(reviewer))

	_, err := o.Generate(context.Background(), projectContext())
	assert.ErrorIs(t, err, ErrAborted)
	assert.Equal(t, 1, client.CallCount())
	require.Len(t, saver.snapshots, 1)
	assert.Empty(t, saver.last(t).Milestones)
}

func TestReview_ErrorIsWrapped(t *testing.T) {
	closed := errors.New("terminal closed")
	reviewer := ReviewerFunc(func(context.Context, ReviewRequest) (Decision, error) {
		return DecisionApprove, closed
	})
	o := newTestOrchestrator(t, &generatetest.PlannerClient{}, &memSaver{}, WithReviewer(reviewer))

	_, err := o.Generate(context.Background(), projectContext())
	assert.ErrorIs(t, err, closed)
	assert.ErrorContains(t, err, "review milestones")
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "approve", DecisionApprove.String())
	assert.Equal(t, "regenerate", DecisionRegenerate.String())
	assert.Equal(t, "abort", DecisionAbort.String())
	assert.Equal(t, "unknown", Decision(42).String())
}
