package orchestrator

import (
	"time"

	"github.com/ShayCichocki/arbor/pkg/models"
)

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventExpansionStarted indicates children are being requested for a node.
	EventExpansionStarted EventType = "expansion_started"
	// EventAttemptFailed indicates one generation attempt failed and will be retried.
	EventAttemptFailed EventType = "attempt_failed"
	// EventShellsSaved indicates a batch of shells was attached and persisted.
	EventShellsSaved EventType = "shells_saved"
	// EventTasksSaved indicates a story's tasks were attached and persisted.
	EventTasksSaved EventType = "tasks_saved"
	// EventNodeSkipped indicates a complete subtree was skipped during resume.
	EventNodeSkipped EventType = "node_skipped"
	// EventReviewRegenerate indicates the reviewer discarded a skeleton list.
	EventReviewRegenerate EventType = "review_regenerate"
)

// Event is emitted by the orchestrator as it walks the tree.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// Level is the level being generated (children of NodeName), or the
	// level of the skipped node for EventNodeSkipped.
	Level models.Level
	// NodeID and NodeName identify the node being expanded or skipped.
	NodeID   string
	NodeName string
	// Count is the number of children attached.
	Count int
	// Attempt and MaxAttempts are set for EventAttemptFailed.
	Attempt     int
	MaxAttempts int
	// Path is where the roadmap was written.
	Path string
	// Error contains details for EventAttemptFailed.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
