package models

import (
	"fmt"
	"strings"
)

// Priority ranks a roadmap item against its siblings.
type Priority string

const (
	// PriorityCritical items block everything else at their level.
	PriorityCritical Priority = "critical"
	// PriorityHigh items should land early.
	PriorityHigh Priority = "high"
	// PriorityMedium is the default ranking.
	PriorityMedium Priority = "medium"
	// PriorityLow items can slip without harming the milestone.
	PriorityLow Priority = "low"
)

// Priorities lists every priority in descending order.
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// ParsePriority converts a case-insensitive priority name.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q: must be one of critical, high, medium, low", s)
	}
	return p, nil
}

// Status represents the delivery state of a roadmap item.
type Status string

const (
	// StatusNotStarted indicates no work has begun.
	StatusNotStarted Status = "not_started"
	// StatusInProgress indicates the item is being worked on.
	StatusInProgress Status = "in_progress"
	// StatusBlocked indicates the item cannot proceed.
	StatusBlocked Status = "blocked"
	// StatusCompleted indicates the item is delivered.
	StatusCompleted Status = "completed"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusBlocked, StatusCompleted:
		return true
	default:
		return false
	}
}

// OrDefault returns StatusNotStarted for the zero value.
func (s Status) OrDefault() Status {
	if s == "" {
		return StatusNotStarted
	}
	return s
}

// Level is a depth in the roadmap tree.
type Level string

const (
	LevelMilestone Level = "milestone"
	LevelEpic      Level = "epic"
	LevelStory     Level = "story"
	LevelTask      Level = "task"
)

// Levels lists the tree levels top to bottom.
var Levels = []Level{LevelMilestone, LevelEpic, LevelStory, LevelTask}

// Valid returns true if the level is a known value.
func (l Level) Valid() bool {
	switch l {
	case LevelMilestone, LevelEpic, LevelStory, LevelTask:
		return true
	default:
		return false
	}
}

// Title returns the capitalised level name used in descriptions.
func (l Level) Title() string {
	if l == "" {
		return ""
	}
	return strings.ToUpper(string(l[:1])) + string(l[1:])
}

// Plural returns the plural form of the level name.
func (l Level) Plural() string {
	if l == LevelStory {
		return "stories"
	}
	return string(l) + "s"
}
