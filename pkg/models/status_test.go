package models

import "testing"

func TestPriority_Valid(t *testing.T) {
	tests := []struct {
		name     string
		priority Priority
		want     bool
	}{
		{"critical is valid", PriorityCritical, true},
		{"high is valid", PriorityHigh, true},
		{"medium is valid", PriorityMedium, true},
		{"low is valid", PriorityLow, true},
		{"empty string is invalid", Priority(""), false},
		{"uppercase is invalid", Priority("HIGH"), false},
		{"unknown is invalid", Priority("urgent"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.priority.Valid(); got != tt.want {
				t.Errorf("Priority(%q).Valid() = %v, want %v", tt.priority, got, tt.want)
			}
		})
	}
}

func TestParsePriority(t *testing.T) {
	got, err := ParsePriority("  High ")
	if err != nil {
		t.Fatalf("ParsePriority failed: %v", err)
	}
	if got != PriorityHigh {
		t.Errorf("ParsePriority = %q, want %q", got, PriorityHigh)
	}

	if _, err := ParsePriority("P0"); err == nil {
		t.Error("expected error for unknown priority")
	}
}

func TestStatus_OrDefault(t *testing.T) {
	if got := Status("").OrDefault(); got != StatusNotStarted {
		t.Errorf("empty status default = %q, want %q", got, StatusNotStarted)
	}
	if got := StatusBlocked.OrDefault(); got != StatusBlocked {
		t.Errorf("OrDefault changed a set status: %q", got)
	}
	if Status("done").Valid() {
		t.Error("status 'done' should be invalid")
	}
}

func TestLevel_Names(t *testing.T) {
	tests := []struct {
		level  Level
		title  string
		plural string
	}{
		{LevelMilestone, "Milestone", "milestones"},
		{LevelEpic, "Epic", "epics"},
		{LevelStory, "Story", "stories"},
		{LevelTask, "Task", "tasks"},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			if got := tt.level.Title(); got != tt.title {
				t.Errorf("Title() = %q, want %q", got, tt.title)
			}
			if got := tt.level.Plural(); got != tt.plural {
				t.Errorf("Plural() = %q, want %q", got, tt.plural)
			}
		})
	}
}
