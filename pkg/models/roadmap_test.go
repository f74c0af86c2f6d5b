package models

import (
	"reflect"
	"testing"
)

func task(name string, hours int) *Task {
	return &Task{ID: name, Name: name, Priority: PriorityMedium, Status: StatusNotStarted, EstimatedHours: hours}
}

func fullRoadmap() *Roadmap {
	return &Roadmap{
		ID:          "rm-1",
		ProjectName: "Demo",
		Milestones: []*Milestone{
			{
				ID:   "m1",
				Name: "MVP",
				Epics: []*Epic{
					{ID: "e1", Name: "Auth", Stories: []*Story{
						{ID: "s1", Name: "Login", Tasks: []*Task{task("t1", 3), task("t2", 5)}},
					}},
					{ID: "e2", Name: "Billing", Stories: []*Story{
						{ID: "s2", Name: "Invoices", Tasks: []*Task{task("t3", 8)}},
					}},
				},
			},
		},
	}
}

func TestRoadmap_IsComplete(t *testing.T) {
	rm := fullRoadmap()
	if !rm.IsComplete() {
		t.Fatal("fully populated roadmap should be complete")
	}

	rm.Milestones[0].Epics[1].Stories[0].Tasks = nil
	if rm.IsComplete() {
		t.Error("roadmap with a task-less story should be incomplete")
	}
	if !rm.Milestones[0].Epics[0].IsComplete() {
		t.Error("sibling epic should still be complete")
	}
	if rm.Milestones[0].IsComplete() {
		t.Error("milestone with an incomplete epic should be incomplete")
	}
}

func TestRoadmap_IsComplete_EmptyLevels(t *testing.T) {
	if (&Roadmap{}).IsComplete() {
		t.Error("roadmap without milestones should be incomplete")
	}
	if (&Milestone{}).IsComplete() {
		t.Error("milestone shell should be incomplete")
	}
	if (&Epic{}).IsComplete() {
		t.Error("epic shell should be incomplete")
	}
	if (&Story{}).IsComplete() {
		t.Error("story shell should be incomplete")
	}
}

func TestRoadmap_Aggregates(t *testing.T) {
	rm := fullRoadmap()

	if got := rm.TotalHours(); got != 16 {
		t.Errorf("TotalHours = %d, want 16", got)
	}
	if got := rm.Milestones[0].Epics[0].TotalHours(); got != 8 {
		t.Errorf("epic TotalHours = %d, want 8", got)
	}

	want := Counts{Milestones: 1, Epics: 2, Stories: 2, Tasks: 3}
	if got := rm.Counts(); got != want {
		t.Errorf("Counts = %+v, want %+v", got, want)
	}

	// Aggregates follow the tree, there is nothing to keep in sync.
	rm.Milestones[0].Epics[0].Stories[0].Tasks = append(rm.Milestones[0].Epics[0].Stories[0].Tasks, task("t4", 2))
	if got := rm.TotalHours(); got != 18 {
		t.Errorf("TotalHours after append = %d, want 18", got)
	}
}

func TestRoadmap_Names(t *testing.T) {
	rm := fullRoadmap()

	tests := []struct {
		level Level
		want  []string
	}{
		{LevelMilestone, []string{"MVP"}},
		{LevelEpic, []string{"Auth", "Billing"}},
		{LevelStory, []string{"Login", "Invoices"}},
		{LevelTask, []string{"t1", "t2", "t3"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			if got := rm.Names(tt.level); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Names(%s) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestProjectContext_Validate(t *testing.T) {
	var nilCtx *ProjectContext
	if err := nilCtx.Validate(); err == nil {
		t.Error("expected error for nil context")
	}
	if err := (&ProjectContext{Vision: "x"}).Validate(); err == nil {
		t.Error("expected error for missing name")
	}
	if err := (&ProjectContext{Name: "x"}).Validate(); err == nil {
		t.Error("expected error for missing vision")
	}
	if err := (&ProjectContext{Name: "x", Vision: "y"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
