package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/ShayCichocki/arbor/pkg/models"
)

func genStrings(label string) *rapid.Generator[[]string] {
	return rapid.Custom(func(t *rapid.T) []string {
		if rapid.Bool().Draw(t, label+"_nil") {
			return nil
		}
		return rapid.SliceOfN(rapid.StringMatching(`[a-z ]{1,12}`), 0, 3).Draw(t, label)
	})
}

// genRoadmap draws trees of varying shape, including empty levels, so
// both complete and incomplete roadmaps are covered.
func genRoadmap() *rapid.Generator[*models.Roadmap] {
	return rapid.Custom(func(t *rapid.T) *models.Roadmap {
		serial := 0
		id := func() string {
			serial++
			return fmt.Sprintf("id-%d", serial)
		}
		priority := rapid.SampledFrom(models.Priorities)
		status := rapid.SampledFrom([]models.Status{
			models.StatusNotStarted, models.StatusInProgress, models.StatusBlocked, models.StatusCompleted,
		})
		name := rapid.StringMatching(`[A-Za-z][A-Za-z0-9 ]{0,15}`)

		created := time.Unix(rapid.Int64Range(0, 4_000_000_000).Draw(t, "created"), rapid.Int64Range(0, 999_999_999).Draw(t, "nanos")).UTC()
		rm := &models.Roadmap{
			ID:          id(),
			ProjectName: name.Draw(t, "project"),
			Context: models.ProjectContext{
				Name:        "ctx",
				Vision:      "vision",
				TargetUsers: genStrings("users").Draw(t, "users"),
				Notes:       rapid.StringMatching(`[ -~]{0,40}`).Draw(t, "notes"),
			},
			CreatedAt: created,
			UpdatedAt: created.Add(time.Duration(rapid.IntRange(0, 1000).Draw(t, "delta")) * time.Second),
		}

		for i := rapid.IntRange(0, 3).Draw(t, "milestones"); i > 0; i-- {
			m := &models.Milestone{ID: id(), Name: name.Draw(t, "m"), Goal: name.Draw(t, "goal"), Priority: priority.Draw(t, "mp"), Status: status.Draw(t, "ms")}
			for j := rapid.IntRange(0, 2).Draw(t, "epics"); j > 0; j-- {
				e := &models.Epic{ID: id(), Name: name.Draw(t, "e"), Priority: priority.Draw(t, "ep"), Status: status.Draw(t, "es")}
				for k := rapid.IntRange(0, 2).Draw(t, "stories"); k > 0; k-- {
					s := &models.Story{ID: id(), Name: name.Draw(t, "s"), Priority: priority.Draw(t, "sp"), Status: status.Draw(t, "ss"), AcceptanceCriteria: genStrings("sac").Draw(t, "sac")}
					for l := rapid.IntRange(0, 3).Draw(t, "tasks"); l > 0; l-- {
						s.Tasks = append(s.Tasks, &models.Task{
							ID:                 id(),
							Name:               name.Draw(t, "t"),
							Priority:           priority.Draw(t, "tp"),
							Status:             status.Draw(t, "ts"),
							EstimatedHours:     rapid.IntRange(models.MinTaskHours, models.MaxTaskHours).Draw(t, "hours"),
							Prerequisites:      genStrings("pre").Draw(t, "pre"),
							AcceptanceCriteria: genStrings("tac").Draw(t, "tac"),
							AgentDirective:     name.Draw(t, "directive"),
						})
					}
					e.Stories = append(e.Stories, s)
				}
				m.Epics = append(m.Epics, e)
			}
			rm.Milestones = append(rm.Milestones, m)
		}
		return rm
	})
}

func TestProperty_SaveLoadRoundTrip(t *testing.T) {
	m := NewManager(t.TempDir())
	rapid.Check(t, func(rt *rapid.T) {
		rm := genRoadmap().Draw(rt, "roadmap")

		path, err := m.Save(rm)
		if err != nil {
			rt.Fatalf("Save failed: %v", err)
		}
		loaded, err := m.Load(path)
		if err != nil {
			rt.Fatalf("Load failed: %v", err)
		}

		if !assert.ObjectsAreEqual(rm, loaded) {
			rt.Fatalf("round trip changed the tree:\nsaved  %+v\nloaded %+v", rm, loaded)
		}
		if rm.TotalHours() != loaded.TotalHours() || rm.Counts() != loaded.Counts() {
			rt.Fatalf("aggregates differ after round trip")
		}
	})
}

func TestProperty_ResumePointIffIncomplete(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rm := genRoadmap().Draw(rt, "roadmap")
		p := FindResumePoint(rm)
		if (p == nil) != rm.IsComplete() {
			rt.Fatalf("resume point %v but IsComplete=%v", p, rm.IsComplete())
		}
	})
}
