package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/arbor/pkg/models"
)

func sampleRoadmap() *models.Roadmap {
	created := time.Date(2026, 3, 1, 9, 30, 0, 123456789, time.UTC)
	return &models.Roadmap{
		ID:          "rm-1",
		ProjectName: "Tide Pool",
		Context: models.ProjectContext{
			Name:        "Tide Pool",
			Vision:      "Tide charts for small harbours",
			TargetUsers: []string{"harbour masters"},
			MustHave:    []string{"offline mode"},
		},
		Milestones: []*models.Milestone{
			{
				ID: "m1", Name: "MVP", Goal: "Ship it", Priority: models.PriorityHigh, Status: models.StatusNotStarted,
				Epics: []*models.Epic{
					{
						ID: "e1", Name: "Charts", Priority: models.PriorityMedium, Status: models.StatusNotStarted,
						Stories: []*models.Story{
							{
								ID: "s1", Name: "View chart", Priority: models.PriorityMedium, Status: models.StatusInProgress,
								AcceptanceCriteria: []string{"chart renders"},
								Tasks: []*models.Task{
									{ID: "t1", Name: "Fetch data", Priority: models.PriorityHigh, Status: models.StatusCompleted, EstimatedHours: 4, AgentDirective: "fetch", Prerequisites: []string{}},
									{ID: "t2", Name: "Draw", Priority: models.PriorityLow, Status: models.StatusNotStarted, EstimatedHours: 6, AgentDirective: "draw", Prerequisites: []string{"t1"}},
								},
							},
						},
					},
				},
			},
			{ID: "m2", Name: "Beta", Priority: models.PriorityLow, Status: models.StatusNotStarted},
		},
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
	}
}

func TestManager_SaveLoadRoundTrip(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "roadmaps"))
	rm := sampleRoadmap()

	path, err := m.Save(rm)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(m.Dir(), "tide-pool.roadmap.json"), path)

	loaded, err := m.Load(path)
	require.NoError(t, err)
	assert.Equal(t, rm, loaded)
	assert.Equal(t, rm.TotalHours(), loaded.TotalHours())
	assert.Equal(t, rm.Counts(), loaded.Counts())

	byName, err := m.LoadProject("Tide Pool")
	require.NoError(t, err)
	assert.Equal(t, rm, byName)
}

func TestManager_SaveWritesContextDocument(t *testing.T) {
	m := NewManager(t.TempDir())
	rm := sampleRoadmap()

	_, err := m.Save(rm)
	require.NoError(t, err)

	data, err := os.ReadFile(m.ContextPath("Tide Pool"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "vision: Tide charts for small harbours")

	pc, err := m.LoadContext("Tide Pool")
	require.NoError(t, err)
	assert.Equal(t, "Tide Pool", pc.Name)
	assert.Equal(t, []string{"offline mode"}, pc.MustHave)
}

func TestManager_SaveOverwritesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	rm := sampleRoadmap()

	_, err := m.Save(rm)
	require.NoError(t, err)

	rm.Milestones[1].Epics = []*models.Epic{{ID: "e9", Name: "Later"}}
	_, err = m.Save(rm)
	require.NoError(t, err)

	loaded, err := m.LoadProject(rm.ProjectName)
	require.NoError(t, err)
	require.Len(t, loaded.Milestones[1].Epics, 1)
	assert.Equal(t, "Later", loaded.Milestones[1].Epics[0].Name)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "leftover temp file %s", e.Name())
	}
	assert.Len(t, entries, 2)
}

func TestManager_SaveNil(t *testing.T) {
	_, err := NewManager(t.TempDir()).Save(nil)
	assert.Error(t, err)
}

func TestManager_SaveUnwritableDir(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewManager(filepath.Join(blocker, "sub")).Save(sampleRoadmap())
	assert.Error(t, err)
}

func TestManager_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	_, err := m.Load(filepath.Join(dir, "missing.roadmap.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.roadmap.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = m.Load(bad)
	assert.ErrorContains(t, err, "unmarshal roadmap")
}

func TestManager_LoadRejectsMalformedTree(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"null milestone", `{"milestones":[null]}`, "milestones[0]: null entry"},
		{"null epic", `{"milestones":[{"name":"M","epics":[null]}]}`, "milestones[0].epics[0]: null entry"},
		{"null story", `{"milestones":[{"name":"M","epics":[{"name":"E","stories":[null]}]}]}`, "epics[0].stories[0]: null entry"},
		{"null task", `{"milestones":[{"name":"M","epics":[{"name":"E","stories":[{"name":"S","tasks":[null]}]}]}]}`, "stories[0].tasks[0]: null entry"},
		{"unknown status", `{"milestones":[{"name":"M","status":"paused"}]}`, "milestones[0].status"},
		{"unknown priority", `{"milestones":[{"name":"M","epics":[{"name":"E","priority":"urgent"}]}]}`, "epics[0].priority"},
	}

	dir := t.TempDir()
	m := NewManager(dir)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "doc.roadmap.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0644))

			rm, err := m.Load(path)
			assert.Nil(t, rm)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestManager_LoadAllowsEmptyStatusAndPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.roadmap.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"milestones":[{"name":"M","epics":[]}]}`), 0644))

	rm, err := NewManager(dir).Load(path)
	require.NoError(t, err)
	require.Len(t, rm.Milestones, 1)
}

func TestManager_ListAndExists(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "none-yet"))

	entries, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.False(t, m.Exists("Tide Pool"))

	first := sampleRoadmap()
	second := sampleRoadmap()
	second.ProjectName = "Anchor Log"
	second.Context.Name = "Anchor Log"
	_, err = m.Save(first)
	require.NoError(t, err)
	_, err = m.Save(second)
	require.NoError(t, err)

	entries, err = m.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "anchor-log", entries[0].Slug)
	assert.Equal(t, "tide-pool", entries[1].Slug)
	assert.True(t, m.Exists("Tide Pool"))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tide Pool", "tide-pool"},
		{"  Hello,   World!  ", "hello-world"},
		{"v2.0 Release", "v2-0-release"},
		{"already-slugged", "already-slugged"},
		{"Café Ölm", "cafe-olm"},
		{"Crème brûlée", "creme-brulee"},
		{"", "roadmap"},
		{"!!!", "roadmap"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugify_KeepsNonLatinNamesDistinct(t *testing.T) {
	tokyo := Slugify("東京")
	osaka := Slugify("大阪")
	assert.NotEqual(t, tokyo, osaka)
	assert.NotEqual(t, "roadmap", tokyo)
	assert.Regexp(t, `^roadmap-[0-9a-f]{8}$`, tokyo)
	assert.Equal(t, tokyo, Slugify("東京"), "slug must be stable")

	mixed := Slugify("Straße 2")
	assert.Regexp(t, `^stra-e-2-[0-9a-f]{8}$`, mixed)
	assert.NotEqual(t, mixed, Slugify("Strasse 2"))

	m := NewManager(t.TempDir())
	assert.NotEqual(t, m.RoadmapPath("東京"), m.RoadmapPath("大阪"))
}

func TestResumePoint_ConcreteScenario(t *testing.T) {
	tasks := func(prefix string) []*models.Task {
		return []*models.Task{
			{ID: prefix + "-t1", Name: prefix + " one", EstimatedHours: 2},
			{ID: prefix + "-t2", Name: prefix + " two", EstimatedHours: 3},
		}
	}
	rm := &models.Roadmap{
		ProjectName: "Demo",
		Milestones: []*models.Milestone{
			{ID: "a", Name: "A", Epics: []*models.Epic{
				{ID: "a1", Name: "A1", Stories: []*models.Story{{ID: "a1s", Name: "A1 story", Tasks: tasks("a1")}}},
				{ID: "a2", Name: "A2", Stories: []*models.Story{{ID: "a2s", Name: "A2 story", Tasks: tasks("a2")}}},
			}},
			{ID: "b", Name: "B"},
		},
	}

	p := FindResumePoint(rm)
	require.NotNil(t, p)
	assert.Equal(t, models.LevelMilestone, p.Level)
	assert.Equal(t, "b", p.ID)
	assert.Equal(t, `Milestone "B": no epics generated`, p.String())
}

func TestResumePoint_Levels(t *testing.T) {
	rm := sampleRoadmap()
	p := NewManager("").ResumePoint(rm)
	require.NotNil(t, p)
	assert.Equal(t, `Milestone "Beta": no epics generated`, p.String())

	rm.Milestones[1].Epics = []*models.Epic{{ID: "e2", Name: "Sync"}}
	assert.Equal(t, `Epic "Sync": no stories generated`, FindResumePoint(rm).String())

	rm.Milestones[1].Epics[0].Stories = []*models.Story{{ID: "s2", Name: "Upload"}}
	assert.Equal(t, `Story "Upload": no tasks generated`, FindResumePoint(rm).String())

	rm.Milestones[1].Epics[0].Stories[0].Tasks = []*models.Task{{ID: "t9", Name: "Post"}}
	assert.Nil(t, FindResumePoint(rm))
	assert.True(t, rm.IsComplete())
}

func TestResumePoint_EmptyRoadmap(t *testing.T) {
	rm := &models.Roadmap{ID: "rm", ProjectName: "Demo"}
	p := FindResumePoint(rm)
	require.NotNil(t, p)
	assert.Equal(t, `Roadmap "Demo": no milestones generated`, p.String())
	assert.Equal(t, models.LevelMilestone, p.Missing)
	assert.Equal(t, "complete", (*ResumePoint)(nil).String())
}
