package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/arbor/pkg/models"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// shopRoadmap is a partially generated tree: one story has tasks, one is a
// shell, and the second milestone has no epics yet.
func shopRoadmap() *models.Roadmap {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &models.Roadmap{
		ID:          "rm-1",
		ProjectName: "Shop",
		Context:     models.ProjectContext{Name: "Shop", Vision: "Sell handmade goods online."},
		CreatedAt:   created,
		UpdatedAt:   created,
		Milestones: []*models.Milestone{
			{
				ID:          "m-1",
				Name:        "MVP",
				Description: "Smallest store that can take money.",
				Goal:        "Take the first order",
				Priority:    models.PriorityHigh,
				Epics: []*models.Epic{
					{
						ID:          "e-1",
						Name:        "Catalog",
						Description: "Product listing and search.",
						Goal:        "Customers can find products",
						Priority:    models.PriorityMedium,
						Stories: []*models.Story{
							{
								ID:                 "s-1",
								Name:               "Browse products",
								Description:        "As a shopper I can browse products.",
								Priority:           models.PriorityHigh,
								AcceptanceCriteria: []string{"Products are listed by category", "Empty categories show a hint"},
								Tasks: []*models.Task{
									{
										ID:                 "t-model",
										Name:               "Create product model",
										Priority:           models.PriorityHigh,
										Status:             models.StatusCompleted,
										EstimatedHours:     3,
										AcceptanceCriteria: []string{"Model has name, price"},
									},
									{
										ID:             "t-list",
										Name:           "List products endpoint",
										Priority:       models.PriorityMedium,
										EstimatedHours: 4,
										Prerequisites:  []string{"t-model"},
									},
								},
							},
							{
								ID:       "s-2",
								Name:     "Search products",
								Priority: models.PriorityLow,
							},
						},
					},
				},
			},
			{
				ID:          "m-2",
				Name:        "Launch",
				Description: "Go live.",
				Priority:    models.PriorityLow,
			},
		},
	}
}

func TestMarkdown_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, shopRoadmap()))
	newGoldie(t).Assert(t, "shop_markdown", buf.Bytes())
}

func TestMarkdown_EmptyRoadmap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, &models.Roadmap{ProjectName: "Empty"}))
	newGoldie(t).Assert(t, "empty_markdown", buf.Bytes())
}

func TestCSV_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, shopRoadmap()))
	newGoldie(t).Assert(t, "shop_csv", buf.Bytes())
}

func TestCSV_HeaderOnlyWithoutTasks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, &models.Roadmap{ProjectName: "Empty"}))
	assert.Equal(t, "milestone,epic,story,task_id,task,priority,status,estimated_hours,prerequisites,acceptance_criteria\n", buf.String())
}

func TestWrite_JSON(t *testing.T) {
	rm := shopRoadmap()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rm, FormatJSON))

	var decoded models.Roadmap
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, rm.Counts(), decoded.Counts())
	assert.Equal(t, "t-model", decoded.Milestones[0].Epics[0].Stories[0].Tasks[1].Prerequisites[0])
}

func TestWrite_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, nil, FormatCSV))
	assert.Error(t, Write(&buf, shopRoadmap(), Format("pdf")))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"markdown", FormatMarkdown, false},
		{"MD", FormatMarkdown, false},
		{" csv ", FormatCSV, false},
		{"json", FormatJSON, false},
		{"xlsx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormat_Extension(t *testing.T) {
	assert.Equal(t, ".md", FormatMarkdown.Extension())
	assert.Equal(t, ".csv", FormatCSV.Extension())
	assert.Equal(t, ".json", FormatJSON.Extension())
}
