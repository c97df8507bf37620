package brief

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcoach/trendwatch/internal/analysis"
	"github.com/formcoach/trendwatch/internal/models"
)

func sampleInputs() Inputs {
	wow := 35.0
	now := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	cfg := analysis.DefaultEngagementConfig()
	cfg.Now = now

	return Inputs{
		RunDate:        "2026-08-23",
		BriefNumber:    7,
		Sources:        []string{"trends", "reddit", "wikipedia", "quora"},
		SkippedSources: []string{"quora"},
		Deltas: map[string]models.DeltaRecord{
			"sciatica": {Keyword: "sciatica", Current: 62, WoWPct: &wow},
		},
		Signals: []models.EmergingSignal{
			{
				Kind: models.SignalPageviewBreakout,
				PageviewBreakout: &models.PageviewBreakoutSignal{
					Article: "Sciatica", CurrentAvg: 1400, PriorAvg: 800, PctChange: 75,
				},
			},
		},
		Posts: []models.Post{
			{
				ID: "t3_a", Title: "Desperate for sciatica advice", Subreddit: "Sciatica",
				Score: 120, Comments: 33, CreatedAt: now.Add(-24 * time.Hour), Tag: models.TagNew,
			},
		},
		Questions: []models.Question{{Text: "does walking help sciatica", URL: "https://quora.com/q"}},
		Theme: models.ThemeSelection{
			Theme: "sciatica", Source: models.ThemeSourceTrends, PriorTheme: "posture",
		},
		Declining:  []models.DecliningSignal{{Keyword: "foam rolling", WoWPct: -18, Source: "trends"}},
		Engagement: cfg,
	}
}

func TestAssembleCarriesEverything(t *testing.T) {
	b := Assemble(sampleInputs())

	assert.Equal(t, "2026-08-23", b.Summary.RunDate)
	assert.Equal(t, 7, b.Summary.BriefNumber)
	assert.False(t, b.Summary.IsBaseline)
	assert.Equal(t, []string{"quora"}, b.Summary.SkippedSources)

	assert.Len(t, b.Deltas, 1)
	assert.Len(t, b.EmergingSignals, 1)
	assert.Len(t, b.TaggedPosts, 1)
	assert.Len(t, b.Declining, 1)
	assert.Equal(t, "sciatica", b.ThemeSelection.Theme)
}

func TestAssembleSelectsEngagementCandidates(t *testing.T) {
	b := Assemble(sampleInputs())

	require.Len(t, b.EngagementCandidates, 2)
	assert.Equal(t, 1, b.EngagementCandidates[0].Rank)
	// the help-seeking reddit post outranks the bare question
	assert.Equal(t, "reddit", b.EngagementCandidates[0].Platform)
}

func TestAssembleIsDeterministic(t *testing.T) {
	a := Assemble(sampleInputs())
	b := Assemble(sampleInputs())
	assert.Equal(t, a, b)
}

func TestAssembleBaselineRun(t *testing.T) {
	in := sampleInputs()
	in.IsBaseline = true
	in.Signals = nil
	in.Deltas = map[string]models.DeltaRecord{
		"sciatica": {Keyword: "sciatica", Current: 62},
	}

	b := Assemble(in)

	assert.True(t, b.Summary.IsBaseline)
	assert.Empty(t, b.EmergingSignals)
	assert.Nil(t, b.Deltas["sciatica"].WoWPct)
}
