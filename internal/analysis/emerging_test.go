package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcoach/trendwatch/internal/models"
)

func TestAllDetectorsSilentWithoutPrior(t *testing.T) {
	current := &models.Snapshot{
		RunDate: "2026-08-23",
		Keywords: map[string]models.KeywordStats{
			"sciatica": {
				Keyword: "sciatica", Current: 60,
				RisingQueries: []models.RisingQuery{{Term: "sciatica stretches", Value: 300}},
			},
		},
		Posts:     []models.Post{{ID: "t3_a", Title: "Dowager hump exercises that worked", Score: 90}},
		Pageviews: map[string]models.PageviewStats{"Sciatica": {Article: "Sciatica", CurrentAvg: 1500, PriorAvg: 700}},
		Questions: []string{"how do I fix forward head posture"},
	}

	assert.Empty(t, DetectRisingQueries(current, nil))
	assert.Empty(t, DetectNewTopics(current, nil, DefaultMinTermLength))
	assert.Empty(t, DetectPageviewBreakouts(current, nil, 15, 100))
	assert.Empty(t, DetectNewQuestions(current, nil))
	assert.Empty(t, DetectEmergingSignals(current, nil, DefaultDetectorConfig()))
}

func TestDetectRisingQueriesSetDifferenceAndOrder(t *testing.T) {
	prior := &models.Snapshot{
		RunDate: "2026-08-16",
		Keywords: map[string]models.KeywordStats{
			"sciatica": {
				Keyword: "sciatica", Current: 50,
				RisingQueries: []models.RisingQuery{{Term: "sciatica stretches", Value: 120}},
			},
		},
	}
	current := &models.Snapshot{
		RunDate: "2026-08-23",
		Keywords: map[string]models.KeywordStats{
			"sciatica": {
				Keyword: "sciatica", Current: 65,
				RisingQueries: []models.RisingQuery{
					{Term: "sciatica stretches", Value: 150}, // known last week
					{Term: "sciatica sleeping position", Value: 400},
				},
			},
			"neck pain": {
				Keyword: "neck pain", Current: 80,
				RisingQueries: []models.RisingQuery{{Term: "neck pain pillow", Value: 90}},
			},
		},
	}

	signals := DetectRisingQueries(current, prior)

	require.Len(t, signals, 2)
	// ordered by parent keyword interest descending
	assert.Equal(t, "neck pain pillow", signals[0].RisingQuery.Term)
	assert.Equal(t, "neck pain", signals[0].RisingQuery.ParentKeyword)
	assert.Equal(t, 80.0, signals[0].RisingQuery.ParentScore)
	assert.Equal(t, "sciatica sleeping position", signals[1].RisingQuery.Term)
}

func TestDetectNewTopicsNovelTerms(t *testing.T) {
	prior := &models.Snapshot{
		RunDate:          "2026-08-16",
		TopicFingerprint: []string{"sciatica", "posture"},
	}
	current := &models.Snapshot{
		RunDate: "2026-08-23",
		Posts: []models.Post{
			{ID: "t3_a", Title: "Sciatica dowager hump", Subreddit: "posture", Score: 40},
			{ID: "t3_b", Title: "My sciatica posture", Subreddit: "Sciatica", Score: 90},
		},
	}

	signals := DetectNewTopics(current, prior, DefaultMinTermLength)

	require.Len(t, signals, 1)
	topic := signals[0].NewTopic
	assert.Equal(t, "Sciatica dowager hump", topic.Title)
	assert.Equal(t, []string{"dowager", "hump"}, topic.NovelTerms)
}

func TestDetectNewTopicsOrderedByScore(t *testing.T) {
	prior := &models.Snapshot{RunDate: "2026-08-16", TopicFingerprint: []string{"posture"}}
	current := &models.Snapshot{
		RunDate: "2026-08-23",
		Posts: []models.Post{
			{ID: "t3_a", Title: "Piriformis release routine", Score: 12},
			{ID: "t3_b", Title: "Herniated disc recovery timeline", Score: 340},
		},
	}

	signals := DetectNewTopics(current, prior, DefaultMinTermLength)

	require.Len(t, signals, 2)
	assert.Equal(t, 340, signals[0].NewTopic.Score)
	assert.Equal(t, 12, signals[1].NewTopic.Score)
}

func TestDetectPageviewBreakouts(t *testing.T) {
	prior := &models.Snapshot{
		RunDate: "2026-08-16",
		Pageviews: map[string]models.PageviewStats{
			"Low_back_pain": {Article: "Low_back_pain", CurrentAvg: 800},
			"Poor_posture":  {Article: "Poor_posture", CurrentAvg: 4},
			"Neck_pain":     {Article: "Neck_pain", CurrentAvg: 500},
		},
	}
	current := &models.Snapshot{
		RunDate: "2026-08-23",
		Pageviews: map[string]models.PageviewStats{
			"Low_back_pain": {Article: "Low_back_pain", CurrentAvg: 1400},
			"Poor_posture":  {Article: "Poor_posture", CurrentAvg: 9},  // +125% but under noise floor
			"Neck_pain":     {Article: "Neck_pain", CurrentAvg: 540},   // +8%, under threshold
			"Kyphosis":      {Article: "Kyphosis", CurrentAvg: 10_000}, // absent from prior
		},
	}

	signals := DetectPageviewBreakouts(current, prior, 15, 100)

	require.Len(t, signals, 1)
	b := signals[0].PageviewBreakout
	assert.Equal(t, "Low_back_pain", b.Article)
	assert.Equal(t, 1400.0, b.CurrentAvg)
	assert.Equal(t, 800.0, b.PriorAvg)
	assert.Equal(t, 75.0, b.PctChange)
}

func TestDetectPageviewBreakoutsMultipleOrderedByPct(t *testing.T) {
	prior := &models.Snapshot{
		RunDate: "2026-08-16",
		Pageviews: map[string]models.PageviewStats{
			"A": {Article: "A", CurrentAvg: 1000},
			"B": {Article: "B", CurrentAvg: 1000},
		},
	}
	current := &models.Snapshot{
		RunDate: "2026-08-23",
		Pageviews: map[string]models.PageviewStats{
			"A": {Article: "A", CurrentAvg: 1200},
			"B": {Article: "B", CurrentAvg: 1900},
		},
	}

	signals := DetectPageviewBreakouts(current, prior, 15, 100)

	require.Len(t, signals, 2)
	assert.Equal(t, "B", signals[0].PageviewBreakout.Article)
	assert.Equal(t, "A", signals[1].PageviewBreakout.Article)
}

func TestDetectNewQuestionsNormalizedDiff(t *testing.T) {
	prior := &models.Snapshot{
		RunDate:   "2026-08-16",
		Questions: []string{"what helps sciatica at night"},
	}
	current := &models.Snapshot{
		RunDate: "2026-08-23",
		Questions: []string{
			"What helps  sciatica at night?", // same question, different casing/spacing
			"Can a standing desk fix posture?",
		},
	}

	signals := DetectNewQuestions(current, prior)

	require.Len(t, signals, 1)
	assert.Equal(t, "can a standing desk fix posture", signals[0].NewQuestion.Text)
}

func TestDetectEmergingSignalsStableSectionOrder(t *testing.T) {
	prior := &models.Snapshot{
		RunDate:          "2026-08-16",
		TopicFingerprint: []string{"posture"},
		Pageviews:        map[string]models.PageviewStats{"Sciatica": {Article: "Sciatica", CurrentAvg: 400}},
	}
	current := &models.Snapshot{
		RunDate: "2026-08-23",
		Keywords: map[string]models.KeywordStats{
			"sciatica": {Keyword: "sciatica", Current: 70, RisingQueries: []models.RisingQuery{{Term: "sciatica massage", Value: 200}}},
		},
		Posts:     []models.Post{{ID: "t3_a", Title: "Dowager hump progress", Score: 55}},
		Pageviews: map[string]models.PageviewStats{"Sciatica": {Article: "Sciatica", CurrentAvg: 700}},
		Questions: []string{"is walking good for herniated disc"},
	}

	signals := DetectEmergingSignals(current, prior, DefaultDetectorConfig())

	require.Len(t, signals, 4)
	assert.Equal(t, models.SignalRisingQuery, signals[0].Kind)
	assert.Equal(t, models.SignalNewTopic, signals[1].Kind)
	assert.Equal(t, models.SignalPageviewBreakout, signals[2].Kind)
	assert.Equal(t, models.SignalNewQuestion, signals[3].Kind)
}
