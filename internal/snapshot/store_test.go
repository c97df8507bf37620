package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcoach/trendwatch/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewStore(t.TempDir(), log)
}

func sampleSnapshot(date string) *models.Snapshot {
	return &models.Snapshot{
		RunDate:     date,
		BriefNumber: 1,
		Keywords: map[string]models.KeywordStats{
			"lower back pain": {
				Keyword:  "lower back pain",
				Current:  62,
				PrevWeek: 55,
				RisingQueries: []models.RisingQuery{
					{Term: "lower back pain stretches", Value: 250},
				},
			},
		},
		Posts: []models.Post{
			{ID: "t3_abc", Title: "Sciatica flare after deadlifts", Subreddit: "Sciatica", Score: 120, URL: "https://reddit.com/r/Sciatica/abc"},
		},
		TopicFingerprint: []string{"sciatica", "deadlifts", "flare"},
		Pageviews: map[string]models.PageviewStats{
			"Low_back_pain": {Article: "Low_back_pain", CurrentAvg: 900, PriorAvg: 820},
		},
		Questions: []string{"what helps sciatica at night"},
		Theme:     "sciatica",
	}
}

func TestSaveAndLoadPriorRoundTrip(t *testing.T) {
	store := newTestStore(t)

	saved := sampleSnapshot("2026-08-16")
	_, err := store.Save(saved, false)
	require.NoError(t, err)

	got, err := store.LoadPrior("2026-08-23")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved, got)
}

func TestLoadPriorIsStrictlyBefore(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(sampleSnapshot("2026-08-09"), false)
	require.NoError(t, err)
	_, err = store.Save(sampleSnapshot("2026-08-16"), false)
	require.NoError(t, err)

	// The current run's own date must never be returned as prior.
	got, err := store.LoadPrior("2026-08-16")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2026-08-09", got.RunDate)
}

func TestLoadPriorEmptyStore(t *testing.T) {
	store := newTestStore(t)

	got, err := store.LoadPrior("2026-08-23")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveDuplicateDateFails(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(sampleSnapshot("2026-08-16"), false)
	require.NoError(t, err)

	_, err = store.Save(sampleSnapshot("2026-08-16"), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateSnapshot))
}

func TestSaveDuplicateDateWithOverwrite(t *testing.T) {
	store := newTestStore(t)

	first := sampleSnapshot("2026-08-16")
	first.Theme = "sciatica"
	_, err := store.Save(first, false)
	require.NoError(t, err)

	second := sampleSnapshot("2026-08-16")
	second.Theme = "posture"
	_, err = store.Save(second, true)
	require.NoError(t, err)

	got, err := store.LoadPrior("2026-08-23")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "posture", got.Theme)
}

func TestMalformedPriorFallsBackToBaseline(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	dir := t.TempDir()
	store := NewStore(dir, log)

	path := filepath.Join(dir, "snapshot_2026-08-16.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	got, err := store.LoadPrior("2026-08-23")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNextBriefNumber(t *testing.T) {
	store := newTestStore(t)
	assert.Equal(t, 1, store.NextBriefNumber("2026-08-09"))

	_, err := store.Save(sampleSnapshot("2026-08-09"), false)
	require.NoError(t, err)
	_, err = store.Save(sampleSnapshot("2026-08-16"), false)
	require.NoError(t, err)

	assert.Equal(t, 3, store.NextBriefNumber("2026-08-23"))
}

func TestNextBriefNumberExcludesOwnRunDate(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(sampleSnapshot("2026-08-09"), false)
	require.NoError(t, err)
	_, err = store.Save(sampleSnapshot("2026-08-16"), false)
	require.NoError(t, err)

	// re-running the 08-16 date must reuse its original number
	assert.Equal(t, 2, store.NextBriefNumber("2026-08-16"))
}
