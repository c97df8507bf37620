// Package brief composes the terminal aggregate of a run. Assembly is
// pure: no network, no persistence, deterministic for a given input.
// The Brief is the single structure the strategy prompt and the email
// renderer consume, so it carries everything they need.
package brief

import (
	"github.com/formcoach/trendwatch/internal/analysis"
	"github.com/formcoach/trendwatch/internal/models"
)

// Inputs is everything the upstream stages produced for one run.
type Inputs struct {
	RunDate        string
	BriefNumber    int
	IsBaseline     bool
	Sources        []string
	SkippedSources []string

	Deltas    map[string]models.DeltaRecord
	Signals   []models.EmergingSignal
	Posts     []models.Post
	Questions []models.Question
	Theme     models.ThemeSelection
	Declining []models.DecliningSignal

	Engagement analysis.EngagementConfig
}

// Assemble merges the stage outputs into one Brief and selects the
// engagement candidates. Sources that were skipped (flag or upstream
// failure) are surfaced on the summary so a reader knows coverage was
// partial.
func Assemble(in Inputs) *models.Brief {
	return &models.Brief{
		Summary: models.SnapshotSummary{
			RunDate:        in.RunDate,
			BriefNumber:    in.BriefNumber,
			IsBaseline:     in.IsBaseline,
			Sources:        in.Sources,
			SkippedSources: in.SkippedSources,
		},
		Deltas:               in.Deltas,
		EmergingSignals:      in.Signals,
		TaggedPosts:          in.Posts,
		ThemeSelection:       in.Theme,
		EngagementCandidates: analysis.RankEngagementCandidates(in.Posts, in.Questions, in.Engagement),
		Declining:            in.Declining,
		Questions:            in.Questions,
	}
}
