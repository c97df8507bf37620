package analysis

import (
	"sort"

	"github.com/formcoach/trendwatch/internal/models"
)

// DetectorConfig carries the tunables of the emerging-signal detectors.
// The thresholds are configuration, not law; defaults mirror what the
// brief's readers calibrated against.
type DetectorConfig struct {
	// BreakoutThresholdPct flags an article when its pageview average
	// rose by more than this percentage against the prior snapshot.
	BreakoutThresholdPct float64
	// BreakoutNoiseFloor suppresses breakouts on articles whose current
	// daily average is too small for the percentage to mean anything.
	BreakoutNoiseFloor float64
	// MinTermLength feeds the topic-fingerprint tokenizer.
	MinTermLength int
}

func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		BreakoutThresholdPct: 15,
		BreakoutNoiseFloor:   100,
		MinTermLength:        DefaultMinTermLength,
	}
}

// DetectEmergingSignals runs all four detectors and concatenates their
// output in a stable order: rising queries, new topics, breakouts, new
// questions. With no prior snapshot every detector stays silent; a
// signal is never manufactured from a single observation.
func DetectEmergingSignals(current, prior *models.Snapshot, cfg DetectorConfig) []models.EmergingSignal {
	var signals []models.EmergingSignal
	signals = append(signals, DetectRisingQueries(current, prior)...)
	signals = append(signals, DetectNewTopics(current, prior, cfg.MinTermLength)...)
	signals = append(signals, DetectPageviewBreakouts(current, prior, cfg.BreakoutThresholdPct, cfg.BreakoutNoiseFloor)...)
	signals = append(signals, DetectNewQuestions(current, prior)...)
	return signals
}

// DetectRisingQueries reports rising-query terms absent from the prior
// snapshot's rising set, ordered by the parent keyword's current
// interest descending, ties broken by lexical order of the term.
func DetectRisingQueries(current, prior *models.Snapshot) []models.EmergingSignal {
	if current == nil || prior == nil {
		return nil
	}

	priorSet := prior.RisingQuerySet()
	var out []models.EmergingSignal
	seen := make(map[string]struct{})

	for keyword, stats := range current.Keywords {
		for _, rq := range stats.RisingQueries {
			if rq.Term == "" {
				continue
			}
			if _, dup := seen[rq.Term]; dup {
				continue
			}
			if _, known := priorSet[rq.Term]; known {
				continue
			}
			seen[rq.Term] = struct{}{}
			out = append(out, models.EmergingSignal{
				Kind: models.SignalRisingQuery,
				RisingQuery: &models.RisingQuerySignal{
					Term:          rq.Term,
					ParentKeyword: keyword,
					ParentScore:   stats.Current,
				},
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].RisingQuery, out[j].RisingQuery
		if a.ParentScore != b.ParentScore {
			return a.ParentScore > b.ParentScore
		}
		return a.Term < b.Term
	})
	return out
}

// DetectNewTopics flags each current post whose title carries at least
// one term missing from the prior week's topic fingerprint. The signal
// carries the post's novel-term set.
func DetectNewTopics(current, prior *models.Snapshot, minTermLength int) []models.EmergingSignal {
	if current == nil || prior == nil {
		return nil
	}

	priorTerms := prior.FingerprintSet()
	var out []models.EmergingSignal

	for _, post := range current.Posts {
		terms := Tokenize(post.Title, minTermLength)
		var novel []string
		for _, term := range terms {
			if _, known := priorTerms[term]; !known {
				novel = append(novel, term)
			}
		}
		if len(novel) == 0 {
			continue
		}
		out = append(out, models.EmergingSignal{
			Kind: models.SignalNewTopic,
			NewTopic: &models.NewTopicSignal{
				Title:      post.Title,
				Subreddit:  post.Subreddit,
				URL:        post.URL,
				Score:      post.Score,
				Comments:   post.Comments,
				NovelTerms: novel,
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NewTopic.Score > out[j].NewTopic.Score
	})
	return out
}

// DetectPageviewBreakouts compares articles present in both snapshots
// and flags those whose daily average rose past thresholdPct while the
// current average clears the noise floor. All simultaneous breakouts
// are reported, ordered by descending percentage change.
func DetectPageviewBreakouts(current, prior *models.Snapshot, thresholdPct, noiseFloor float64) []models.EmergingSignal {
	if current == nil || prior == nil {
		return nil
	}

	var out []models.EmergingSignal
	for article, stats := range current.Pageviews {
		priorStats, ok := prior.Pageviews[article]
		if !ok {
			continue
		}
		pct := pctChange(stats.CurrentAvg, priorStats.CurrentAvg)
		if pct == nil || *pct <= thresholdPct {
			continue
		}
		if stats.CurrentAvg <= noiseFloor {
			continue
		}
		out = append(out, models.EmergingSignal{
			Kind: models.SignalPageviewBreakout,
			PageviewBreakout: &models.PageviewBreakoutSignal{
				Article:    article,
				CurrentAvg: stats.CurrentAvg,
				PriorAvg:   priorStats.CurrentAvg,
				PctChange:  *pct,
			},
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].PageviewBreakout, out[j].PageviewBreakout
		if a.PctChange != b.PctChange {
			return a.PctChange > b.PctChange
		}
		return a.Article < b.Article
	})
	return out
}

// DetectNewQuestions reports questions absent from the prior snapshot,
// compared on normalized text, in lexical order.
func DetectNewQuestions(current, prior *models.Snapshot) []models.EmergingSignal {
	if current == nil || prior == nil {
		return nil
	}

	priorSet := make(map[string]struct{}, len(prior.Questions))
	for _, q := range prior.Questions {
		priorSet[NormalizeQuestion(q)] = struct{}{}
	}

	var texts []string
	seen := make(map[string]struct{})
	for _, q := range current.Questions {
		norm := NormalizeQuestion(q)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		if _, known := priorSet[norm]; !known {
			texts = append(texts, norm)
		}
	}
	sort.Strings(texts)

	out := make([]models.EmergingSignal, 0, len(texts))
	for _, text := range texts {
		out = append(out, models.EmergingSignal{
			Kind:        models.SignalNewQuestion,
			NewQuestion: &models.NewQuestionSignal{Text: text},
		})
	}
	return out
}
