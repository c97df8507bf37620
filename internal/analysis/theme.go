package analysis

import (
	"sort"
	"strings"

	"github.com/formcoach/trendwatch/internal/models"
)

// ThemeConfig carries the theme-selection thresholds and the terminal
// fallback. Like the detector thresholds these are configuration.
type ThemeConfig struct {
	// EstablishedTrendPct is the WoW change a keyword must exceed to be
	// picked as the theme directly from the trends source.
	EstablishedTrendPct float64
	// MinKeywordInterest keeps low-volume keywords from winning on a
	// percentage spike alone.
	MinKeywordInterest float64
	// MinTopicScore is the engagement a new forum topic needs before it
	// can carry the theme.
	MinTopicScore int
	// TopicKeywords are the recognizable subject terms extracted from a
	// winning post title; the subreddit name is the fallback.
	TopicKeywords []string
	// DefaultTheme is the terminal fallback when every source is empty.
	DefaultTheme string
}

func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		EstablishedTrendPct: 20,
		MinKeywordInterest:  15,
		MinTopicScore:       50,
		TopicKeywords: []string{
			"pain", "back", "neck", "hip", "knee", "shoulder",
			"posture", "sciatica", "headache", "ankle", "wrist",
			"spine", "disc", "herniated", "plantar", "fasciitis",
			"tendonitis", "fibromyalgia", "arthritis", "scoliosis",
		},
		DefaultTheme: "General Pain Management",
	}
}

// SelectTheme picks this week's primary content theme. The cascade is
// the system's graceful-degradation contract: a failed source arrives
// here as an empty input and only shifts which branch fires.
//
//  1. a keyword delta past the established-trend threshold
//  2. the strongest pageview breakout's subject
//  3. a new forum topic with sufficient engagement
//  4. the configured default
func SelectTheme(deltas map[string]models.DeltaRecord, signals []models.EmergingSignal, priorTheme string, cfg ThemeConfig) models.ThemeSelection {
	theme, source := pickTheme(deltas, signals, cfg)
	return models.ThemeSelection{
		Theme:          theme,
		Source:         source,
		PriorTheme:     priorTheme,
		IsContinuation: priorTheme != "" && normalizeTheme(theme) == normalizeTheme(priorTheme),
	}
}

func pickTheme(deltas map[string]models.DeltaRecord, signals []models.EmergingSignal, cfg ThemeConfig) (string, models.ThemeSource) {
	if kw := establishedTrend(deltas, cfg); kw != "" {
		return kw, models.ThemeSourceTrends
	}

	if breakout := topBreakout(signals); breakout != nil {
		return strings.ReplaceAll(breakout.Article, "_", " "), models.ThemeSourceWikipedia
	}

	if topic := topNewTopic(signals, cfg.MinTopicScore); topic != nil {
		return topicKeyword(topic, cfg.TopicKeywords), models.ThemeSourceReddit
	}

	return cfg.DefaultTheme, models.ThemeSourceFallback
}

func establishedTrend(deltas map[string]models.DeltaRecord, cfg ThemeConfig) string {
	best := ""
	bestPct := cfg.EstablishedTrendPct
	keywords := make([]string, 0, len(deltas))
	for kw := range deltas {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords) // deterministic winner on equal percentages

	for _, kw := range keywords {
		rec := deltas[kw]
		if rec.WoWPct == nil || rec.Current < cfg.MinKeywordInterest {
			continue
		}
		if *rec.WoWPct > bestPct {
			best = kw
			bestPct = *rec.WoWPct
		}
	}
	return best
}

func topBreakout(signals []models.EmergingSignal) *models.PageviewBreakoutSignal {
	var best *models.PageviewBreakoutSignal
	for i := range signals {
		b := signals[i].PageviewBreakout
		if b == nil {
			continue
		}
		if best == nil || b.PctChange > best.PctChange {
			best = b
		}
	}
	return best
}

func topNewTopic(signals []models.EmergingSignal, minScore int) *models.NewTopicSignal {
	var best *models.NewTopicSignal
	for i := range signals {
		t := signals[i].NewTopic
		if t == nil || t.Score < minScore {
			continue
		}
		if best == nil || t.Score > best.Score {
			best = t
		}
	}
	return best
}

// topicKeyword pulls a recognizable subject term out of the winning
// post title, preferring the longest match for specificity ("sciatica"
// over "back"). The subreddit name is the fallback.
func topicKeyword(topic *models.NewTopicSignal, keywords []string) string {
	titleWords := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(topic.Title)) {
		titleWords[strings.Trim(w, ".,!?;:")] = struct{}{}
	}

	best := ""
	for _, kw := range keywords {
		if _, ok := titleWords[kw]; ok && len(kw) > len(best) {
			best = kw
		}
	}
	if best != "" {
		return best
	}
	return topic.Subreddit
}

func normalizeTheme(theme string) string {
	return strings.Join(strings.Fields(strings.ToLower(theme)), " ")
}
