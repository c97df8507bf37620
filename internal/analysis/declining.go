package analysis

import (
	"sort"
	"strings"

	"github.com/formcoach/trendwatch/internal/models"
)

// DecliningConfig mirrors DetectorConfig for the downward direction.
type DecliningConfig struct {
	KeywordDropPct     float64 // flag keywords falling more than this
	MinKeywordInterest float64 // ignore keywords already near zero
	ArticleDropPct     float64
	MinArticleAvg      float64
}

func DefaultDecliningConfig() DecliningConfig {
	return DecliningConfig{
		KeywordDropPct:     -10,
		MinKeywordInterest: 15,
		ArticleDropPct:     -15,
		MinArticleAvg:      50,
	}
}

// DetectDecliningSignals flags topics losing steam: keywords whose WoW
// change fell past the drop threshold while interest is still material,
// plus articles whose pageview average fell likewise. These are topics
// to deprioritize this week, sorted most negative first.
func DetectDecliningSignals(deltas map[string]models.DeltaRecord, current, prior *models.Snapshot, cfg DecliningConfig) []models.DecliningSignal {
	var out []models.DecliningSignal

	for _, rec := range deltas {
		if rec.WoWPct == nil || *rec.WoWPct >= cfg.KeywordDropPct || rec.Current < cfg.MinKeywordInterest {
			continue
		}
		out = append(out, models.DecliningSignal{
			Keyword: rec.Keyword,
			WoWPct:  *rec.WoWPct,
			Source:  "trends",
		})
	}

	if current != nil && prior != nil {
		for article, stats := range current.Pageviews {
			priorStats, ok := prior.Pageviews[article]
			if !ok {
				continue
			}
			pct := pctChange(stats.CurrentAvg, priorStats.CurrentAvg)
			if pct == nil || *pct >= cfg.ArticleDropPct || stats.CurrentAvg < cfg.MinArticleAvg {
				continue
			}
			title := strings.ReplaceAll(article, "_", " ")
			if containsKeyword(out, title) {
				continue
			}
			out = append(out, models.DecliningSignal{
				Keyword: title,
				WoWPct:  *pct,
				Source:  "wikipedia",
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].WoWPct != out[j].WoWPct {
			return out[i].WoWPct < out[j].WoWPct
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}

func containsKeyword(signals []models.DecliningSignal, keyword string) bool {
	for _, s := range signals {
		if strings.EqualFold(s.Keyword, keyword) {
			return true
		}
	}
	return false
}
