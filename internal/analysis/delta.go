package analysis

import (
	"time"

	"github.com/formcoach/trendwatch/internal/models"
)

// staleRunGapDays: beyond this gap the prior run no longer represents
// "last week", so the week-over-week figure switches to the series'
// own previous-week value when the series carries one.
const staleRunGapDays = 10

// ComputeDeltas computes a DeltaRecord per keyword present in current.
// It is a pure function of its inputs: no hidden state, deterministic,
// order-independent across keywords.
//
// Baseline policy: when prior is nil, or the keyword is absent from it,
// Prior and both percentage fields stay nil. A prior value of zero also
// yields a nil percentage rather than a division by zero.
func ComputeDeltas(runDate string, current map[string]models.KeywordStats, prior *models.Snapshot) map[string]models.DeltaRecord {
	deltas := make(map[string]models.DeltaRecord, len(current))

	for keyword, stats := range current {
		rec := models.DeltaRecord{Keyword: keyword, Current: stats.Current}

		if prior != nil {
			if priorStats, ok := prior.Keywords[keyword]; ok {
				priorVal := priorStats.Current
				rec.Prior = &priorVal
				rec.VsLastRunPct = pctChange(stats.Current, priorVal)

				wowBase := priorVal
				if runGapDays(prior.RunDate, runDate) > staleRunGapDays && stats.PrevWeek > 0 {
					wowBase = stats.PrevWeek
				}
				rec.WoWPct = pctChange(stats.Current, wowBase)
			}
		}

		deltas[keyword] = rec
	}
	return deltas
}

// pctChange returns nil when the base is zero.
func pctChange(current, prior float64) *float64 {
	if prior == 0 {
		return nil
	}
	pct := (current - prior) / prior * 100
	return &pct
}

func runGapDays(priorDate, runDate string) int {
	const layout = "2006-01-02"
	p, err1 := time.Parse(layout, priorDate)
	r, err2 := time.Parse(layout, runDate)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(r.Sub(p).Hours() / 24)
}
