package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/formcoach/trendwatch/internal/models"
)

const systemPrompt = `You are a content strategist for a small team making ` +
	`evidence-based mobility and pain-relief content. You receive a weekly ` +
	`research brief and respond with a concrete content plan: one video ` +
	`concept for the week's theme, two short-form ideas riding the emerging ` +
	`signals, and a one-line community engagement plan per candidate. Be ` +
	`specific and brief. No preamble.`

// BuildPrompt renders a brief into the user message for the strategy
// model. It deliberately includes only what changed this week so the
// model reacts to movement instead of restating the niche.
func BuildPrompt(b *models.Brief) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Weekly research brief #%d (%s)\n", b.Summary.BriefNumber, b.Summary.RunDate)
	if b.Summary.IsBaseline {
		sb.WriteString("This is the first run, so there is no week-over-week movement yet.\n")
	}
	if len(b.Summary.SkippedSources) > 0 {
		fmt.Fprintf(&sb, "Sources skipped this run: %s\n", strings.Join(b.Summary.SkippedSources, ", "))
	}

	fmt.Fprintf(&sb, "\nTheme: %s (picked from %s)\n", b.ThemeSelection.Theme, b.ThemeSelection.Source)
	if b.ThemeSelection.IsContinuation {
		fmt.Fprintf(&sb, "The theme continues last week's %q, so build on it rather than reintroducing it.\n",
			b.ThemeSelection.PriorTheme)
	}

	if movers := topMovers(b.Deltas, 5); len(movers) > 0 {
		sb.WriteString("\nBiggest keyword moves:\n")
		for _, m := range movers {
			sb.WriteString("- " + m + "\n")
		}
	}

	if len(b.EmergingSignals) > 0 {
		sb.WriteString("\nEmerging signals:\n")
		for _, sig := range b.EmergingSignals {
			sb.WriteString("- " + describeSignal(sig) + "\n")
		}
	}

	if len(b.Declining) > 0 {
		sb.WriteString("\nDeclining:\n")
		for _, d := range b.Declining {
			fmt.Fprintf(&sb, "- %s (%.1f%%, %s)\n", d.Keyword, d.WoWPct, d.Source)
		}
	}

	if len(b.EngagementCandidates) > 0 {
		sb.WriteString("\nEngagement candidates:\n")
		for _, c := range b.EngagementCandidates {
			fmt.Fprintf(&sb, "%d. [%s] %s (score %.2f) %s\n", c.Rank, c.Platform, c.Title, c.EngagementScore, c.URL)
		}
	}

	return sb.String()
}

func topMovers(deltas map[string]models.DeltaRecord, n int) []string {
	type mover struct {
		line string
		abs  float64
	}
	var movers []mover
	for _, d := range deltas {
		if d.WoWPct == nil {
			continue
		}
		pct := *d.WoWPct
		abs := pct
		if abs < 0 {
			abs = -abs
		}
		movers = append(movers, mover{
			line: fmt.Sprintf("%s: %+.1f%% (interest %.0f)", d.Keyword, pct, d.Current),
			abs:  abs,
		})
	}

	sort.Slice(movers, func(i, j int) bool {
		if movers[i].abs != movers[j].abs {
			return movers[i].abs > movers[j].abs
		}
		return movers[i].line < movers[j].line
	})

	if len(movers) > n {
		movers = movers[:n]
	}
	lines := make([]string, len(movers))
	for i, m := range movers {
		lines[i] = m.line
	}
	return lines
}

func describeSignal(sig models.EmergingSignal) string {
	switch sig.Kind {
	case models.SignalRisingQuery:
		rq := sig.RisingQuery
		return fmt.Sprintf("rising search: %q under %q", rq.Term, rq.ParentKeyword)
	case models.SignalNewTopic:
		nt := sig.NewTopic
		return fmt.Sprintf("new forum topic in r/%s (score %d): %q, novel terms: %s",
			nt.Subreddit, nt.Score, nt.Title, strings.Join(nt.NovelTerms, ", "))
	case models.SignalPageviewBreakout:
		pb := sig.PageviewBreakout
		return fmt.Sprintf("wikipedia breakout: %s up %.1f%% (%.0f avg daily views)",
			pb.Article, pb.PctChange, pb.CurrentAvg)
	case models.SignalNewQuestion:
		return fmt.Sprintf("new question: %q", sig.NewQuestion.Text)
	default:
		return string(sig.Kind)
	}
}
