package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/formcoach/trendwatch/internal/models"
)

// FallbackProvider writes a deterministic strategy from the brief
// alone. It runs when no API key is configured or the model call
// fails, so the weekly email always carries an actionable plan.
type FallbackProvider struct{}

func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{}
}

func (f *FallbackProvider) Generate(_ context.Context, brief *models.Brief) (string, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Main video: %q explainer with practical relief routines.\n", brief.ThemeSelection.Theme)
	if brief.ThemeSelection.IsContinuation {
		sb.WriteString("The theme carries over from last week, frame it as a part two.\n")
	}

	shorts := shortFormIdeas(brief.EmergingSignals, 2)
	if len(shorts) > 0 {
		sb.WriteString("\nShort-form ideas:\n")
		for i, idea := range shorts {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, idea)
		}
	}

	if len(brief.EngagementCandidates) > 0 {
		sb.WriteString("\nEngagement plan:\n")
		for _, c := range brief.EngagementCandidates {
			fmt.Fprintf(&sb, "%d. Reply on %s to %q with a short, specific tip and no link.\n",
				c.Rank, c.Platform, c.Title)
		}
	}

	if len(brief.Declining) > 0 {
		names := make([]string, 0, len(brief.Declining))
		for _, d := range brief.Declining {
			names = append(names, d.Keyword)
		}
		fmt.Fprintf(&sb, "\nDeprioritize: %s.\n", strings.Join(names, ", "))
	}

	return sb.String(), nil
}

func shortFormIdeas(signals []models.EmergingSignal, n int) []string {
	var ideas []string
	for _, sig := range signals {
		if len(ideas) == n {
			break
		}
		switch sig.Kind {
		case models.SignalRisingQuery:
			ideas = append(ideas, fmt.Sprintf("60-second answer to the rising search %q.", sig.RisingQuery.Term))
		case models.SignalPageviewBreakout:
			article := strings.ReplaceAll(sig.PageviewBreakout.Article, "_", " ")
			ideas = append(ideas, fmt.Sprintf("Myth-vs-fact short on %s while attention is up.", article))
		case models.SignalNewTopic:
			ideas = append(ideas, fmt.Sprintf("React to the r/%s discussion %q.", sig.NewTopic.Subreddit, sig.NewTopic.Title))
		case models.SignalNewQuestion:
			ideas = append(ideas, fmt.Sprintf("Direct answer short: %q.", sig.NewQuestion.Text))
		}
	}
	return ideas
}
