package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/formcoach/trendwatch/internal/models"
	"github.com/formcoach/trendwatch/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2563EB"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2563EB")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	upStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	downStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF")).
			Italic(true)
)

// RenderRunSummary prints the post-run report shown in the terminal.
func RenderRunSummary(res *pipeline.Result, preview bool) string {
	b := res.Brief
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Weekly Brief #%d · %s", b.Summary.BriefNumber, b.Summary.RunDate)))
	sb.WriteString("\n")

	var lines []string
	lines = append(lines, labelStyle.Render("theme      ")+b.ThemeSelection.Theme+
		mutedStyle.Render(fmt.Sprintf("  (%s)", b.ThemeSelection.Source)))
	lines = append(lines, labelStyle.Render("signals    ")+summarizeSignals(b.EmergingSignals))
	lines = append(lines, labelStyle.Render("posts      ")+fmt.Sprintf("%d tagged", len(b.TaggedPosts)))
	lines = append(lines, labelStyle.Render("engagement ")+fmt.Sprintf("%d candidates", len(b.EngagementCandidates)))

	if len(b.Declining) > 0 {
		names := make([]string, 0, len(b.Declining))
		for _, d := range b.Declining {
			names = append(names, d.Keyword)
		}
		lines = append(lines, labelStyle.Render("declining  ")+downStyle.Render(strings.Join(names, ", ")))
	}
	if len(b.Summary.SkippedSources) > 0 {
		lines = append(lines, labelStyle.Render("skipped    ")+mutedStyle.Render(strings.Join(b.Summary.SkippedSources, ", ")))
	}
	lines = append(lines, labelStyle.Render("html       ")+res.HTMLPath)

	switch {
	case preview:
		lines = append(lines, mutedStyle.Render("preview run, nothing sent or saved"))
	case res.Delivered:
		lines = append(lines, upStyle.Render("brief delivered")+labelStyle.Render("  snapshot ")+res.SnapshotPath)
	default:
		lines = append(lines, downStyle.Render("delivery skipped")+labelStyle.Render("  snapshot ")+res.SnapshotPath)
	}

	sb.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	return sb.String()
}

// RenderSnapshotList formats stored snapshot dates, newest first.
func RenderSnapshotList(dates []string) string {
	if len(dates) == 0 {
		return mutedStyle.Render("no snapshots yet, run `trendwatch run` to create the baseline")
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%d snapshots", len(dates))))
	sb.WriteString("\n")
	for i, d := range dates {
		marker := "  "
		if i == 0 {
			marker = upStyle.Render("→ ")
		}
		sb.WriteString(marker + d + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func summarizeSignals(signals []models.EmergingSignal) string {
	if len(signals) == 0 {
		return mutedStyle.Render("none")
	}
	counts := map[models.SignalKind]int{}
	for _, s := range signals {
		counts[s.Kind]++
	}
	var parts []string
	for _, kind := range []models.SignalKind{
		models.SignalRisingQuery, models.SignalNewTopic,
		models.SignalPageviewBreakout, models.SignalNewQuestion,
	} {
		if n := counts[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, kind))
		}
	}
	return strings.Join(parts, ", ")
}
