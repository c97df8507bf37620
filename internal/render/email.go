package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/formcoach/trendwatch/internal/models"
)

// EmailData is everything the weekly brief template renders.
type EmailData struct {
	Brief    *models.Brief
	Strategy string
}

var briefTemplate = template.Must(template.New("brief").Funcs(template.FuncMap{
	"signal":   describeSignalHTML,
	"nl2br":    nl2br,
	"deltaRow": deltaRow,
}).Parse(briefHTML))

// RenderBrief produces the HTML body of the weekly email.
func RenderBrief(brief *models.Brief, strategy string) (string, error) {
	var buf bytes.Buffer
	if err := briefTemplate.Execute(&buf, EmailData{Brief: brief, Strategy: strategy}); err != nil {
		return "", fmt.Errorf("render brief: %w", err)
	}
	return buf.String(), nil
}

// Subject builds the email subject line for a brief.
func Subject(brief *models.Brief) string {
	return fmt.Sprintf("Weekly Brief #%d: %s (%s)",
		brief.Summary.BriefNumber, brief.ThemeSelection.Theme, brief.Summary.RunDate)
}

func formatPct(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", *p)
}

func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>\n"))
}

func deltaRow(d models.DeltaRecord) template.HTML {
	cls := "flat"
	if d.WoWPct != nil {
		switch {
		case *d.WoWPct > 0:
			cls = "up"
		case *d.WoWPct < 0:
			cls = "down"
		}
	}
	return template.HTML(fmt.Sprintf(
		`<tr><td>%s</td><td>%.0f</td><td class="%s">%s</td></tr>`,
		template.HTMLEscapeString(d.Keyword), d.Current, cls,
		template.HTMLEscapeString(formatPct(d.WoWPct)),
	))
}

func describeSignalHTML(sig models.EmergingSignal) string {
	switch sig.Kind {
	case models.SignalRisingQuery:
		return fmt.Sprintf("Rising search %q (under %s)", sig.RisingQuery.Term, sig.RisingQuery.ParentKeyword)
	case models.SignalNewTopic:
		return fmt.Sprintf("New in r/%s: %q (score %d)", sig.NewTopic.Subreddit, sig.NewTopic.Title, sig.NewTopic.Score)
	case models.SignalPageviewBreakout:
		article := strings.ReplaceAll(sig.PageviewBreakout.Article, "_", " ")
		return fmt.Sprintf("Wikipedia breakout: %s +%.1f%%", article, sig.PageviewBreakout.PctChange)
	case models.SignalNewQuestion:
		return fmt.Sprintf("New question: %q", sig.NewQuestion.Text)
	default:
		return string(sig.Kind)
	}
}

const briefHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: -apple-system, Helvetica, Arial, sans-serif; color: #1a1a1a; max-width: 720px; margin: 0 auto; padding: 16px; }
  h1 { font-size: 20px; border-bottom: 2px solid #2563eb; padding-bottom: 8px; }
  h2 { font-size: 16px; margin-top: 24px; }
  table { border-collapse: collapse; width: 100%; }
  th, td { text-align: left; padding: 4px 8px; border-bottom: 1px solid #e5e7eb; font-size: 14px; }
  .up { color: #16a34a; }
  .down { color: #dc2626; }
  .flat { color: #6b7280; }
  .theme { background: #eff6ff; padding: 12px; border-radius: 6px; }
  .muted { color: #6b7280; font-size: 13px; }
  li { margin: 4px 0; font-size: 14px; }
</style>
</head>
<body>
<h1>Weekly Brief #{{.Brief.Summary.BriefNumber}} &middot; {{.Brief.Summary.RunDate}}</h1>
{{if .Brief.Summary.IsBaseline}}<p class="muted">First run. Movement metrics start next week.</p>{{end}}
{{if .Brief.Summary.SkippedSources}}<p class="muted">Skipped sources: {{range $i, $s := .Brief.Summary.SkippedSources}}{{if $i}}, {{end}}{{$s}}{{end}}</p>{{end}}

<div class="theme">
<strong>Theme of the week:</strong> {{.Brief.ThemeSelection.Theme}}
<span class="muted">(from {{.Brief.ThemeSelection.Source}})</span>
{{if .Brief.ThemeSelection.IsContinuation}}<br><span class="muted">Continues last week's theme.</span>{{end}}
</div>

{{if .Brief.Deltas}}
<h2>Keyword Interest</h2>
<table>
<tr><th>Keyword</th><th>Interest</th><th>WoW</th></tr>
{{range $k, $d := .Brief.Deltas}}{{deltaRow $d}}
{{end}}</table>
{{end}}

{{if .Brief.EmergingSignals}}
<h2>Emerging Signals</h2>
<ul>
{{range .Brief.EmergingSignals}}<li>{{signal .}}</li>
{{end}}</ul>
{{end}}

{{if .Brief.Declining}}
<h2>Declining</h2>
<ul>
{{range .Brief.Declining}}<li>{{.Keyword}} <span class="down">{{printf "%.1f%%" .WoWPct}}</span> <span class="muted">({{.Source}})</span></li>
{{end}}</ul>
{{end}}

{{if .Brief.EngagementCandidates}}
<h2>Engagement Candidates</h2>
<ol>
{{range .Brief.EngagementCandidates}}<li><a href="{{.URL}}">{{.Title}}</a> <span class="muted">[{{.Platform}}{{if .IsNew}}, new{{end}}] score {{printf "%.2f" .EngagementScore}}</span></li>
{{end}}</ol>
{{end}}

{{if .Strategy}}
<h2>Content Strategy</h2>
<p>{{nl2br .Strategy}}</p>
{{end}}
</body>
</html>
`
