package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcoach/trendwatch/internal/models"
	"github.com/formcoach/trendwatch/internal/pipeline"
)

func TestRenderRunSummary(t *testing.T) {
	res := &pipeline.Result{
		Brief: &models.Brief{
			Summary:        models.SnapshotSummary{RunDate: "2026-08-23", BriefNumber: 7, SkippedSources: []string{"quora"}},
			ThemeSelection: models.ThemeSelection{Theme: "sciatica", Source: models.ThemeSourceTrends},
			EmergingSignals: []models.EmergingSignal{
				{Kind: models.SignalRisingQuery, RisingQuery: &models.RisingQuerySignal{Term: "x"}},
				{Kind: models.SignalRisingQuery, RisingQuery: &models.RisingQuerySignal{Term: "y"}},
				{Kind: models.SignalPageviewBreakout, PageviewBreakout: &models.PageviewBreakoutSignal{Article: "Sciatica"}},
			},
			Declining: []models.DecliningSignal{{Keyword: "foam rolling", WoWPct: -18}},
		},
		HTMLPath:     "/tmp/latest_brief.html",
		SnapshotPath: "/tmp/snapshot_2026-08-23.json",
		Delivered:    true,
	}

	out := RenderRunSummary(res, false)
	assert.Contains(t, out, "Weekly Brief #7")
	assert.Contains(t, out, "sciatica")
	assert.Contains(t, out, "2 rising_query, 1 pageview_breakout")
	assert.Contains(t, out, "foam rolling")
	assert.Contains(t, out, "quora")
	assert.Contains(t, out, "brief delivered")
}

func TestRenderRunSummaryPreview(t *testing.T) {
	res := &pipeline.Result{
		Brief: &models.Brief{
			Summary:        models.SnapshotSummary{RunDate: "2026-08-23", BriefNumber: 1, IsBaseline: true},
			ThemeSelection: models.ThemeSelection{Theme: "General Pain Management", Source: models.ThemeSourceFallback},
		},
		HTMLPath: "/tmp/latest_brief.html",
	}

	out := RenderRunSummary(res, true)
	assert.Contains(t, out, "preview run")
	assert.NotContains(t, out, "snapshot_")
}

func TestRenderSnapshotList(t *testing.T) {
	out := RenderSnapshotList([]string{"2026-08-23", "2026-08-16"})
	assert.Contains(t, out, "2 snapshots")
	idx23 := strings.Index(out, "2026-08-23")
	idx16 := strings.Index(out, "2026-08-16")
	assert.Less(t, idx23, idx16)

	empty := RenderSnapshotList(nil)
	assert.Contains(t, empty, "no snapshots yet")
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"--config-dir", t.TempDir(), "version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "trendwatch "+version)
}

func TestSnapshotsCommandEmptyStore(t *testing.T) {
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)

	dir := t.TempDir()
	t.Setenv("TRENDWATCH_DATA_DIR", dir)
	root.SetArgs([]string{"--config-dir", dir, "snapshots"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "no snapshots yet")
}
