package render

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcoach/trendwatch/internal/config"
	"github.com/formcoach/trendwatch/internal/models"
)

func sampleBrief() *models.Brief {
	wow := 35.0
	return &models.Brief{
		Summary: models.SnapshotSummary{RunDate: "2026-08-23", BriefNumber: 7},
		Deltas: map[string]models.DeltaRecord{
			"sciatica":   {Keyword: "sciatica", Current: 62, WoWPct: &wow},
			"lower back": {Keyword: "lower back", Current: 48},
		},
		EmergingSignals: []models.EmergingSignal{
			{
				Kind: models.SignalPageviewBreakout,
				PageviewBreakout: &models.PageviewBreakoutSignal{
					Article: "Plantar_fasciitis", CurrentAvg: 1400, PriorAvg: 800, PctChange: 75,
				},
			},
		},
		ThemeSelection: models.ThemeSelection{Theme: "sciatica", Source: models.ThemeSourceTrends},
		EngagementCandidates: []models.EngagementCandidate{
			{Rank: 1, Platform: "reddit", Title: "Help <script>", URL: "https://reddit.com/x", EngagementScore: 0.81, IsNew: true},
		},
		Declining: []models.DecliningSignal{{Keyword: "foam rolling", WoWPct: -18, Source: "trends"}},
	}
}

func TestRenderBrief(t *testing.T) {
	html, err := RenderBrief(sampleBrief(), "Main video: flare-up protocol.\nShorts: two.")
	require.NoError(t, err)

	assert.Contains(t, html, "Weekly Brief #7")
	assert.Contains(t, html, "2026-08-23")
	assert.Contains(t, html, "Theme of the week:")
	assert.Contains(t, html, "sciatica")
	assert.Contains(t, html, "+35.0%")
	assert.Contains(t, html, "Plantar fasciitis +75.0%")
	assert.Contains(t, html, "foam rolling")
	// strategy newlines become breaks
	assert.Contains(t, html, "flare-up protocol.<br>")
	// untrusted titles are escaped
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderBriefBaseline(t *testing.T) {
	b := sampleBrief()
	b.Summary.IsBaseline = true
	b.Deltas = nil
	b.EmergingSignals = nil
	b.Declining = nil

	html, err := RenderBrief(b, "")
	require.NoError(t, err)
	assert.Contains(t, html, "First run")
	assert.NotContains(t, html, "Emerging Signals")
	assert.NotContains(t, html, "Content Strategy")
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Weekly Brief #7: sciatica (2026-08-23)", Subject(sampleBrief()))
}

func TestSenderBuildsMessage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPPort = "587"
	cfg.EmailFrom = "brief@example.com"
	cfg.EmailTo = "team@example.com"

	s := NewSender(cfg)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, s.Send("Weekly Brief #7", "<html>body</html>"))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "brief@example.com", gotFrom)
	assert.Equal(t, []string{"team@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: Weekly Brief #7\r\n")
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.True(t, strings.HasSuffix(msg, "<html>body</html>"))
}

func TestSenderSanitizesHeaders(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SMTPHost = "smtp.example.com"
	cfg.EmailFrom = "brief@example.com"
	cfg.EmailTo = "team@example.com"

	s := NewSender(cfg)
	var gotMsg []byte
	s.sendMail = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = msg
		return nil
	}

	require.NoError(t, s.Send("hi\r\nBcc: evil@example.com", "body"))
	assert.Contains(t, string(gotMsg), "Subject: hiBcc: evil@example.com\r\n")
}

func TestSenderUnconfigured(t *testing.T) {
	s := NewSender(config.DefaultConfig())
	err := s.Send("subject", "body")
	assert.ErrorIs(t, err, ErrSMTPNotConfigured)
}
