package models

// ThemeSource identifies which branch of the selection cascade fired.
type ThemeSource string

const (
	ThemeSourceTrends    ThemeSource = "trends"
	ThemeSourceWikipedia ThemeSource = "wikipedia"
	ThemeSourceReddit    ThemeSource = "reddit"
	ThemeSourceFallback  ThemeSource = "fallback-default"
)

// ThemeSelection is the result of the weekly theme decision.
type ThemeSelection struct {
	Theme          string      `json:"theme"`
	Source         ThemeSource `json:"source"`
	PriorTheme     string      `json:"prior_theme,omitempty"`
	IsContinuation bool        `json:"is_continuation"`
}

// EngagementCandidate is a post or question worth replying to this week.
type EngagementCandidate struct {
	Rank            int      `json:"rank"`
	Platform        string   `json:"platform"`
	Title           string   `json:"title"`
	URL             string   `json:"url,omitempty"`
	Subreddit       string   `json:"subreddit,omitempty"`
	Score           int      `json:"score"`
	Comments        int      `json:"comments"`
	IsNew           bool     `json:"is_new"`
	HelpSignals     []string `json:"help_signals,omitempty"`
	Snippet         string   `json:"snippet,omitempty"`
	EngagementScore float64  `json:"engagement_score"`
}

// DecliningSignal is a topic losing steam week over week.
type DecliningSignal struct {
	Keyword string  `json:"keyword"`
	WoWPct  float64 `json:"wow_pct"`
	Source  string  `json:"source"`
}

// SnapshotSummary is the run metadata carried on the brief.
type SnapshotSummary struct {
	RunDate        string   `json:"run_date"`
	BriefNumber    int      `json:"brief_number"`
	IsBaseline     bool     `json:"is_baseline"`
	Sources        []string `json:"sources"`
	SkippedSources []string `json:"skipped_sources,omitempty"`
}

// Brief is the terminal aggregate of a run: the single artifact handed
// to the strategy prompt and the email renderer.
type Brief struct {
	Summary              SnapshotSummary        `json:"summary"`
	Deltas               map[string]DeltaRecord `json:"deltas"`
	EmergingSignals      []EmergingSignal       `json:"emerging_signals"`
	TaggedPosts          []Post                 `json:"tagged_posts"`
	ThemeSelection       ThemeSelection         `json:"theme_selection"`
	EngagementCandidates []EngagementCandidate  `json:"engagement_candidates"`
	Declining            []DecliningSignal      `json:"declining,omitempty"`
	Questions            []Question             `json:"questions,omitempty"`
}
