package models

// SignalKind discriminates the EmergingSignal union.
type SignalKind string

const (
	SignalRisingQuery      SignalKind = "rising_query"
	SignalNewTopic         SignalKind = "new_topic"
	SignalPageviewBreakout SignalKind = "pageview_breakout"
	SignalNewQuestion      SignalKind = "new_question"
)

// RisingQuerySignal is a trends query that was absent from the prior
// snapshot's rising set.
type RisingQuerySignal struct {
	Term          string  `json:"term"`
	ParentKeyword string  `json:"parent_keyword"`
	ParentScore   float64 `json:"parent_score"`
}

// NewTopicSignal is a forum post whose title carries at least one term
// not seen in the prior week's topic fingerprint.
type NewTopicSignal struct {
	Title      string   `json:"title"`
	Subreddit  string   `json:"subreddit"`
	URL        string   `json:"url,omitempty"`
	Score      int      `json:"score"`
	Comments   int      `json:"comments"`
	NovelTerms []string `json:"novel_terms"`
}

// PageviewBreakoutSignal is an article whose daily-average pageviews
// jumped past the configured threshold against the prior snapshot.
type PageviewBreakoutSignal struct {
	Article    string  `json:"article"`
	CurrentAvg float64 `json:"current_avg"`
	PriorAvg   float64 `json:"prior_avg"`
	PctChange  float64 `json:"pct_change"`
}

// NewQuestionSignal is a question not present in the prior snapshot.
type NewQuestionSignal struct {
	Text string `json:"text"`
}

// EmergingSignal is a tagged union over the four detector outputs.
// Exactly one variant field is non-nil, selected by Kind.
type EmergingSignal struct {
	Kind             SignalKind              `json:"kind"`
	RisingQuery      *RisingQuerySignal      `json:"rising_query,omitempty"`
	NewTopic         *NewTopicSignal         `json:"new_topic,omitempty"`
	PageviewBreakout *PageviewBreakoutSignal `json:"pageview_breakout,omitempty"`
	NewQuestion      *NewQuestionSignal      `json:"new_question,omitempty"`
}
