package models

// RisingQuery is one related query reported by the trends source,
// in the rank order the source supplied it.
type RisingQuery struct {
	Term  string `json:"term"`
	Value int    `json:"value"`
}

// KeywordStats holds one tracked keyword's interest data for a run.
type KeywordStats struct {
	Keyword       string        `json:"keyword"`
	Current       float64       `json:"current"`
	PrevWeek      float64       `json:"prev_week"`
	Series        []float64     `json:"series,omitempty"`
	RisingQueries []RisingQuery `json:"rising_queries,omitempty"`
}

// PageviewStats holds daily-average pageviews for one article,
// split into the most recent seven days and the seven before those.
type PageviewStats struct {
	Article    string  `json:"article"`
	CurrentAvg float64 `json:"current_avg"`
	PriorAvg   float64 `json:"prior_avg"`
}

// Snapshot is the immutable record of one weekly run. It is written
// once at the end of a run and read exactly once, as "prior", by the
// following run. Unknown fields on read are ignored so the layout can
// grow without breaking old snapshots.
type Snapshot struct {
	RunDate          string                   `json:"run_date"`
	BriefNumber      int                      `json:"brief_number"`
	Keywords         map[string]KeywordStats  `json:"keywords,omitempty"`
	Posts            []Post                   `json:"posts,omitempty"`
	TopicFingerprint []string                 `json:"topic_fingerprint,omitempty"`
	Pageviews        map[string]PageviewStats `json:"pageviews,omitempty"`
	Questions        []string                 `json:"questions,omitempty"`
	Theme            string                   `json:"theme,omitempty"`
	SkippedSources   []string                 `json:"skipped_sources,omitempty"`
}

// RisingQuerySet flattens every keyword's rising queries into one term set.
func (s *Snapshot) RisingQuerySet() map[string]struct{} {
	set := make(map[string]struct{})
	if s == nil {
		return set
	}
	for _, kw := range s.Keywords {
		for _, rq := range kw.RisingQueries {
			if rq.Term != "" {
				set[rq.Term] = struct{}{}
			}
		}
	}
	return set
}

// QuestionSet returns the snapshot's questions as a membership set.
func (s *Snapshot) QuestionSet() map[string]struct{} {
	set := make(map[string]struct{})
	if s == nil {
		return set
	}
	for _, q := range s.Questions {
		set[q] = struct{}{}
	}
	return set
}

// PostIDSet returns the platform-native ids of the snapshot's posts.
func (s *Snapshot) PostIDSet() map[string]struct{} {
	set := make(map[string]struct{})
	if s == nil {
		return set
	}
	for _, p := range s.Posts {
		if p.ID != "" {
			set[p.ID] = struct{}{}
		}
	}
	return set
}

// FingerprintSet returns the snapshot's topic fingerprint as a set.
func (s *Snapshot) FingerprintSet() map[string]struct{} {
	set := make(map[string]struct{})
	if s == nil {
		return set
	}
	for _, term := range s.TopicFingerprint {
		set[term] = struct{}{}
	}
	return set
}
