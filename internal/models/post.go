package models

import "time"

// PostTag marks whether a post was already present in the prior snapshot.
type PostTag string

const (
	TagNew       PostTag = "NEW"
	TagReturning PostTag = "RETURNING"
)

// Post is one forum post. ID is the platform-native identifier and is
// the only thing identity decisions are made on; titles get edited and
// truncated between fetches.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	URL       string    `json:"url"`
	Subreddit string    `json:"subreddit"`
	Score     int       `json:"score"`
	Comments  int       `json:"comments"`
	CreatedAt time.Time `json:"created_at"`

	// Computed relative to the prior snapshot, never supplied as input.
	Tag        PostTag `json:"tag,omitempty"`
	PriorScore *int    `json:"prior_score,omitempty"`
	ScoreDelta *int    `json:"score_delta,omitempty"`
}

// Question is one question-site item.
type Question struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}
