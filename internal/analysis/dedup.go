package analysis

import "github.com/formcoach/trendwatch/internal/models"

// TagPosts marks each current post NEW or RETURNING by platform-native
// id membership in the prior snapshot. Identity is deliberately not
// content-based: titles get edited and truncated between fetches and
// similarity matching would miss recurring posts. Returning posts also
// pick up their prior score and the score delta since last run.
func TagPosts(current []models.Post, prior *models.Snapshot) []models.Post {
	priorByID := make(map[string]models.Post)
	if prior != nil {
		for _, p := range prior.Posts {
			if p.ID != "" {
				priorByID[p.ID] = p
			}
		}
	}

	tagged := make([]models.Post, 0, len(current))
	for _, post := range current {
		match, ok := priorByID[post.ID]
		if post.ID == "" || !ok {
			post.Tag = models.TagNew
			post.PriorScore = nil
			post.ScoreDelta = nil
		} else {
			post.Tag = models.TagReturning
			priorScore := match.Score
			delta := post.Score - match.Score
			post.PriorScore = &priorScore
			post.ScoreDelta = &delta
		}
		tagged = append(tagged, post)
	}
	return tagged
}
