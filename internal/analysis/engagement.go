package analysis

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/formcoach/trendwatch/internal/models"
)

// helpSignals are checked as substrings against title + snippet;
// multi-word phrases included.
var helpSignals = []string{
	"advice", "help", "struggling", "years", "months",
	"nothing works", "getting worse", "desperate", "recommend",
	"any tips", "what should i do", "tried everything",
	"pain", "chronic", "can't sleep", "surgery",
	"scared", "terrified", "frustrated",
}

var relevanceKeywords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"pain", "back", "neck", "posture", "sciatica", "hip", "shoulder",
		"stretch", "exercise", "spine", "disc", "herniated", "chronic",
		"stiff", "sore", "mobility", "flexibility", "therapy", "rehab",
		"ergonomic", "desk", "sitting", "standing", "piriformis",
		"fibromyalgia", "kyphosis", "lordosis", "scoliosis", "plantar",
		"carpal", "headache", "tension", "foam", "roller", "corrective",
		"yoga", "restorative", "therapeutic", "yin",
		"runner", "running", "marathon", "achilles", "itband",
		"longevity", "aging", "functional",
		"cancer", "chemotherapy", "oncology", "fatigue",
		"pelvic", "thoracic", "cervical", "lumbar",
	} {
		relevanceKeywords[w] = struct{}{}
	}
}

// EngagementConfig tunes candidate selection.
type EngagementConfig struct {
	TopN        int
	RecencyDays int // posts older than this lose most of the recency weight
	MinScore    int // below this a post needs help signals to qualify
	Now         time.Time
}

func DefaultEngagementConfig() EngagementConfig {
	return EngagementConfig{TopN: 5, RecencyDays: 7, MinScore: 5}
}

// RankEngagementCandidates scores tagged posts and questions by how
// promising a helpful reply is and returns the top N. The composite
// weights: 0.30 help-signal density, 0.25 log-normalized comment
// engagement, 0.20 novelty (NEW beats RETURNING on ties), 0.15 keyword
// relevance of the title, 0.10 recency.
func RankEngagementCandidates(posts []models.Post, questions []models.Question, cfg EngagementConfig) []models.EngagementCandidate {
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}
	if cfg.RecencyDays <= 0 {
		cfg.RecencyDays = 7
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}

	var candidates []models.EngagementCandidate

	for _, post := range posts {
		if post.Score < cfg.MinScore && len(findHelpSignals(post.Title+" "+post.Body)) == 0 {
			continue
		}
		snippet := post.Body
		if snippet == "" {
			snippet = post.Title
		}
		snippet = truncateSnippet(snippet, 200)
		candidates = append(candidates, scoreCandidate(models.EngagementCandidate{
			Platform:  "reddit",
			Title:     post.Title,
			URL:       post.URL,
			Subreddit: post.Subreddit,
			Score:     post.Score,
			Comments:  post.Comments,
			IsNew:     post.Tag != models.TagReturning,
			Snippet:   snippet,
		}, recencyScore(post.CreatedAt, now, cfg.RecencyDays)))
	}

	for _, q := range questions {
		candidates = append(candidates, scoreCandidate(models.EngagementCandidate{
			Platform: "quora",
			Title:    q.Text,
			URL:      q.URL,
			IsNew:    true,
			Snippet:  q.Text,
		}, 1.0))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].EngagementScore != candidates[j].EngagementScore {
			return candidates[i].EngagementScore > candidates[j].EngagementScore
		}
		// ties: NEW preferred over RETURNING, then raw score
		if candidates[i].IsNew != candidates[j].IsNew {
			return candidates[i].IsNew
		}
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > cfg.TopN {
		candidates = candidates[:cfg.TopN]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates
}

func scoreCandidate(c models.EngagementCandidate, recency float64) models.EngagementCandidate {
	text := c.Title + " " + c.Snippet
	c.HelpSignals = findHelpSignals(text)

	density := helpSignalDensity(text, c.HelpSignals)
	commentEng := math.Min(math.Log(float64(c.Comments)+1)/6.0, 1.0)
	newBonus := 0.3
	if c.IsNew {
		newBonus = 1.0
	}
	relevance := relevanceScore(c.Title)

	score := 0.30*density + 0.25*commentEng + 0.20*newBonus + 0.15*relevance + 0.10*recency
	c.EngagementScore = math.Round(score*10000) / 10000
	return c
}

func findHelpSignals(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, signal := range helpSignals {
		if strings.Contains(lower, signal) {
			found = append(found, signal)
		}
	}
	return found
}

func helpSignalDensity(text string, found []string) float64 {
	total := len(strings.Fields(text))
	if total == 0 {
		return 0
	}
	return math.Min(float64(len(found))/float64(total), 1.0)
}

func relevanceScore(title string) float64 {
	words := strings.Fields(strings.ToLower(title))
	if len(words) == 0 {
		return 0
	}
	matches := 0
	for _, w := range words {
		if _, ok := relevanceKeywords[strings.Trim(w, ".,!?;:")]; ok {
			matches++
		}
	}
	return math.Min(float64(matches)/float64(len(words)), 1.0)
}

func recencyScore(createdAt, now time.Time, windowDays int) float64 {
	if createdAt.IsZero() {
		return 1.0 // collectors that don't report timestamps stay neutral
	}
	if now.Sub(createdAt) <= time.Duration(windowDays)*24*time.Hour {
		return 1.0
	}
	return 0.25
}

// truncateSnippet cuts on a rune boundary so a multi-byte character in
// a post body never yields invalid UTF-8 in the prompt or email.
func truncateSnippet(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
