package analysis

import (
	"sort"
	"strings"
)

// DefaultMinTermLength drops tokens like "im" and "ok" that survive the
// stop-word list but carry no topical signal.
const DefaultMinTermLength = 3

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "is", "a", "an", "my", "i", "me", "we", "our", "you", "your",
		"it", "its", "this", "that", "and", "or", "but", "in", "on", "at",
		"to", "for", "of", "with", "from", "by", "as", "be", "was", "were",
		"been", "am", "are", "do", "does", "did", "have", "has", "had",
		"will", "would", "could", "should", "can", "may", "might", "not",
		"no", "so", "if", "then", "just", "also", "very", "really", "about",
		"all", "any", "some", "what", "when", "how", "who", "which", "there",
		"here", "more", "other", "than", "too", "only", "after", "before",
		"now", "into", "over", "up", "out", "like", "im", "ive", "dont",
		"cant", "get", "got", "going", "still", "even",
	} {
		stopwords[w] = struct{}{}
	}
}

// Tokenize extracts the significant terms of a title: lowercased,
// stripped of non-alphanumeric edges, stop-words and short tokens
// removed. The result is sorted and deduplicated.
func Tokenize(text string, minTermLength int) []string {
	if minTermLength <= 0 {
		minTermLength = DefaultMinTermLength
	}
	seen := make(map[string]struct{})
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		term := strings.TrimFunc(raw, func(r rune) bool {
			return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
		})
		if len(term) < minTermLength {
			continue
		}
		if _, stop := stopwords[term]; stop {
			continue
		}
		seen[term] = struct{}{}
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// BuildTopicFingerprint is the union of significant terms across all
// current post titles. It becomes the snapshot's topic_fingerprint and
// the prior set the next run diffs against.
func BuildTopicFingerprint(titles []string, minTermLength int) []string {
	seen := make(map[string]struct{})
	for _, title := range titles {
		for _, term := range Tokenize(title, minTermLength) {
			seen[term] = struct{}{}
		}
	}
	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// NormalizeQuestion canonicalizes question text for set comparison:
// lowercase, collapsed whitespace, trailing question mark dropped.
func NormalizeQuestion(text string) string {
	q := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	return strings.TrimSuffix(q, "?")
}
