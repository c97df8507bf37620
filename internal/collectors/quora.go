package collectors

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/formcoach/trendwatch/internal/config"
	"github.com/formcoach/trendwatch/internal/models"
)

// QuoraClient discovers questions by scraping a search engine's HTML
// results restricted to quora.com. Quora has no public API, so the
// question titles surfaced by search are the best available proxy for
// what people are asking.
type QuoraClient struct {
	client     *resty.Client
	cache      *CacheManager
	retry      *RetryConfig
	log        *logrus.Entry
	maxPerTerm int
}

func NewQuoraClient(cfg *config.Config, logger *logrus.Logger) *QuoraClient {
	cacheDir := filepath.Join(cfg.CacheDir, "quora")
	cache := NewCacheManager(cacheDir, 12*time.Hour, cfg.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://html.duckduckgo.com")
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; trendwatch/1.0)")

	return &QuoraClient{
		client:     client,
		cache:      cache,
		retry:      DefaultRetryConfig(),
		log:        logger.WithField("source", "quora"),
		maxPerTerm: 10,
	}
}

func (qc *QuoraClient) SetBaseURL(u string) {
	qc.client.SetBaseURL(u)
}

// FetchQuestions runs every configured search term and merges the
// discovered questions, deduplicated by URL.
func (qc *QuoraClient) FetchQuestions(ctx context.Context, queries []string) ([]models.Question, error) {
	seen := make(map[string]bool)
	var questions []models.Question
	var lastErr error

	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return questions, err
		}
		found, err := qc.search(ctx, query)
		if err != nil {
			qc.log.WithError(err).WithField("query", query).Warn("question search failed, skipping")
			lastErr = err
			continue
		}
		for _, q := range found {
			if seen[q.URL] {
				continue
			}
			seen[q.URL] = true
			questions = append(questions, q)
		}
	}

	if len(questions) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all question searches failed: %w", lastErr)
	}
	return questions, nil
}

func (qc *QuoraClient) search(ctx context.Context, query string) ([]models.Question, error) {
	cacheKey := map[string]interface{}{"query": query}

	var cached []models.Question
	if qc.cache.Get("quora", "search", cacheKey, &cached) {
		return cached, nil
	}

	var body []byte
	err := WithRetry(qc.retry, func() error {
		resp, err := qc.client.R().
			SetContext(ctx).
			SetQueryParam("q", "site:quora.com "+query).
			Get("/html/")
		if err != nil {
			return fmt.Errorf("search %q: %w", query, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("search %q: HTTP %d", query, resp.StatusCode())
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}

	questions, err := qc.parseResults(body)
	if err != nil {
		return nil, fmt.Errorf("parse results for %q: %w", query, err)
	}

	qc.cache.Set("quora", "search", cacheKey, questions)
	return questions, nil
}

func (qc *QuoraClient) parseResults(body []byte) ([]models.Question, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	var questions []models.Question
	doc.Find("a.result__a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		link := resolveResultLink(href)
		if !strings.Contains(link, "quora.com") {
			return true
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return true
		}
		questions = append(questions, models.Question{Text: text, URL: link})
		return len(questions) < qc.maxPerTerm
	})

	return questions, nil
}

// resolveResultLink unwraps the redirect URLs the results page uses
// (/l/?uddg=<encoded target>).
func resolveResultLink(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
