package collectors

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/formcoach/trendwatch/internal/config"
	"github.com/formcoach/trendwatch/internal/models"
)

// WikipediaClient reads daily per-article pageviews from the Wikimedia
// REST API. Fourteen days of data gives a current-week and a prior-week
// average per article.
type WikipediaClient struct {
	client *resty.Client
	cache  *CacheManager
	retry  *RetryConfig
	log    *logrus.Entry
	now    func() time.Time
}

func NewWikipediaClient(cfg *config.Config, logger *logrus.Logger) *WikipediaClient {
	cacheDir := filepath.Join(cfg.CacheDir, "wikipedia")
	cache := NewCacheManager(cacheDir, 12*time.Hour, cfg.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://wikimedia.org/api/rest_v1")
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "trendwatch/1.0 (weekly research brief)")

	return &WikipediaClient{
		client: client,
		cache:  cache,
		retry:  DefaultRetryConfig(),
		log:    logger.WithField("source", "wikipedia"),
		now:    time.Now,
	}
}

func (wc *WikipediaClient) SetBaseURL(u string) {
	wc.client.SetBaseURL(u)
}

type pageviewsResponse struct {
	Items []struct {
		Article   string `json:"article"`
		Timestamp string `json:"timestamp"`
		Views     int    `json:"views"`
	} `json:"items"`
}

// FetchPageviews returns current and prior week averages per article,
// skipping articles that fail.
func (wc *WikipediaClient) FetchPageviews(ctx context.Context, articles []string) (map[string]models.PageviewStats, error) {
	stats := make(map[string]models.PageviewStats, len(articles))
	var lastErr error

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		s, err := wc.fetchArticle(ctx, article)
		if err != nil {
			wc.log.WithError(err).WithField("article", article).Warn("pageview fetch failed, skipping")
			lastErr = err
			continue
		}
		stats[article] = s
	}

	if len(stats) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all articles failed: %w", lastErr)
	}
	return stats, nil
}

func (wc *WikipediaClient) fetchArticle(ctx context.Context, article string) (models.PageviewStats, error) {
	// the pageviews API lags a day or two behind real time
	end := wc.now().UTC().AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -13)

	cacheKey := map[string]interface{}{
		"article": article,
		"start":   start.Format("20060102"),
		"end":     end.Format("20060102"),
	}
	var cached models.PageviewStats
	if wc.cache.Get("wikipedia", "pageviews", cacheKey, &cached) {
		return cached, nil
	}

	var pv pageviewsResponse
	err := WithRetry(wc.retry, func() error {
		resp, err := wc.client.R().
			SetContext(ctx).
			SetResult(&pv).
			Get(fmt.Sprintf(
				"/metrics/pageviews/per-article/en.wikipedia/all-access/user/%s/daily/%s/%s",
				article, start.Format("20060102"), end.Format("20060102"),
			))
		if err != nil {
			return fmt.Errorf("fetch pageviews for %s: %w", article, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("fetch pageviews for %s: HTTP %d", article, resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return models.PageviewStats{}, err
	}

	items := pv.Items
	if len(items) == 0 {
		return models.PageviewStats{}, fmt.Errorf("no pageview data for %s", article)
	}

	// split into prior and current halves by position, tolerating
	// missing days at either end
	half := len(items) / 2
	priorSum, currentSum := 0, 0
	for i, item := range items {
		if i < half {
			priorSum += item.Views
		} else {
			currentSum += item.Views
		}
	}

	stats := models.PageviewStats{Article: article}
	if half > 0 {
		stats.PriorAvg = round2(float64(priorSum) / float64(half))
	}
	if n := len(items) - half; n > 0 {
		stats.CurrentAvg = round2(float64(currentSum) / float64(n))
	}

	wc.cache.Set("wikipedia", "pageviews", cacheKey, stats)
	return stats, nil
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
