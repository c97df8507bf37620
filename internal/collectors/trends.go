package collectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/formcoach/trendwatch/internal/config"
	"github.com/formcoach/trendwatch/internal/models"
)

// TrendsClient pulls weekly interest and rising queries from the
// unofficial Google Trends JSON endpoints. The explore call issues
// widget tokens that authorize the data calls, mirroring what the
// Trends web UI does.
type TrendsClient struct {
	client *resty.Client
	cache  *CacheManager
	retry  *RetryConfig
	log    *logrus.Entry
}

func NewTrendsClient(cfg *config.Config, logger *logrus.Logger) *TrendsClient {
	cacheDir := filepath.Join(cfg.CacheDir, "trends")
	cache := NewCacheManager(cacheDir, 12*time.Hour, cfg.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://trends.google.com")
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; trendwatch/1.0)")

	return &TrendsClient{
		client: client,
		cache:  cache,
		retry:  DefaultRetryConfig(),
		log:    logger.WithField("source", "trends"),
	}
}

// SetBaseURL points the client at a different host.
func (tc *TrendsClient) SetBaseURL(u string) {
	tc.client.SetBaseURL(u)
}

type trendsWidget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

type trendsExploreResponse struct {
	Widgets []trendsWidget `json:"widgets"`
}

type trendsTimelinePoint struct {
	Time  string `json:"time"`
	Value []int  `json:"value"`
}

type trendsMultilineResponse struct {
	Default struct {
		TimelineData []trendsTimelinePoint `json:"timelineData"`
	} `json:"default"`
}

type trendsRankedKeyword struct {
	Query string `json:"query"`
	Value int    `json:"value"`
}

type trendsRelatedResponse struct {
	Default struct {
		RankedList []struct {
			RankedKeyword []trendsRankedKeyword `json:"rankedKeyword"`
		} `json:"rankedList"`
	} `json:"default"`
}

// FetchAll collects stats for every keyword, skipping ones that fail
// so a single flaky keyword does not lose the whole source.
func (tc *TrendsClient) FetchAll(ctx context.Context, keywords []string, withRising bool) (map[string]models.KeywordStats, error) {
	stats := make(map[string]models.KeywordStats, len(keywords))
	var lastErr error

	for _, kw := range keywords {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		s, err := tc.FetchKeyword(ctx, kw, withRising)
		if err != nil {
			tc.log.WithError(err).WithField("keyword", kw).Warn("keyword fetch failed, skipping")
			lastErr = err
			continue
		}
		stats[kw] = s
	}

	if len(stats) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all keywords failed: %w", lastErr)
	}
	return stats, nil
}

// FetchKeyword returns 12 weeks of interest plus rising queries for one
// keyword.
func (tc *TrendsClient) FetchKeyword(ctx context.Context, keyword string, withRising bool) (models.KeywordStats, error) {
	cacheKey := map[string]interface{}{"keyword": keyword, "rising": withRising}

	var cached models.KeywordStats
	if tc.cache.Get("trends", "keyword", cacheKey, &cached) {
		return cached, nil
	}

	widgets, err := tc.explore(ctx, keyword)
	if err != nil {
		return models.KeywordStats{}, err
	}

	stats := models.KeywordStats{Keyword: keyword}

	timeline, ok := findWidget(widgets, "TIMESERIES")
	if !ok {
		return models.KeywordStats{}, fmt.Errorf("no timeseries widget for %q", keyword)
	}
	series, err := tc.interestOverTime(ctx, timeline)
	if err != nil {
		return models.KeywordStats{}, err
	}
	stats.Series = series
	if n := len(series); n > 0 {
		stats.Current = series[n-1]
	}
	if n := len(series); n > 1 {
		stats.PrevWeek = series[n-2]
	}

	if withRising {
		if related, ok := findWidget(widgets, "RELATED_QUERIES"); ok {
			rising, err := tc.risingQueries(ctx, related)
			if err != nil {
				tc.log.WithError(err).WithField("keyword", keyword).Warn("rising queries unavailable")
			} else {
				stats.RisingQueries = rising
			}
		}
	}

	tc.cache.Set("trends", "keyword", cacheKey, stats)
	return stats, nil
}

func (tc *TrendsClient) explore(ctx context.Context, keyword string) ([]trendsWidget, error) {
	req := map[string]interface{}{
		"comparisonItem": []map[string]string{
			{"keyword": keyword, "geo": "", "time": "today 3-m"},
		},
		"category": 0,
		"property": "",
	}
	reqJSON, _ := json.Marshal(req)

	var explore trendsExploreResponse
	err := WithRetry(tc.retry, func() error {
		resp, err := tc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"hl":  "en-US",
				"tz":  "0",
				"req": string(reqJSON),
			}).
			Get("/trends/api/explore")
		if err != nil {
			return fmt.Errorf("explore %q: %w", keyword, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("explore %q: HTTP %d", keyword, resp.StatusCode())
		}
		return parseTrendsBody(resp.Body(), &explore)
	})
	if err != nil {
		return nil, err
	}
	return explore.Widgets, nil
}

func (tc *TrendsClient) interestOverTime(ctx context.Context, w trendsWidget) ([]float64, error) {
	var multiline trendsMultilineResponse
	err := WithRetry(tc.retry, func() error {
		resp, err := tc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"hl":    "en-US",
				"tz":    "0",
				"token": w.Token,
				"req":   string(w.Request),
			}).
			Get("/trends/api/widgetdata/multiline")
		if err != nil {
			return fmt.Errorf("interest over time: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("interest over time: HTTP %d", resp.StatusCode())
		}
		return parseTrendsBody(resp.Body(), &multiline)
	})
	if err != nil {
		return nil, err
	}

	points := multiline.Default.TimelineData
	series := make([]float64, 0, len(points))
	for _, p := range points {
		if len(p.Value) > 0 {
			series = append(series, float64(p.Value[0]))
		}
	}
	return series, nil
}

func (tc *TrendsClient) risingQueries(ctx context.Context, w trendsWidget) ([]models.RisingQuery, error) {
	var related trendsRelatedResponse
	err := WithRetry(tc.retry, func() error {
		resp, err := tc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"hl":    "en-US",
				"tz":    "0",
				"token": w.Token,
				"req":   string(w.Request),
			}).
			Get("/trends/api/widgetdata/relatedsearches")
		if err != nil {
			return fmt.Errorf("related searches: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("related searches: HTTP %d", resp.StatusCode())
		}
		return parseTrendsBody(resp.Body(), &related)
	})
	if err != nil {
		return nil, err
	}

	// rankedList[0] is top queries, rankedList[1] is rising
	lists := related.Default.RankedList
	if len(lists) < 2 {
		return nil, nil
	}
	rising := make([]models.RisingQuery, 0, len(lists[1].RankedKeyword))
	for _, rk := range lists[1].RankedKeyword {
		rising = append(rising, models.RisingQuery{Term: rk.Query, Value: rk.Value})
	}
	return rising, nil
}

func findWidget(widgets []trendsWidget, id string) (trendsWidget, bool) {
	for _, w := range widgets {
		if w.ID == id {
			return w, true
		}
	}
	return trendsWidget{}, false
}

// parseTrendsBody strips the anti-hijacking prefix (")]}'" plus a
// newline or comma) the Trends endpoints prepend to their JSON.
func parseTrendsBody(body []byte, out interface{}) error {
	idx := bytes.IndexByte(body, '{')
	if idx < 0 {
		return fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal(body[idx:], out); err != nil {
		return fmt.Errorf("parse trends response: %w", err)
	}
	return nil
}
