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

// RedditClient reads the public JSON listings, no OAuth involved. The
// weekly top listing per subreddit is enough signal for a batch run.
type RedditClient struct {
	client *resty.Client
	cache  *CacheManager
	retry  *RetryConfig
	log    *logrus.Entry
	limit  int
}

func NewRedditClient(cfg *config.Config, logger *logrus.Logger) *RedditClient {
	cacheDir := filepath.Join(cfg.CacheDir, "reddit")
	cache := NewCacheManager(cacheDir, 12*time.Hour, cfg.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://www.reddit.com")
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "trendwatch/1.0 (weekly research brief)")

	return &RedditClient{
		client: client,
		cache:  cache,
		retry:  DefaultRetryConfig(),
		log:    logger.WithField("source", "reddit"),
		limit:  25,
	}
}

func (rc *RedditClient) SetBaseURL(u string) {
	rc.client.SetBaseURL(u)
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Name        string  `json:"name"`
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Permalink   string  `json:"permalink"`
				Subreddit   string  `json:"subreddit"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
				Stickied    bool    `json:"stickied"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchTopPosts returns the week's top posts across all subreddits,
// skipping subreddits that fail.
func (rc *RedditClient) FetchTopPosts(ctx context.Context, subreddits []string) ([]models.Post, error) {
	var posts []models.Post
	var lastErr error

	for _, sub := range subreddits {
		if err := ctx.Err(); err != nil {
			return posts, err
		}
		subPosts, err := rc.fetchSubreddit(ctx, sub)
		if err != nil {
			rc.log.WithError(err).WithField("subreddit", sub).Warn("subreddit fetch failed, skipping")
			lastErr = err
			continue
		}
		posts = append(posts, subPosts...)
	}

	if len(posts) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all subreddits failed: %w", lastErr)
	}
	return posts, nil
}

func (rc *RedditClient) fetchSubreddit(ctx context.Context, subreddit string) ([]models.Post, error) {
	cacheKey := map[string]interface{}{"subreddit": subreddit, "t": "week", "limit": rc.limit}

	var cached []models.Post
	if rc.cache.Get("reddit", "top_week", cacheKey, &cached) {
		return cached, nil
	}

	var listing redditListing
	err := WithRetry(rc.retry, func() error {
		resp, err := rc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"t":        "week",
				"limit":    fmt.Sprintf("%d", rc.limit),
				"raw_json": "1",
			}).
			SetResult(&listing).
			Get(fmt.Sprintf("/r/%s/top.json", subreddit))
		if err != nil {
			return fmt.Errorf("fetch r/%s: %w", subreddit, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("fetch r/%s: HTTP %d", subreddit, resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		if d.Stickied {
			continue
		}
		posts = append(posts, models.Post{
			ID:        d.Name,
			Title:     d.Title,
			Body:      d.Selftext,
			URL:       "https://www.reddit.com" + d.Permalink,
			Subreddit: d.Subreddit,
			Score:     d.Score,
			Comments:  d.NumComments,
			CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		})
	}

	rc.cache.Set("reddit", "top_week", cacheKey, posts)
	return posts, nil
}
