// Package pipeline runs the weekly batch: collect, compare against the
// prior snapshot, assemble the brief, generate strategy, render, send,
// persist. One invocation is one run; nothing here is long-lived.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/formcoach/trendwatch/internal/analysis"
	"github.com/formcoach/trendwatch/internal/brief"
	"github.com/formcoach/trendwatch/internal/config"
	"github.com/formcoach/trendwatch/internal/models"
	"github.com/formcoach/trendwatch/internal/render"
	"github.com/formcoach/trendwatch/internal/snapshot"
	"github.com/formcoach/trendwatch/internal/strategy"
)

// The collectors are consumed through small interfaces so a run can be
// tested without the network.
type (
	TrendSource interface {
		FetchAll(ctx context.Context, keywords []string, withRising bool) (map[string]models.KeywordStats, error)
	}
	ForumSource interface {
		FetchTopPosts(ctx context.Context, subreddits []string) ([]models.Post, error)
	}
	PageviewSource interface {
		FetchPageviews(ctx context.Context, articles []string) (map[string]models.PageviewStats, error)
	}
	QuestionSource interface {
		FetchQuestions(ctx context.Context, queries []string) ([]models.Question, error)
	}
	Deliverer interface {
		Send(subject, htmlBody string) error
	}
)

// Options are the per-run switches, mapped from CLI flags.
type Options struct {
	RunDate    string // YYYY-MM-DD, defaults to today
	Preview    bool   // render but do not send or persist the snapshot
	Overwrite  bool   // replace an existing snapshot for the same date
	WithRising bool   // also pull rising queries per keyword
	SkipTrends bool
	SkipReddit bool
	SkipWiki   bool
	SkipQuora  bool
}

// Result is what a completed run produced.
type Result struct {
	Brief        *models.Brief
	Strategy     string
	HTMLPath     string
	SnapshotPath string
	Delivered    bool
}

type Pipeline struct {
	cfg      *config.Config
	log      *logrus.Logger
	store    *snapshot.Store
	trends   TrendSource
	forum    ForumSource
	wiki     PageviewSource
	quora    QuestionSource
	strategy strategy.Provider
	fallback strategy.Provider
	sender   Deliverer
	now      func() time.Time
}

func New(cfg *config.Config, log *logrus.Logger, store *snapshot.Store,
	trends TrendSource, forum ForumSource, wiki PageviewSource, quora QuestionSource,
	provider strategy.Provider, sender Deliverer) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		log:      log,
		store:    store,
		trends:   trends,
		forum:    forum,
		wiki:     wiki,
		quora:    quora,
		strategy: provider,
		fallback: strategy.NewFallbackProvider(),
		sender:   sender,
		now:      time.Now,
	}
}

// Run executes one weekly cycle.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	runDate := opts.RunDate
	if runDate == "" {
		runDate = p.now().UTC().Format("2006-01-02")
	}

	prior, err := p.store.LoadPrior(runDate)
	if err != nil {
		return nil, err
	}
	isBaseline := prior == nil
	if isBaseline {
		p.log.Info("no prior snapshot, this run establishes the baseline")
	}

	collected, err := p.collect(ctx, opts)
	if err != nil {
		return nil, err
	}

	current := &models.Snapshot{
		RunDate:          runDate,
		BriefNumber:      p.store.NextBriefNumber(runDate),
		Keywords:         collected.keywords,
		Posts:            collected.posts,
		TopicFingerprint: analysis.BuildTopicFingerprint(postTitles(collected.posts), p.cfg.MinTermLength),
		Pageviews:        collected.pageviews,
		Questions:        questionTexts(collected.questions),
		SkippedSources:   collected.skipped,
	}

	// comparison stages, all pure
	deltas := analysis.ComputeDeltas(runDate, current.Keywords, prior)
	signals := analysis.DetectEmergingSignals(current, prior, analysis.DetectorConfig{
		BreakoutThresholdPct: p.cfg.BreakoutThresholdPct,
		BreakoutNoiseFloor:   p.cfg.BreakoutNoiseFloor,
		MinTermLength:        p.cfg.MinTermLength,
	})
	current.Posts = analysis.TagPosts(current.Posts, prior)

	themeCfg := analysis.DefaultThemeConfig()
	themeCfg.EstablishedTrendPct = p.cfg.EstablishedTrendPct
	themeCfg.MinKeywordInterest = p.cfg.MinKeywordInterest
	themeCfg.MinTopicScore = p.cfg.MinTopicScore
	themeCfg.DefaultTheme = p.cfg.DefaultTheme
	theme := analysis.SelectTheme(deltas, signals, priorTheme(prior), themeCfg)
	current.Theme = theme.Theme

	declining := analysis.DetectDecliningSignals(deltas, current, prior, analysis.DefaultDecliningConfig())

	engCfg := analysis.DefaultEngagementConfig()
	engCfg.TopN = p.cfg.TopEngagement
	engCfg.RecencyDays = p.cfg.RecencyDays
	engCfg.Now = p.now()

	b := brief.Assemble(brief.Inputs{
		RunDate:        runDate,
		BriefNumber:    current.BriefNumber,
		IsBaseline:     isBaseline,
		Sources:        collected.active,
		SkippedSources: collected.skipped,
		Deltas:         deltas,
		Signals:        signals,
		Posts:          current.Posts,
		Questions:      collected.questions,
		Theme:          theme,
		Declining:      declining,
		Engagement:     engCfg,
	})

	strategyText := p.generateStrategy(ctx, b)

	html, err := render.RenderBrief(b, strategyText)
	if err != nil {
		return nil, err
	}
	htmlPath, err := p.store.SaveHTML(html)
	if err != nil {
		return nil, err
	}

	result := &Result{Brief: b, Strategy: strategyText, HTMLPath: htmlPath}

	if opts.Preview {
		p.log.Info("preview run, skipping delivery and snapshot")
		return result, nil
	}

	if err := p.sender.Send(render.Subject(b), html); err != nil {
		if errors.Is(err, render.ErrSMTPNotConfigured) {
			p.log.Warn("smtp not configured, brief written to disk only")
		} else {
			p.log.WithError(err).Error("email delivery failed")
		}
	} else {
		result.Delivered = true
	}

	snapPath, err := p.store.Save(current, opts.Overwrite)
	if err != nil {
		return nil, err
	}
	result.SnapshotPath = snapPath

	return result, nil
}

// collected holds everything the sources produced for one run.
type collected struct {
	keywords  map[string]models.KeywordStats
	posts     []models.Post
	pageviews map[string]models.PageviewStats
	questions []models.Question
	active    []string
	skipped   []string
}

// collect fans the enabled sources out in parallel. A source that
// fails is recorded as skipped rather than failing the run; a brief
// with partial coverage beats no brief. Every touch of the skipped and
// active slices goes through the mutex, including flag-skips recorded
// on the calling goroutine, because collector goroutines may already
// be appending.
func (p *Pipeline) collect(ctx context.Context, opts Options) (*collected, error) {
	c := &collected{}
	var mu sync.Mutex
	markSkipped := func(name string, err error) {
		mu.Lock()
		c.skipped = append(c.skipped, name)
		mu.Unlock()
		if err != nil {
			p.log.WithError(err).WithField("source", name).Warn("source failed, continuing without it")
		}
	}
	markActive := func(name string) {
		mu.Lock()
		c.active = append(c.active, name)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	if opts.SkipTrends {
		markSkipped("trends", nil)
	} else {
		g.Go(func() error {
			keywords, err := p.trends.FetchAll(gctx, p.cfg.Keywords, opts.WithRising)
			if err != nil {
				markSkipped("trends", err)
				return nil
			}
			mu.Lock()
			c.keywords = keywords
			mu.Unlock()
			markActive("trends")
			return nil
		})
	}

	if opts.SkipReddit {
		markSkipped("reddit", nil)
	} else {
		g.Go(func() error {
			posts, err := p.forum.FetchTopPosts(gctx, p.cfg.Subreddits)
			if err != nil {
				markSkipped("reddit", err)
				return nil
			}
			mu.Lock()
			c.posts = posts
			mu.Unlock()
			markActive("reddit")
			return nil
		})
	}

	if opts.SkipWiki {
		markSkipped("wikipedia", nil)
	} else {
		g.Go(func() error {
			pageviews, err := p.wiki.FetchPageviews(gctx, p.cfg.WikiArticles)
			if err != nil {
				markSkipped("wikipedia", err)
				return nil
			}
			mu.Lock()
			c.pageviews = pageviews
			mu.Unlock()
			markActive("wikipedia")
			return nil
		})
	}

	if opts.SkipQuora {
		markSkipped("quora", nil)
	} else {
		g.Go(func() error {
			questions, err := p.quora.FetchQuestions(gctx, p.cfg.QuoraQueries)
			if err != nil {
				markSkipped("quora", err)
				return nil
			}
			mu.Lock()
			c.questions = questions
			mu.Unlock()
			markActive("quora")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Strings(c.active)
	sort.Strings(c.skipped)
	return c, nil
}

// generateStrategy prefers the configured provider and falls back to
// the template when it is unavailable or errors out.
func (p *Pipeline) generateStrategy(ctx context.Context, b *models.Brief) string {
	if p.strategy != nil {
		text, err := p.strategy.Generate(ctx, b)
		if err == nil {
			return text
		}
		if errors.Is(err, strategy.ErrNoAPIKey) {
			p.log.Info("no strategy api key, using the built-in template")
		} else {
			p.log.WithError(err).Warn("strategy generation failed, using the built-in template")
		}
	}

	text, err := p.fallback.Generate(ctx, b)
	if err != nil {
		p.log.WithError(err).Error("fallback strategy failed")
		return ""
	}
	return text
}

func postTitles(posts []models.Post) []string {
	titles := make([]string, 0, len(posts))
	for _, p := range posts {
		titles = append(titles, p.Title)
	}
	return titles
}

func questionTexts(questions []models.Question) []string {
	texts := make([]string, 0, len(questions))
	for _, q := range questions {
		texts = append(texts, q.Text)
	}
	return texts
}

func priorTheme(prior *models.Snapshot) string {
	if prior == nil {
		return ""
	}
	return prior.Theme
}
