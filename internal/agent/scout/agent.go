package scout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/agora-agent/internal/ai"
	"github.com/agora-agent/internal/config"
	"github.com/agora-agent/internal/models"
	"github.com/agora-agent/internal/review"
	"github.com/agora-agent/internal/storage"
	"github.com/agora-agent/pkg/logger"
	"github.com/agora-agent/pkg/ratelimit"
)

// FeedFetcher retrieves and parses one RSS feed
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error)
}

// Scorer produces a relevance score for one article
type Scorer interface {
	ScoreArticle(ctx context.Context, title, summary, sourceName string) (*ai.ArticleScore, error)
}

// gofeedFetcher is the production FeedFetcher backed by gofeed
type gofeedFetcher struct {
	parser *gofeed.Parser
}

func (f *gofeedFetcher) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	return f.parser.ParseURLWithContext(feedURL, ctx)
}

// NewFeedFetcher creates the default gofeed-backed fetcher
func NewFeedFetcher() FeedFetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = "agora-agent/1.0"
	return &gofeedFetcher{parser: parser}
}

// Agent handles news ingestion and candidate scoring
type Agent struct {
	repo    storage.Repository
	fetcher FeedFetcher
	scorer  Scorer
	limiter *ratelimit.MultiLimiter
	cfg     config.ScoutConfig
	log     *logger.Logger
}

// NewAgent creates a new scout agent
func NewAgent(
	repo storage.Repository,
	fetcher FeedFetcher,
	scorer Scorer,
	limiter *ratelimit.MultiLimiter,
	cfg config.ScoutConfig,
	log *logger.Logger,
) *Agent {
	return &Agent{
		repo:    repo,
		fetcher: fetcher,
		scorer:  scorer,
		limiter: limiter,
		cfg:     cfg,
		log:     log.WithComponent("scout"),
	}
}

// SourceError records one source that failed during an ingestion run
type SourceError struct {
	SourceName string
	Err        error
}

// IngestionReport summarizes one ingestion run. Errors holds per-source
// failures; a failing source never aborts the run.
type IngestionReport struct {
	SourcesFetched  int
	CandidatesAdded int
	Errors          []SourceError
}

// ScoringReport summarizes one scoring pass
type ScoringReport struct {
	Scored int
	Failed int
}

// fetchResult carries one source's parsed items back to the inserting goroutine
type fetchResult struct {
	source *models.NewsSource
	feed   *gofeed.Feed
	err    error
}

// FetchAll ingests every active source. Fetches run concurrently; inserts
// run sequentially afterward so candidate creation stays on one connection.
func (a *Agent) FetchAll(ctx context.Context) (*IngestionReport, error) {
	sources, err := a.repo.ListNewsSources(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list news sources: %w", err)
	}

	a.log.Info().Int("sources", len(sources)).Msg("Starting ingestion run")

	results := make([]fetchResult, len(sources))
	var wg sync.WaitGroup

	for i, source := range sources {
		wg.Add(1)
		go func(i int, source *models.NewsSource) {
			defer wg.Done()
			feed, err := a.fetchOne(ctx, source)
			results[i] = fetchResult{source: source, feed: feed, err: err}
		}(i, source)
	}
	wg.Wait()

	report := &IngestionReport{}
	for _, res := range results {
		if res.err != nil {
			a.log.Warn().
				Err(res.err).
				Str("source", res.source.Name).
				Msg("Source fetch failed")
			report.Errors = append(report.Errors, SourceError{SourceName: res.source.Name, Err: res.err})
			continue
		}
		report.SourcesFetched++

		added, err := a.insertCandidates(ctx, res.source, res.feed)
		if err != nil {
			report.Errors = append(report.Errors, SourceError{SourceName: res.source.Name, Err: err})
			continue
		}
		report.CandidatesAdded += added
	}

	a.log.Info().
		Int("sources_fetched", report.SourcesFetched).
		Int("candidates_added", report.CandidatesAdded).
		Int("errors", len(report.Errors)).
		Msg("Ingestion run complete")

	return report, nil
}

func (a *Agent) fetchOne(ctx context.Context, source *models.NewsSource) (*gofeed.Feed, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, ratelimit.LimiterFeeds); err != nil {
			return nil, err
		}
	}

	fetchCtx := ctx
	if a.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, a.cfg.FetchTimeout)
		defer cancel()
	}

	feed, err := a.fetcher.Fetch(fetchCtx, source.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	return feed, nil
}

// insertCandidates writes new candidates from one parsed feed, skipping
// links already seen for this source and items past the age cutoff.
func (a *Agent) insertCandidates(ctx context.Context, source *models.NewsSource, feed *gofeed.Feed) (int, error) {
	cutoff := time.Time{}
	if a.cfg.MaxItemAge > 0 {
		cutoff = time.Now().Add(-a.cfg.MaxItemAge)
	}

	added := 0
	for _, item := range feed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		if item.PublishedParsed != nil && !cutoff.IsZero() && item.PublishedParsed.Before(cutoff) {
			continue
		}

		existing, err := a.repo.GetCandidateByLink(ctx, source.ID, item.Link)
		if err != nil {
			return added, fmt.Errorf("dedup lookup failed: %w", err)
		}
		if existing != nil {
			continue
		}

		candidate := &models.ArticleCandidate{
			SourceID: source.ID,
			Title:    item.Title,
			Link:     item.Link,
			Summary:  item.Description,
			Status:   models.CandidateStatusNew,
		}
		if item.PublishedParsed != nil {
			candidate.PublishedAt = *item.PublishedParsed
		}

		if err := a.repo.CreateCandidate(ctx, candidate); err != nil {
			return added, fmt.Errorf("failed to create candidate: %w", err)
		}
		added++
	}

	return added, nil
}

// ScoreUnscored scores candidates in status new, oldest first, up to the
// configured limit per run. A failed scoring call leaves the candidate at
// new, so the next run picks it up again.
func (a *Agent) ScoreUnscored(ctx context.Context) (*ScoringReport, error) {
	status := models.CandidateStatusNew
	candidates, err := a.repo.ListCandidates(ctx, storage.CandidateFilter{
		Status:  &status,
		Limit:   a.cfg.ScoreLimit,
		OrderBy: "fetched_at",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list unscored candidates: %w", err)
	}

	a.log.Info().Int("candidates", len(candidates)).Msg("Starting scoring pass")

	report := &ScoringReport{}
	for _, candidate := range candidates {
		if err := a.scoreOne(ctx, candidate); err != nil {
			a.log.Warn().
				Err(err).
				Uint("candidate_id", candidate.ID).
				Msg("Scoring failed, candidate left unscored")
			report.Failed++
			continue
		}
		report.Scored++
	}

	a.log.Info().
		Int("scored", report.Scored).
		Int("failed", report.Failed).
		Msg("Scoring pass complete")

	return report, nil
}

func (a *Agent) scoreOne(ctx context.Context, candidate *models.ArticleCandidate) error {
	sourceName := ""
	if candidate.Source != nil {
		sourceName = candidate.Source.Name
	}

	scoreCtx := ctx
	if a.cfg.ScoreTimeout > 0 {
		var cancel context.CancelFunc
		scoreCtx, cancel = context.WithTimeout(ctx, a.cfg.ScoreTimeout)
		defer cancel()
	}

	score, err := a.scorer.ScoreArticle(scoreCtx, candidate.Title, candidate.Summary, sourceName)
	if err != nil {
		return err
	}

	candidate.Score = score.Score
	candidate.Category = score.Category
	if err := review.TransitionCandidate(candidate, models.CandidateStatusScored); err != nil {
		return err
	}
	if err := a.repo.UpdateCandidate(ctx, candidate); err != nil {
		return fmt.Errorf("failed to persist score: %w", err)
	}

	if candidate.IsHighScore() {
		a.log.WithCandidateID(candidate.ID).Info().
			Float64("score", candidate.Score).
			Str("title", candidate.Title).
			Msg("High-scoring candidate")
	}

	return nil
}

// SeedSources inserts configured seed sources that are not yet present.
// Existing sources are left untouched, so this is safe to run on every start.
func (a *Agent) SeedSources(ctx context.Context) (int, error) {
	added := 0
	for _, seed := range a.cfg.Seed {
		if seed.URL == "" {
			continue
		}
		existing, err := a.repo.GetNewsSourceByURL(ctx, seed.URL)
		if err != nil {
			return added, fmt.Errorf("seed lookup failed: %w", err)
		}
		if existing != nil {
			continue
		}
		source := &models.NewsSource{
			Name:     seed.Name,
			FeedURL:  seed.URL,
			Category: seed.Category,
			Active:   true,
		}
		if err := a.repo.CreateNewsSource(ctx, source); err != nil {
			return added, fmt.Errorf("failed to seed source %q: %w", seed.Name, err)
		}
		added++
	}
	return added, nil
}
