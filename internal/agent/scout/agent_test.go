package scout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-agent/internal/ai"
	"github.com/agora-agent/internal/config"
	"github.com/agora-agent/internal/models"
	"github.com/agora-agent/internal/storage"
	"github.com/agora-agent/internal/storage/sqlite"
	"github.com/agora-agent/pkg/logger"
)

type fakeFetcher struct {
	feeds map[string]*gofeed.Feed
	errs  map[string]error
}

func (f *fakeFetcher) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	if err, ok := f.errs[feedURL]; ok {
		return nil, err
	}
	if feed, ok := f.feeds[feedURL]; ok {
		return feed, nil
	}
	return nil, errors.New("unknown feed")
}

type fakeScorer struct {
	score *ai.ArticleScore
	err   error
	calls int
}

func (f *fakeScorer) ScoreArticle(ctx context.Context, title, summary, sourceName string) (*ai.ArticleScore, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.score, nil
}

func testConfig() config.ScoutConfig {
	return config.ScoutConfig{
		FetchTimeout: 5 * time.Second,
		ScoreLimit:   50,
	}
}

func newTestRepo(t *testing.T) storage.Repository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate())
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "disabled"})
}

func addSource(t *testing.T, repo storage.Repository, name, url string) *models.NewsSource {
	t.Helper()
	source := &models.NewsSource{Name: name, FeedURL: url, Active: true}
	require.NoError(t, repo.CreateNewsSource(context.Background(), source))
	return source
}

func feedWith(items ...*gofeed.Item) *gofeed.Feed {
	return &gofeed.Feed{Items: items}
}

func item(title, link string) *gofeed.Item {
	now := time.Now()
	return &gofeed.Item{Title: title, Link: link, Description: "summary of " + title, PublishedParsed: &now}
}

func TestFetchAllIngestsCandidates(t *testing.T) {
	repo := newTestRepo(t)
	addSource(t, repo, "Aeon", "https://example.org/aeon")

	fetcher := &fakeFetcher{feeds: map[string]*gofeed.Feed{
		"https://example.org/aeon": feedWith(
			item("On attention", "https://example.org/a"),
			item("On boredom", "https://example.org/b"),
		),
	}}
	agent := NewAgent(repo, fetcher, &fakeScorer{}, nil, testConfig(), testLogger())

	report, err := agent.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.SourcesFetched)
	assert.Equal(t, 2, report.CandidatesAdded)
	assert.Empty(t, report.Errors)

	status := models.CandidateStatusNew
	candidates, err := repo.ListCandidates(context.Background(), storage.CandidateFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestFetchAllIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	addSource(t, repo, "Aeon", "https://example.org/aeon")

	fetcher := &fakeFetcher{feeds: map[string]*gofeed.Feed{
		"https://example.org/aeon": feedWith(item("On attention", "https://example.org/a")),
	}}
	agent := NewAgent(repo, fetcher, &fakeScorer{}, nil, testConfig(), testLogger())
	ctx := context.Background()

	first, err := agent.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CandidatesAdded)

	second, err := agent.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.CandidatesAdded)
}

func TestFetchAllSourceErrorIsolated(t *testing.T) {
	repo := newTestRepo(t)
	addSource(t, repo, "Aeon", "https://example.org/aeon")
	addSource(t, repo, "Broken", "https://example.org/broken")

	fetcher := &fakeFetcher{
		feeds: map[string]*gofeed.Feed{
			"https://example.org/aeon": feedWith(item("On attention", "https://example.org/a")),
		},
		errs: map[string]error{
			"https://example.org/broken": errors.New("connection refused"),
		},
	}
	agent := NewAgent(repo, fetcher, &fakeScorer{}, nil, testConfig(), testLogger())

	report, err := agent.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.SourcesFetched)
	assert.Equal(t, 1, report.CandidatesAdded)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "Broken", report.Errors[0].SourceName)
}

func TestFetchAllSkipsInactiveSources(t *testing.T) {
	repo := newTestRepo(t)
	source := addSource(t, repo, "Aeon", "https://example.org/aeon")
	source.Active = false
	require.NoError(t, repo.UpdateNewsSource(context.Background(), source))

	agent := NewAgent(repo, &fakeFetcher{}, &fakeScorer{}, nil, testConfig(), testLogger())

	report, err := agent.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.SourcesFetched)
	assert.Empty(t, report.Errors)
}

func TestFetchAllSkipsStaleItems(t *testing.T) {
	repo := newTestRepo(t)
	addSource(t, repo, "Aeon", "https://example.org/aeon")

	old := time.Now().Add(-30 * 24 * time.Hour)
	stale := &gofeed.Item{Title: "Old news", Link: "https://example.org/old", PublishedParsed: &old}

	fetcher := &fakeFetcher{feeds: map[string]*gofeed.Feed{
		"https://example.org/aeon": feedWith(stale, item("Fresh", "https://example.org/fresh")),
	}}
	cfg := testConfig()
	cfg.MaxItemAge = 7 * 24 * time.Hour
	agent := NewAgent(repo, fetcher, &fakeScorer{}, nil, cfg, testLogger())

	report, err := agent.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.CandidatesAdded)
}

func TestScoreUnscored(t *testing.T) {
	repo := newTestRepo(t)
	source := addSource(t, repo, "Aeon", "https://example.org/aeon")
	ctx := context.Background()

	candidate := &models.ArticleCandidate{
		SourceID: source.ID,
		Title:    "On attention",
		Link:     "https://example.org/a",
		Status:   models.CandidateStatusNew,
	}
	require.NoError(t, repo.CreateCandidate(ctx, candidate))

	scorer := &fakeScorer{score: &ai.ArticleScore{Score: 85, Category: "ethics", Rationale: "relevant"}}
	agent := NewAgent(repo, &fakeFetcher{}, scorer, nil, testConfig(), testLogger())

	report, err := agent.ScoreUnscored(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scored)
	assert.Equal(t, 0, report.Failed)

	updated, err := repo.GetCandidateByID(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CandidateStatusScored, updated.Status)
	assert.Equal(t, 85.0, updated.Score)
	assert.Equal(t, "ethics", updated.Category)
	assert.True(t, updated.IsHighScore())
}

func TestScoreUnscoredIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	source := addSource(t, repo, "Aeon", "https://example.org/aeon")
	ctx := context.Background()

	candidate := &models.ArticleCandidate{
		SourceID: source.ID,
		Title:    "On attention",
		Link:     "https://example.org/a",
		Status:   models.CandidateStatusNew,
	}
	require.NoError(t, repo.CreateCandidate(ctx, candidate))

	scorer := &fakeScorer{score: &ai.ArticleScore{Score: 40, Category: "culture"}}
	agent := NewAgent(repo, &fakeFetcher{}, scorer, nil, testConfig(), testLogger())

	_, err := agent.ScoreUnscored(ctx)
	require.NoError(t, err)

	// Second pass finds nothing in status new
	report, err := agent.ScoreUnscored(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Scored)
	assert.Equal(t, 1, scorer.calls)
}

func TestScoreUnscoredFailureLeavesCandidate(t *testing.T) {
	repo := newTestRepo(t)
	source := addSource(t, repo, "Aeon", "https://example.org/aeon")
	ctx := context.Background()

	candidate := &models.ArticleCandidate{
		SourceID: source.ID,
		Title:    "On attention",
		Link:     "https://example.org/a",
		Status:   models.CandidateStatusNew,
	}
	require.NoError(t, repo.CreateCandidate(ctx, candidate))

	scorer := &fakeScorer{err: ai.ErrParse}
	agent := NewAgent(repo, &fakeFetcher{}, scorer, nil, testConfig(), testLogger())

	report, err := agent.ScoreUnscored(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Scored)
	assert.Equal(t, 1, report.Failed)

	// Left at new so the next pass retries it
	updated, err := repo.GetCandidateByID(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CandidateStatusNew, updated.Status)
}

func TestSeedSourcesIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	cfg := testConfig()
	cfg.Seed = []config.SeedSource{
		{Name: "Aeon", URL: "https://example.org/aeon", Category: "culture"},
		{Name: "Quanta", URL: "https://example.org/quanta", Category: "science"},
	}
	agent := NewAgent(repo, &fakeFetcher{}, &fakeScorer{}, nil, cfg, testLogger())
	ctx := context.Background()

	added, err := agent.SeedSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = agent.SeedSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	sources, err := repo.ListNewsSources(ctx, false)
	require.NoError(t, err)
	assert.Len(t, sources, 2)
}
