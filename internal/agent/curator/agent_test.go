package curator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-agent/internal/config"
	"github.com/agora-agent/internal/content"
	"github.com/agora-agent/internal/generation"
	"github.com/agora-agent/internal/models"
	"github.com/agora-agent/internal/storage"
	"github.com/agora-agent/internal/storage/sqlite"
	"github.com/agora-agent/pkg/logger"
)

type fakeCompleter struct {
	responses []string // consumed in order; last one repeats
	err       error
	calls     int
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

func testConfig() config.GenerationConfig {
	return config.GenerationConfig{
		ShortWordCap:   5,
		ShortMaxTokens: 300,
		RetryAttempts:  3,
	}
}

func newTestAgent(t *testing.T, client *fakeCompleter) (*Agent, storage.Repository) {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate())
	t.Cleanup(func() { repo.Close() })

	log := logger.New(logger.Config{Level: "disabled"})
	orch := generation.NewOrchestrator(client, repo, 300, log)
	return NewAgent(orch, repo, testConfig(), log), repo
}

func seedPersona(t *testing.T, repo storage.Repository, name string) *models.Persona {
	t.Helper()
	ctx := context.Background()

	persona := &models.Persona{Name: name}
	require.NoError(t, repo.CreatePersona(ctx, persona))

	prompt := &models.SystemPrompt{PersonaID: persona.ID, Content: "You are " + name + "."}
	require.NoError(t, repo.CreatePrompt(ctx, prompt))
	require.NoError(t, repo.ActivatePrompt(ctx, persona.ID, prompt.ID))
	return persona
}

func listEntries(t *testing.T, repo storage.Repository) []*models.GenerationLog {
	t.Helper()
	entries, err := repo.ListLogEntries(context.Background(), storage.LogFilter{Limit: 100})
	require.NoError(t, err)
	return entries
}

const validReaction = `{"content": "Short words here now.", "thesis": "A claim.", "stance": "observes", "tag": "ethics"}`

const longReaction = `{"content": "This content runs well past the configured five word cap for short posts.", "thesis": "A claim.", "stance": "observes", "tag": "ethics"}`

func TestGenerateContentLogsSuccess(t *testing.T) {
	agent, repo := newTestAgent(t, &fakeCompleter{responses: []string{validReaction}})
	persona := seedPersona(t, repo, "Marcus")

	result, err := agent.GenerateContent(context.Background(), GenerateInput{
		PersonaID:      persona.ID,
		ContentType:    content.KeyNewsReaction,
		SourceMaterial: "headline",
	})
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, 1, result.Attempts)

	entry := result.Entry
	require.NotNil(t, entry)
	assert.Equal(t, models.LogStatusGenerated, entry.Status)
	assert.Equal(t, "Short words here now.", entry.Payload["content"])
	assert.NotNil(t, entry.SystemPromptID)
	assert.Equal(t, validReaction, entry.RawOutput)
}

func TestGenerateContentLogsFailure(t *testing.T) {
	agent, repo := newTestAgent(t, &fakeCompleter{responses: []string{"not json at all"}})
	persona := seedPersona(t, repo, "Marcus")

	result, err := agent.GenerateContent(context.Background(), GenerateInput{
		PersonaID:      persona.ID,
		ContentType:    content.KeyNewsReaction,
		SourceMaterial: "headline",
	})
	require.NoError(t, err)

	entry := result.Entry
	require.NotNil(t, entry)
	assert.Equal(t, models.LogStatusRejected, entry.Status)
	assert.NotEmpty(t, entry.ErrorMessage)
	assert.Equal(t, "not json at all", entry.RawOutput)

	// Exactly one audit row, failure included
	assert.Len(t, listEntries(t, repo), 1)
}

func TestGenerateContentFailureNotRetried(t *testing.T) {
	client := &fakeCompleter{responses: []string{"not json"}}
	agent, repo := newTestAgent(t, client)
	persona := seedPersona(t, repo, "Marcus")

	result, err := agent.GenerateContent(context.Background(), GenerateInput{
		PersonaID:      persona.ID,
		ContentType:    content.KeyNewsReaction,
		SourceMaterial: "headline",
		LengthHint:     generation.LengthShort,
	})
	require.NoError(t, err)

	// The word-cap retry loop covers over-cap results only, not failures
	assert.Equal(t, 1, client.calls)
	assert.False(t, result.Skipped)
	assert.Equal(t, models.LogStatusRejected, result.Entry.Status)
}

func TestShortRetryCeiling(t *testing.T) {
	client := &fakeCompleter{responses: []string{longReaction}}
	agent, repo := newTestAgent(t, client)
	persona := seedPersona(t, repo, "Marcus")

	result, err := agent.GenerateContent(context.Background(), GenerateInput{
		PersonaID:      persona.ID,
		ContentType:    content.KeyNewsReaction,
		SourceMaterial: "headline",
		LengthHint:     generation.LengthShort,
	})
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, 13, result.LastWordCount)

	// Every over-cap attempt is logged rejected with the word count
	entries := listEntries(t, repo)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, models.LogStatusRejected, e.Status)
		assert.Contains(t, e.ErrorMessage, "word cap")
	}
}

func TestShortRetrySucceedsMidway(t *testing.T) {
	client := &fakeCompleter{responses: []string{longReaction, validReaction}}
	agent, repo := newTestAgent(t, client)
	persona := seedPersona(t, repo, "Marcus")

	result, err := agent.GenerateContent(context.Background(), GenerateInput{
		PersonaID:      persona.ID,
		ContentType:    content.KeyNewsReaction,
		SourceMaterial: "headline",
		LengthHint:     generation.LengthShort,
	})
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, models.LogStatusGenerated, result.Entry.Status)

	entries := listEntries(t, repo)
	assert.Len(t, entries, 2)
}

func TestGenerateFromCandidate(t *testing.T) {
	agent, repo := newTestAgent(t, &fakeCompleter{responses: []string{validReaction}})
	persona := seedPersona(t, repo, "Marcus")
	ctx := context.Background()

	source := &models.NewsSource{Name: "Aeon", FeedURL: "https://example.org/feed"}
	require.NoError(t, repo.CreateNewsSource(ctx, source))
	candidate := &models.ArticleCandidate{
		SourceID: source.ID,
		Title:    "On attention",
		Link:     "https://example.org/attention",
		Summary:  "An essay on attention.",
		Status:   models.CandidateStatusApproved,
	}
	require.NoError(t, repo.CreateCandidate(ctx, candidate))

	result, err := agent.GenerateFromCandidate(ctx, persona.ID, content.KeyNewsReaction, candidate.ID, generation.LengthDefault)
	require.NoError(t, err)
	assert.Equal(t, models.LogStatusGenerated, result.Entry.Status)
	assert.Contains(t, result.Entry.SourceMaterial, "On attention")

	updated, err := repo.GetCandidateByID(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CandidateStatusUsed, updated.Status)
}

func TestGenerateFromCandidateRequiresApproval(t *testing.T) {
	agent, repo := newTestAgent(t, &fakeCompleter{responses: []string{validReaction}})
	persona := seedPersona(t, repo, "Marcus")
	ctx := context.Background()

	source := &models.NewsSource{Name: "Aeon", FeedURL: "https://example.org/feed"}
	require.NoError(t, repo.CreateNewsSource(ctx, source))
	candidate := &models.ArticleCandidate{
		SourceID: source.ID,
		Title:    "On attention",
		Link:     "https://example.org/attention",
		Status:   models.CandidateStatusScored,
	}
	require.NoError(t, repo.CreateCandidate(ctx, candidate))

	_, err := agent.GenerateFromCandidate(ctx, persona.ID, content.KeyNewsReaction, candidate.ID, generation.LengthDefault)
	assert.Error(t, err)
}

func TestGenerateFromCandidateFailureLeavesCandidate(t *testing.T) {
	agent, repo := newTestAgent(t, &fakeCompleter{responses: []string{"garbage"}})
	persona := seedPersona(t, repo, "Marcus")
	ctx := context.Background()

	source := &models.NewsSource{Name: "Aeon", FeedURL: "https://example.org/feed"}
	require.NoError(t, repo.CreateNewsSource(ctx, source))
	candidate := &models.ArticleCandidate{
		SourceID: source.ID,
		Title:    "On attention",
		Link:     "https://example.org/attention",
		Status:   models.CandidateStatusApproved,
	}
	require.NoError(t, repo.CreateCandidate(ctx, candidate))

	result, err := agent.GenerateFromCandidate(ctx, persona.ID, content.KeyNewsReaction, candidate.ID, generation.LengthDefault)
	require.NoError(t, err)
	assert.Equal(t, models.LogStatusRejected, result.Entry.Status)

	// A failed generation must not burn the candidate
	updated, err := repo.GetCandidateByID(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CandidateStatusApproved, updated.Status)
}

func TestApproveAndPublishPost(t *testing.T) {
	agent, repo := newTestAgent(t, &fakeCompleter{responses: []string{validReaction}})
	persona := seedPersona(t, repo, "Marcus")
	ctx := context.Background()

	result, err := agent.GenerateContent(ctx, GenerateInput{
		PersonaID:      persona.ID,
		ContentType:    content.KeyNewsReaction,
		SourceMaterial: "headline",
	})
	require.NoError(t, err)
	entryID := result.Entry.ID

	require.NoError(t, agent.Approve(ctx, entryID))
	require.NoError(t, agent.Publish(ctx, entryID, PublishTarget{}))

	posts, err := repo.ListPosts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Short words here now.", posts[0].Content)
	assert.Equal(t, entryID, posts[0].LogEntryID)
	assert.Equal(t, "observes", posts[0].Stance)

	entry, err := repo.GetLogEntryByID(ctx, entryID)
	require.NoError(t, err)
	assert.Equal(t, models.LogStatusPublished, entry.Status)
}

func TestPublishRequiresApproval(t *testing.T) {
	agent, repo := newTestAgent(t, &fakeCompleter{responses: []string{validReaction}})
	persona := seedPersona(t, repo, "Marcus")
	ctx := context.Background()

	result, err := agent.GenerateContent(ctx, GenerateInput{
		PersonaID:      persona.ID,
		ContentType:    content.KeyNewsReaction,
		SourceMaterial: "headline",
	})
	require.NoError(t, err)

	// Still in generated, publish must refuse
	err = agent.Publish(ctx, result.Entry.ID, PublishTarget{})
	assert.Error(t, err)

	posts, err := repo.ListPosts(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPublishRollsBackOnMissingDebate(t *testing.T) {
	opening := `{"content": "My opening statement on the matter."}`
	agent, repo := newTestAgent(t, &fakeCompleter{responses: []string{opening}})
	persona := seedPersona(t, repo, "Marcus")
	ctx := context.Background()

	result, err := agent.GenerateContent(ctx, GenerateInput{
		PersonaID:      persona.ID,
		ContentType:    content.KeyDebateOpening,
		SourceMaterial: "Topic: free will",
	})
	require.NoError(t, err)
	entryID := result.Entry.ID
	require.NoError(t, agent.Approve(ctx, entryID))

	missing := uint(999)
	err = agent.Publish(ctx, entryID, PublishTarget{DebateID: &missing})
	require.Error(t, err)

	// Rollback keeps the entry approved and creates nothing
	entry, err := repo.GetLogEntryByID(ctx, entryID)
	require.NoError(t, err)
	assert.Equal(t, models.LogStatusApproved, entry.Status)

	posts, err := repo.ListDebatePosts(ctx, missing)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPublishAgoraResponses(t *testing.T) {
	answer := `{"posts": ["First part of my answer.", "Second part of my answer."]}`
	agent, repo := newTestAgent(t, &fakeCompleter{responses: []string{answer}})
	persona := seedPersona(t, repo, "Marcus")
	ctx := context.Background()

	thread := &models.AgoraThread{Question: "How should I live?"}
	require.NoError(t, repo.CreateAgoraThread(ctx, thread))

	result, err := agent.GenerateContent(ctx, GenerateInput{
		PersonaID:      persona.ID,
		ContentType:    content.KeyAgoraResponse,
		SourceMaterial: "Question: How should I live?",
		GroupKind:      models.GroupKindAgora,
		GroupID:        &thread.ID,
	})
	require.NoError(t, err)
	entryID := result.Entry.ID

	require.NoError(t, agent.Approve(ctx, entryID))
	require.NoError(t, agent.Publish(ctx, entryID, PublishTarget{ThreadID: &thread.ID}))

	responses, err := repo.ListAgoraResponses(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, 1, responses[0].SortOrder)
	assert.Equal(t, 2, responses[1].SortOrder)
	assert.Equal(t, entryID, responses[0].LogEntryID)
	assert.Equal(t, entryID, responses[1].LogEntryID)
}

func TestGenerateSynthesisFromDebate(t *testing.T) {
	synthesis := `{"tensions": ["free will"], "agreements": ["virtue matters"], "questions_for_reflection": ["what is enough?"]}`
	agent, repo := newTestAgent(t, &fakeCompleter{responses: []string{synthesis}})
	marcus := seedPersona(t, repo, "Marcus")
	simone := seedPersona(t, repo, "Simone")
	ctx := context.Background()

	debate := &models.Debate{Topic: "free will"}
	require.NoError(t, repo.CreateDebate(ctx, debate))
	require.NoError(t, repo.CreateDebatePost(ctx, &models.DebatePost{
		DebateID: debate.ID, PersonaID: marcus.ID, LogEntryID: 1,
		Phase: models.DebatePhaseOpening, Content: "Control what you can.", SortOrder: 1,
	}))
	require.NoError(t, repo.CreateDebatePost(ctx, &models.DebatePost{
		DebateID: debate.ID, PersonaID: simone.ID, LogEntryID: 2,
		Phase: models.DebatePhaseOpening, Content: "Freedom is situated.", SortOrder: 2,
	}))

	entry, err := agent.GenerateSynthesis(ctx, content.KeyDebateSynthesis, debate.ID)
	require.NoError(t, err)

	assert.Equal(t, models.LogStatusGenerated, entry.Status)
	assert.Nil(t, entry.PersonaID)
	assert.Equal(t, models.GroupKindDebate, entry.GroupKind)
	assert.Contains(t, entry.SourceMaterial, "=== Marcus ===")
	assert.Contains(t, entry.SourceMaterial, "=== Simone ===")

	// Publishing stores the synthesis on the debate row
	require.NoError(t, agent.Approve(ctx, entry.ID))
	require.NoError(t, agent.Publish(ctx, entry.ID, PublishTarget{DebateID: &debate.ID}))

	updated, err := repo.GetDebateByID(ctx, debate.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, updated.Synthesis)
}

func TestGenerateSynthesisEmptyDebate(t *testing.T) {
	agent, repo := newTestAgent(t, &fakeCompleter{responses: []string{"{}"}})
	ctx := context.Background()

	debate := &models.Debate{Topic: "free will"}
	require.NoError(t, repo.CreateDebate(ctx, debate))

	_, err := agent.GenerateSynthesis(ctx, content.KeyDebateSynthesis, debate.ID)
	assert.Error(t, err)
}

func TestCandidateReviewTransitions(t *testing.T) {
	agent, repo := newTestAgent(t, &fakeCompleter{responses: []string{validReaction}})
	ctx := context.Background()

	source := &models.NewsSource{Name: "Aeon", FeedURL: "https://example.org/feed"}
	require.NoError(t, repo.CreateNewsSource(ctx, source))
	candidate := &models.ArticleCandidate{
		SourceID: source.ID,
		Title:    "On attention",
		Link:     "https://example.org/attention",
		Status:   models.CandidateStatusScored,
	}
	require.NoError(t, repo.CreateCandidate(ctx, candidate))

	require.NoError(t, agent.ApproveCandidate(ctx, candidate.ID))
	updated, err := repo.GetCandidateByID(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CandidateStatusApproved, updated.Status)

	// approved -> dismissed is not a legal transition
	assert.Error(t, agent.DismissCandidate(ctx, candidate.ID))
}
