package storage

import (
	"context"
	"errors"

	"github.com/agora-agent/internal/models"
)

// ErrNoActivePrompt is returned when a persona has no active system prompt.
// Generation against such a persona is fatal for the call, never retried.
var ErrNoActivePrompt = errors.New("persona has no active system prompt")

// ErrGuardrailExists is returned when the active prompt already carries the
// guardrail block; appending twice is prevented by a sentinel marker.
var ErrGuardrailExists = errors.New("guardrail block already present in active prompt")

// Repository defines the interface for data persistence
type Repository interface {
	// Persona operations
	CreatePersona(ctx context.Context, persona *models.Persona) error
	GetPersonaByID(ctx context.Context, id uint) (*models.Persona, error)
	GetPersonaByName(ctx context.Context, name string) (*models.Persona, error)
	ListPersonas(ctx context.Context) ([]*models.Persona, error)

	// System prompt operations. ActivatePrompt and AppendGuardrail are atomic:
	// deactivate-all-then-activate-one within one transaction.
	CreatePrompt(ctx context.Context, prompt *models.SystemPrompt) error
	GetActivePrompt(ctx context.Context, personaID uint) (*models.SystemPrompt, error)
	ListPrompts(ctx context.Context, personaID uint) ([]*models.SystemPrompt, error)
	ActivatePrompt(ctx context.Context, personaID, promptID uint) error
	AppendGuardrail(ctx context.Context, personaID uint, guardrail string) (*models.SystemPrompt, error)

	// Generation log operations. CreateLogEntry assigns SortOrder by insertion
	// count when the entry belongs to a group.
	CreateLogEntry(ctx context.Context, entry *models.GenerationLog) error
	GetLogEntryByID(ctx context.Context, id uint) (*models.GenerationLog, error)
	ListLogEntries(ctx context.Context, filter LogFilter) ([]*models.GenerationLog, error)
	UpdateLogEntry(ctx context.Context, entry *models.GenerationLog) error

	// Published content operations
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	ListPosts(ctx context.Context, limit int) ([]*models.Post, error)
	CreateDebate(ctx context.Context, debate *models.Debate) error
	GetDebateByID(ctx context.Context, id uint) (*models.Debate, error)
	UpdateDebate(ctx context.Context, debate *models.Debate) error
	CreateDebatePost(ctx context.Context, post *models.DebatePost) error
	ListDebatePosts(ctx context.Context, debateID uint) ([]*models.DebatePost, error)
	CreateAgoraThread(ctx context.Context, thread *models.AgoraThread) error
	GetAgoraThreadByID(ctx context.Context, id uint) (*models.AgoraThread, error)
	CreateAgoraResponse(ctx context.Context, response *models.AgoraResponse) error
	ListAgoraResponses(ctx context.Context, threadID uint) ([]*models.AgoraResponse, error)
	CreateAgoraSynthesis(ctx context.Context, synthesis *models.AgoraSynthesis) error

	// News source operations
	CreateNewsSource(ctx context.Context, source *models.NewsSource) error
	GetNewsSourceByURL(ctx context.Context, feedURL string) (*models.NewsSource, error)
	ListNewsSources(ctx context.Context, activeOnly bool) ([]*models.NewsSource, error)
	UpdateNewsSource(ctx context.Context, source *models.NewsSource) error

	// Article candidate operations. GetCandidateByLink and GetNewsSourceByURL
	// return (nil, nil) when no row matches; callers use them for dedup checks.
	CreateCandidate(ctx context.Context, candidate *models.ArticleCandidate) error
	GetCandidateByID(ctx context.Context, id uint) (*models.ArticleCandidate, error)
	GetCandidateByLink(ctx context.Context, sourceID uint, link string) (*models.ArticleCandidate, error)
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]*models.ArticleCandidate, error)
	UpdateCandidate(ctx context.Context, candidate *models.ArticleCandidate) error

	// Transaction runs fn against a repository bound to one database
	// transaction; any error rolls back every statement issued inside.
	Transaction(ctx context.Context, fn func(Repository) error) error

	// Maintenance
	Close() error
	Migrate() error
}

// LogFilter defines filtering options for generation log entries
type LogFilter struct {
	Status      *models.LogStatus
	PersonaID   *uint
	ContentType *string
	GroupKind   string
	GroupID     *uint
	Limit       int
	Offset      int
	OrderDesc   bool
}

// CandidateFilter defines filtering options for article candidates
type CandidateFilter struct {
	Status    *models.CandidateStatus
	SourceID  *uint
	MinScore  *float64
	Limit     int
	Offset    int
	OrderBy   string // "score", "fetched_at"
	OrderDesc bool
}

// DefaultLogFilter returns a filter with sensible defaults
func DefaultLogFilter() LogFilter {
	return LogFilter{
		Limit:     50,
		OrderDesc: true,
	}
}

// DefaultCandidateFilter returns a filter with sensible defaults
func DefaultCandidateFilter() CandidateFilter {
	return CandidateFilter{
		Limit:     50,
		OrderBy:   "score",
		OrderDesc: true,
	}
}
