package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agora-agent/internal/models"
	"github.com/agora-agent/internal/storage"
)

// guardrailMarker is the sentinel that makes guardrail appends idempotent:
// an active prompt containing it never receives a second guardrail block.
const guardrailMarker = "--- behavioral guardrails ---"

// Repository implements storage.Repository using SQLite
type Repository struct {
	db *gorm.DB
}

// New creates a new SQLite repository
func New(dsn string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" && !strings.HasPrefix(dsn, ":memory:") {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Repository{db: db}, nil
}

// Migrate runs database migrations
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&models.Persona{},
		&models.SystemPrompt{},
		&models.GenerationLog{},
		&models.Post{},
		&models.Debate{},
		&models.DebatePost{},
		&models.AgoraThread{},
		&models.AgoraResponse{},
		&models.AgoraSynthesis{},
		&models.NewsSource{},
		&models.ArticleCandidate{},
	)
}

// Close closes the database connection
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn against a repository bound to one transaction
func (r *Repository) Transaction(ctx context.Context, fn func(storage.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// Persona operations

func (r *Repository) CreatePersona(ctx context.Context, persona *models.Persona) error {
	return r.db.WithContext(ctx).Create(persona).Error
}

func (r *Repository) GetPersonaByID(ctx context.Context, id uint) (*models.Persona, error) {
	var persona models.Persona
	if err := r.db.WithContext(ctx).First(&persona, id).Error; err != nil {
		return nil, err
	}
	return &persona, nil
}

func (r *Repository) GetPersonaByName(ctx context.Context, name string) (*models.Persona, error) {
	var persona models.Persona
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&persona).Error; err != nil {
		return nil, err
	}
	return &persona, nil
}

func (r *Repository) ListPersonas(ctx context.Context) ([]*models.Persona, error) {
	var personas []*models.Persona
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&personas).Error; err != nil {
		return nil, err
	}
	return personas, nil
}

// System prompt operations

func (r *Repository) CreatePrompt(ctx context.Context, prompt *models.SystemPrompt) error {
	if prompt.Version == 0 {
		var max int64
		r.db.WithContext(ctx).Model(&models.SystemPrompt{}).
			Where("persona_id = ?", prompt.PersonaID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&max)
		prompt.Version = int(max) + 1
	}
	return r.db.WithContext(ctx).Create(prompt).Error
}

func (r *Repository) GetActivePrompt(ctx context.Context, personaID uint) (*models.SystemPrompt, error) {
	var prompt models.SystemPrompt
	err := r.db.WithContext(ctx).
		Where("persona_id = ? AND is_active = ?", personaID, true).
		First(&prompt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNoActivePrompt
		}
		return nil, err
	}
	return &prompt, nil
}

func (r *Repository) ListPrompts(ctx context.Context, personaID uint) ([]*models.SystemPrompt, error) {
	var prompts []*models.SystemPrompt
	if err := r.db.WithContext(ctx).
		Where("persona_id = ?", personaID).
		Order("version ASC").
		Find(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

// ActivatePrompt switches the active prompt version for a persona.
// Deactivate-all-then-activate-one in one transaction, so a reader never
// observes zero or two active rows after commit.
func (r *Repository) ActivatePrompt(ctx context.Context, personaID, promptID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prompt models.SystemPrompt
		if err := tx.Where("id = ? AND persona_id = ?", promptID, personaID).First(&prompt).Error; err != nil {
			return fmt.Errorf("prompt %d not found for persona %d: %w", promptID, personaID, err)
		}
		if err := tx.Model(&models.SystemPrompt{}).
			Where("persona_id = ?", personaID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.SystemPrompt{}).
			Where("id = ?", promptID).
			Update("is_active", true).Error
	})
}

// AppendGuardrail creates a new prompt version with the guardrail block
// appended to the active prompt's content and activates it. The sentinel
// marker makes the operation idempotent.
func (r *Repository) AppendGuardrail(ctx context.Context, personaID uint, guardrail string) (*models.SystemPrompt, error) {
	var created *models.SystemPrompt

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &Repository{db: tx}

		active, err := txRepo.GetActivePrompt(ctx, personaID)
		if err != nil {
			return err
		}
		if strings.Contains(active.Content, guardrailMarker) {
			return storage.ErrGuardrailExists
		}

		next := &models.SystemPrompt{
			PersonaID: personaID,
			Content:   active.Content + "\n\n" + guardrailMarker + "\n" + guardrail,
			Version:   active.Version + 1,
			IsActive:  true,
		}

		if err := tx.Model(&models.SystemPrompt{}).
			Where("persona_id = ?", personaID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Create(next).Error; err != nil {
			return err
		}

		created = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Generation log operations

// CreateLogEntry inserts an audit record. Entries belonging to a group
// (debate or agora thread) get SortOrder from the insertion count inside the
// same transaction, so transcript order reflects submission order rather than
// wall-clock completion.
func (r *Repository) CreateLogEntry(ctx context.Context, entry *models.GenerationLog) error {
	if entry.GroupKind == "" || entry.GroupID == nil {
		return r.db.WithContext(ctx).Create(entry).Error
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.GenerationLog{}).
			Where("group_kind = ? AND group_id = ?", entry.GroupKind, *entry.GroupID).
			Count(&count).Error; err != nil {
			return err
		}
		entry.SortOrder = int(count) + 1
		return tx.Create(entry).Error
	})
}

func (r *Repository) GetLogEntryByID(ctx context.Context, id uint) (*models.GenerationLog, error) {
	var entry models.GenerationLog
	if err := r.db.WithContext(ctx).Preload("Persona").First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *Repository) ListLogEntries(ctx context.Context, filter storage.LogFilter) ([]*models.GenerationLog, error) {
	var entries []*models.GenerationLog
	query := r.db.WithContext(ctx).Model(&models.GenerationLog{}).Preload("Persona")

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PersonaID != nil {
		query = query.Where("persona_id = ?", *filter.PersonaID)
	}
	if filter.ContentType != nil {
		query = query.Where("content_type = ?", *filter.ContentType)
	}
	if filter.GroupKind != "" {
		query = query.Where("group_kind = ?", filter.GroupKind)
	}
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}

	if filter.GroupKind != "" {
		query = query.Order("sort_order ASC")
	} else if filter.OrderDesc {
		query = query.Order("created_at DESC")
	} else {
		query = query.Order("created_at ASC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *Repository) UpdateLogEntry(ctx context.Context, entry *models.GenerationLog) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// Published content operations

func (r *Repository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *Repository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Persona").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *Repository) ListPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	query := r.db.WithContext(ctx).Preload("Persona").Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *Repository) CreateDebate(ctx context.Context, debate *models.Debate) error {
	return r.db.WithContext(ctx).Create(debate).Error
}

func (r *Repository) GetDebateByID(ctx context.Context, id uint) (*models.Debate, error) {
	var debate models.Debate
	if err := r.db.WithContext(ctx).First(&debate, id).Error; err != nil {
		return nil, err
	}
	return &debate, nil
}

func (r *Repository) UpdateDebate(ctx context.Context, debate *models.Debate) error {
	return r.db.WithContext(ctx).Save(debate).Error
}

func (r *Repository) CreateDebatePost(ctx context.Context, post *models.DebatePost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *Repository) ListDebatePosts(ctx context.Context, debateID uint) ([]*models.DebatePost, error) {
	var posts []*models.DebatePost
	if err := r.db.WithContext(ctx).
		Where("debate_id = ?", debateID).
		Order("sort_order ASC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *Repository) CreateAgoraThread(ctx context.Context, thread *models.AgoraThread) error {
	return r.db.WithContext(ctx).Create(thread).Error
}

func (r *Repository) GetAgoraThreadByID(ctx context.Context, id uint) (*models.AgoraThread, error) {
	var thread models.AgoraThread
	if err := r.db.WithContext(ctx).First(&thread, id).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *Repository) CreateAgoraResponse(ctx context.Context, response *models.AgoraResponse) error {
	return r.db.WithContext(ctx).Create(response).Error
}

func (r *Repository) ListAgoraResponses(ctx context.Context, threadID uint) ([]*models.AgoraResponse, error) {
	var responses []*models.AgoraResponse
	if err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("sort_order ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *Repository) CreateAgoraSynthesis(ctx context.Context, synthesis *models.AgoraSynthesis) error {
	return r.db.WithContext(ctx).Create(synthesis).Error
}

// News source operations

func (r *Repository) CreateNewsSource(ctx context.Context, source *models.NewsSource) error {
	return r.db.WithContext(ctx).Create(source).Error
}

func (r *Repository) GetNewsSourceByURL(ctx context.Context, feedURL string) (*models.NewsSource, error) {
	var source models.NewsSource
	if err := r.db.WithContext(ctx).Where("feed_url = ?", feedURL).First(&source).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &source, nil
}

func (r *Repository) ListNewsSources(ctx context.Context, activeOnly bool) ([]*models.NewsSource, error) {
	var sources []*models.NewsSource
	query := r.db.WithContext(ctx).Order("id ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *Repository) UpdateNewsSource(ctx context.Context, source *models.NewsSource) error {
	return r.db.WithContext(ctx).Save(source).Error
}

// Article candidate operations

func (r *Repository) CreateCandidate(ctx context.Context, candidate *models.ArticleCandidate) error {
	return r.db.WithContext(ctx).Create(candidate).Error
}

func (r *Repository) GetCandidateByID(ctx context.Context, id uint) (*models.ArticleCandidate, error) {
	var candidate models.ArticleCandidate
	if err := r.db.WithContext(ctx).Preload("Source").First(&candidate, id).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *Repository) GetCandidateByLink(ctx context.Context, sourceID uint, link string) (*models.ArticleCandidate, error) {
	var candidate models.ArticleCandidate
	if err := r.db.WithContext(ctx).
		Where("source_id = ? AND link = ?", sourceID, link).
		First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &candidate, nil
}

func (r *Repository) ListCandidates(ctx context.Context, filter storage.CandidateFilter) ([]*models.ArticleCandidate, error) {
	var candidates []*models.ArticleCandidate
	query := r.db.WithContext(ctx).Model(&models.ArticleCandidate{}).Preload("Source")

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SourceID != nil {
		query = query.Where("source_id = ?", *filter.SourceID)
	}
	if filter.MinScore != nil {
		query = query.Where("score >= ?", *filter.MinScore)
	}

	orderCol := "score"
	if filter.OrderBy != "" {
		orderCol = filter.OrderBy
	}
	if filter.OrderDesc {
		query = query.Order(orderCol + " DESC")
	} else {
		query = query.Order(orderCol + " ASC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *Repository) UpdateCandidate(ctx context.Context, candidate *models.ArticleCandidate) error {
	return r.db.WithContext(ctx).Save(candidate).Error
}

// Ensure Repository implements storage.Repository
var _ storage.Repository = (*Repository)(nil)
