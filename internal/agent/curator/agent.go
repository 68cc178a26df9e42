package curator

import (
	"context"
	"fmt"
	"strings"

	"github.com/agora-agent/internal/config"
	"github.com/agora-agent/internal/content"
	"github.com/agora-agent/internal/generation"
	"github.com/agora-agent/internal/models"
	"github.com/agora-agent/internal/review"
	"github.com/agora-agent/internal/storage"
	"github.com/agora-agent/pkg/logger"
	"github.com/agora-agent/pkg/retry"
)

// Agent drives the generation-and-curation side of the pipeline: it invokes
// the orchestrator, writes the audit log for every attempt, enforces the
// short-post word cap, and applies review transitions transactionally.
type Agent struct {
	orchestrator *generation.Orchestrator
	repo         storage.Repository
	cfg          config.GenerationConfig
	log          *logger.Logger
}

// NewAgent creates a new curator agent
func NewAgent(
	orchestrator *generation.Orchestrator,
	repo storage.Repository,
	cfg config.GenerationConfig,
	log *logger.Logger,
) *Agent {
	return &Agent{
		orchestrator: orchestrator,
		repo:         repo,
		cfg:          cfg,
		log:          log.WithComponent("curator"),
	}
}

// GenerateInput describes one curated generation request
type GenerateInput struct {
	PersonaID      uint
	ContentType    content.Key
	SourceMaterial string
	LengthHint     generation.LengthHint
	GroupKind      string // "" unless the entry belongs to a debate or thread
	GroupID        *uint
}

// GenerateResult reports one curated generation. Skipped means the word-cap
// retry ceiling was exhausted; LastWordCount is surfaced for diagnostics.
type GenerateResult struct {
	Entry         *models.GenerationLog
	Attempts      int
	Skipped       bool
	LastWordCount int
}

// GenerateContent runs a generation call and writes one log entry per
// attempt. With a short length hint, results over the word cap are discarded
// (entry marked rejected) and the call is retried up to the configured
// ceiling; exhaustion is reported as a skip, not an error.
func (a *Agent) GenerateContent(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	short := in.LengthHint == generation.LengthShort

	policy := retry.Policy{MaxAttempts: 1}
	if short {
		policy = retry.Policy{MaxAttempts: a.cfg.RetryAttempts, Delay: a.cfg.RetryDelay}
	}

	var (
		lastEntry *models.GenerationLog
		lastWords int
		overCap   bool
	)

	res, err := policy.Do(ctx,
		func(ctx context.Context) error {
			entry, err := a.generateOnce(ctx, in)
			if err != nil {
				return err
			}
			lastEntry = entry
			overCap = false

			if short && entry.Succeeded() {
				text, _ := entry.Payload["content"].(string)
				lastWords = countWords(text)
				if lastWords > a.cfg.ShortWordCap {
					overCap = true
					entry.Status = models.LogStatusRejected
					entry.ErrorMessage = fmt.Sprintf("content exceeded short word cap: %d > %d words", lastWords, a.cfg.ShortWordCap)
					if err := a.repo.UpdateLogEntry(ctx, entry); err != nil {
						return fmt.Errorf("failed to mark over-cap entry: %w", err)
					}
					a.log.Info().
						Int("words", lastWords).
						Int("cap", a.cfg.ShortWordCap).
						Msg("Discarding over-cap short post")
				}
			}
			return nil
		},
		func() bool { return !overCap },
	)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		Entry:         lastEntry,
		Attempts:      res.Attempts,
		Skipped:       !res.Accepted,
		LastWordCount: lastWords,
	}

	if result.Skipped {
		a.log.Warn().
			Int("attempts", res.Attempts).
			Int("last_word_count", lastWords).
			Msg("Short-post generation skipped: retry ceiling exhausted")
	}

	return result, nil
}

// generateOnce runs one orchestration call and writes its audit entry.
// Every attempt is logged; failures carry status rejected with the raw
// output retained so no attempt is silently lost.
func (a *Agent) generateOnce(ctx context.Context, in GenerateInput) (*models.GenerationLog, error) {
	ctx, cancel := a.withDeadline(ctx)
	defer cancel()

	outcome, err := a.orchestrator.Generate(ctx, generation.Request{
		PersonaID:      in.PersonaID,
		ContentType:    in.ContentType,
		SourceMaterial: in.SourceMaterial,
		LengthHint:     in.LengthHint,
	})
	if err != nil {
		// Domain validation or missing active prompt: fatal before any
		// external call, nothing to log.
		return nil, err
	}

	entry := &models.GenerationLog{
		PersonaID:      &in.PersonaID,
		ContentType:    string(in.ContentType),
		SourceMaterial: in.SourceMaterial,
		RawOutput:      outcome.RawOutput,
		GroupKind:      in.GroupKind,
		GroupID:        in.GroupID,
	}
	if outcome.SystemPromptID != 0 {
		id := outcome.SystemPromptID
		entry.SystemPromptID = &id
	}

	if outcome.Success {
		entry.Status = models.LogStatusGenerated
		entry.Payload = models.JSON(outcome.Data)
	} else {
		entry.Status = models.LogStatusRejected
		entry.ErrorMessage = outcome.Err
	}

	if err := a.repo.CreateLogEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to write generation log: %w", err)
	}

	a.log.WithPersonaID(in.PersonaID).WithLogEntryID(entry.ID).Info().
		Str("content_type", string(in.ContentType)).
		Bool("success", outcome.Success).
		Msg("Generation attempt logged")

	return entry, nil
}

// GenerateFromCandidate generates content sourced from an approved article
// candidate and marks the candidate used once it has been consumed.
func (a *Agent) GenerateFromCandidate(ctx context.Context, personaID uint, key content.Key, candidateID uint, hint generation.LengthHint) (*GenerateResult, error) {
	candidate, err := a.repo.GetCandidateByID(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("candidate not found: %w", err)
	}
	if candidate.Status != models.CandidateStatusApproved {
		return nil, fmt.Errorf("candidate %d is %s, not approved", candidateID, candidate.Status)
	}

	source := fmt.Sprintf("Headline: %s\nLink: %s", candidate.Title, candidate.Link)
	if candidate.Summary != "" {
		source += "\nSummary: " + candidate.Summary
	}

	result, err := a.GenerateContent(ctx, GenerateInput{
		PersonaID:      personaID,
		ContentType:    key,
		SourceMaterial: source,
		LengthHint:     hint,
	})
	if err != nil {
		return nil, err
	}

	if result.Entry != nil && result.Entry.Succeeded() {
		if err := review.TransitionCandidate(candidate, models.CandidateStatusUsed); err != nil {
			return nil, err
		}
		if err := a.repo.UpdateCandidate(ctx, candidate); err != nil {
			return nil, fmt.Errorf("failed to mark candidate used: %w", err)
		}
	}

	return result, nil
}

// GenerateSynthesis gathers prior-phase content for a debate or agora
// thread, runs the synthesis orchestration, and logs the attempt with the
// group so the entry sorts after the contributions it summarizes.
func (a *Agent) GenerateSynthesis(ctx context.Context, key content.Key, groupID uint) (*models.GenerationLog, error) {
	var (
		contributions []generation.Contribution
		groupKind     string
	)

	switch key {
	case content.KeyDebateSynthesis:
		groupKind = models.GroupKindDebate
		posts, err := a.repo.ListDebatePosts(ctx, groupID)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			name, err := a.personaName(ctx, p.PersonaID)
			if err != nil {
				return nil, err
			}
			contributions = append(contributions, generation.Contribution{Author: name, Text: p.Content})
		}
		if len(contributions) == 0 {
			return nil, fmt.Errorf("debate %d has no published posts to synthesize", groupID)
		}

	case content.KeyAgoraSynthesis:
		groupKind = models.GroupKindAgora
		responses, err := a.repo.ListAgoraResponses(ctx, groupID)
		if err != nil {
			return nil, err
		}
		for _, r := range responses {
			name, err := a.personaName(ctx, r.PersonaID)
			if err != nil {
				return nil, err
			}
			contributions = append(contributions, generation.Contribution{Author: name, Text: r.Content})
		}
		if len(contributions) == 0 {
			return nil, fmt.Errorf("thread %d has no published responses to synthesize", groupID)
		}

	default:
		return nil, fmt.Errorf("content type %q is not a synthesis type", key)
	}

	source := generation.FormatContributions(contributions)

	genCtx, cancel := a.withDeadline(ctx)
	defer cancel()

	outcome, err := a.orchestrator.GenerateSynthesis(genCtx, key, source)
	if err != nil {
		return nil, err
	}

	gid := groupID
	entry := &models.GenerationLog{
		ContentType:    string(key),
		SourceMaterial: source,
		RawOutput:      outcome.RawOutput,
		GroupKind:      groupKind,
		GroupID:        &gid,
	}
	if outcome.Success {
		entry.Status = models.LogStatusGenerated
		entry.Payload = models.JSON(outcome.Data)
	} else {
		entry.Status = models.LogStatusRejected
		entry.ErrorMessage = outcome.Err
	}

	if err := a.repo.CreateLogEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to write generation log: %w", err)
	}

	return entry, nil
}

func (a *Agent) personaName(ctx context.Context, id uint) (string, error) {
	persona, err := a.repo.GetPersonaByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("persona %d not found: %w", id, err)
	}
	return persona.Name, nil
}

// Approve accepts a generated log entry for publication
func (a *Agent) Approve(ctx context.Context, logID uint) error {
	return a.transitionLog(ctx, logID, models.LogStatusApproved)
}

// Reject declines a generated log entry
func (a *Agent) Reject(ctx context.Context, logID uint) error {
	return a.transitionLog(ctx, logID, models.LogStatusRejected)
}

func (a *Agent) transitionLog(ctx context.Context, logID uint, to models.LogStatus) error {
	entry, err := a.repo.GetLogEntryByID(ctx, logID)
	if err != nil {
		return fmt.Errorf("log entry not found: %w", err)
	}
	if err := review.TransitionLog(entry, to); err != nil {
		return err
	}
	return a.repo.UpdateLogEntry(ctx, entry)
}

// PublishTarget carries the linkage for the durable item being created
type PublishTarget struct {
	CandidateID   *uint
	ReplyToPostID *uint
	DebateID      *uint
	ThreadID      *uint
}

// Publish instantiates the durable content item from an approved log entry.
// The item insert and the approved -> published transition happen in one
// transaction: a reference to a nonexistent debate or thread rolls back both.
func (a *Agent) Publish(ctx context.Context, logID uint, target PublishTarget) error {
	entry, err := a.repo.GetLogEntryByID(ctx, logID)
	if err != nil {
		return fmt.Errorf("log entry not found: %w", err)
	}
	if !entry.Succeeded() {
		return fmt.Errorf("log entry %d has no usable payload", logID)
	}
	if err := review.TransitionLog(entry, models.LogStatusPublished); err != nil {
		return err
	}

	return a.repo.Transaction(ctx, func(tx storage.Repository) error {
		if err := a.createContentItem(ctx, tx, entry, target); err != nil {
			return err
		}
		return tx.UpdateLogEntry(ctx, entry)
	})
}

func (a *Agent) createContentItem(ctx context.Context, tx storage.Repository, entry *models.GenerationLog, target PublishTarget) error {
	key := content.Key(entry.ContentType)

	switch key {
	case content.KeyNewsReaction, content.KeyTimelessReflection, content.KeyCrossPhilosopherReply:
		if entry.PersonaID == nil {
			return fmt.Errorf("log entry %d has no persona", entry.ID)
		}
		if key == content.KeyCrossPhilosopherReply {
			if target.ReplyToPostID == nil {
				return fmt.Errorf("cross-philosopher reply requires a reply-to post")
			}
			if _, err := tx.GetPostByID(ctx, *target.ReplyToPostID); err != nil {
				return fmt.Errorf("reply-to post %d not found: %w", *target.ReplyToPostID, err)
			}
		}
		return tx.CreatePost(ctx, &models.Post{
			PersonaID:   *entry.PersonaID,
			LogEntryID:  entry.ID,
			CandidateID: target.CandidateID,
			ReplyToID:   target.ReplyToPostID,
			ContentType: entry.ContentType,
			Content:     payloadString(entry.Payload, "content"),
			Thesis:      payloadString(entry.Payload, "thesis"),
			Stance:      payloadString(entry.Payload, "stance"),
			Tag:         payloadString(entry.Payload, "tag"),
		})

	case content.KeyDebateOpening, content.KeyDebateRebuttal:
		if entry.PersonaID == nil {
			return fmt.Errorf("log entry %d has no persona", entry.ID)
		}
		if target.DebateID == nil {
			return fmt.Errorf("debate statement requires a debate id")
		}
		if _, err := tx.GetDebateByID(ctx, *target.DebateID); err != nil {
			return fmt.Errorf("debate %d not found: %w", *target.DebateID, err)
		}
		phase := models.DebatePhaseOpening
		if key == content.KeyDebateRebuttal {
			phase = models.DebatePhaseRebuttal
		}
		return tx.CreateDebatePost(ctx, &models.DebatePost{
			DebateID:   *target.DebateID,
			PersonaID:  *entry.PersonaID,
			LogEntryID: entry.ID,
			Phase:      phase,
			Content:    payloadString(entry.Payload, "content"),
			SortOrder:  entry.SortOrder,
		})

	case content.KeyAgoraResponse:
		if entry.PersonaID == nil {
			return fmt.Errorf("log entry %d has no persona", entry.ID)
		}
		if target.ThreadID == nil {
			return fmt.Errorf("agora response requires a thread id")
		}
		if _, err := tx.GetAgoraThreadByID(ctx, *target.ThreadID); err != nil {
			return fmt.Errorf("thread %d not found: %w", *target.ThreadID, err)
		}
		posts := generation.StringList(entry.Payload, "posts")
		if len(posts) == 0 {
			return fmt.Errorf("log entry %d payload has no posts", entry.ID)
		}
		for i, text := range posts {
			if err := tx.CreateAgoraResponse(ctx, &models.AgoraResponse{
				ThreadID:   *target.ThreadID,
				PersonaID:  *entry.PersonaID,
				LogEntryID: entry.ID,
				Content:    text,
				SortOrder:  i + 1,
			}); err != nil {
				return err
			}
		}
		return nil

	case content.KeyDebateSynthesis:
		if target.DebateID == nil {
			return fmt.Errorf("debate synthesis requires a debate id")
		}
		debate, err := tx.GetDebateByID(ctx, *target.DebateID)
		if err != nil {
			return fmt.Errorf("debate %d not found: %w", *target.DebateID, err)
		}
		debate.Synthesis = entry.Payload
		return tx.UpdateDebate(ctx, debate)

	case content.KeyAgoraSynthesis:
		if target.ThreadID == nil {
			return fmt.Errorf("agora synthesis requires a thread id")
		}
		if _, err := tx.GetAgoraThreadByID(ctx, *target.ThreadID); err != nil {
			return fmt.Errorf("thread %d not found: %w", *target.ThreadID, err)
		}
		return tx.CreateAgoraSynthesis(ctx, &models.AgoraSynthesis{
			ThreadID:   *target.ThreadID,
			LogEntryID: entry.ID,
			Tensions:   generation.StringList(entry.Payload, "tensions"),
			Agreements: generation.StringList(entry.Payload, "agreements"),
			Takeaways:  generation.StringList(entry.Payload, "practical_takeaways"),
		})
	}

	return fmt.Errorf("unknown content type %q on log entry %d", entry.ContentType, entry.ID)
}

// ApproveCandidate shortlists a scored article candidate
func (a *Agent) ApproveCandidate(ctx context.Context, candidateID uint) error {
	return a.transitionCandidate(ctx, candidateID, models.CandidateStatusApproved)
}

// DismissCandidate declines a scored article candidate
func (a *Agent) DismissCandidate(ctx context.Context, candidateID uint) error {
	return a.transitionCandidate(ctx, candidateID, models.CandidateStatusDismissed)
}

func (a *Agent) transitionCandidate(ctx context.Context, candidateID uint, to models.CandidateStatus) error {
	candidate, err := a.repo.GetCandidateByID(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("candidate not found: %w", err)
	}
	if err := review.TransitionCandidate(candidate, to); err != nil {
		return err
	}
	return a.repo.UpdateCandidate(ctx, candidate)
}

func (a *Agent) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.RequestTimeout)
}

func payloadString(payload models.JSON, field string) string {
	s, _ := payload[field].(string)
	return s
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
