package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agora-agent/internal/ai"
	"github.com/agora-agent/internal/content"
	"github.com/agora-agent/internal/storage"
	"github.com/agora-agent/pkg/logger"
)

// Completer is the text-generation call the orchestrator depends on
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error)
}

// LengthHint selects the token budget for a generation call
type LengthHint string

const (
	LengthDefault LengthHint = "default"
	LengthShort   LengthHint = "short"
)

// Request is the ephemeral value object for one orchestration call
type Request struct {
	PersonaID      uint
	ContentType    content.Key
	SourceMaterial string
	LengthHint     LengthHint
}

// Outcome is the result of one generation attempt. RawOutput is always
// retained, even on failure, for audit and operator debugging.
type Outcome struct {
	Success        bool
	Data           map[string]interface{}
	SystemPromptID uint
	RawOutput      string
	Err            string
}

// Orchestrator composes persona prompts with content-type instructions and
// source material, invokes the generation client, and validates the parsed
// result. It performs no persistence; the caller writes the log entry, which
// lets the same orchestration serve preview-without-save flows.
type Orchestrator struct {
	client         Completer
	repo           storage.Repository
	shortMaxTokens int
	log            *logger.Logger
}

// NewOrchestrator creates a new generation orchestrator
func NewOrchestrator(client Completer, repo storage.Repository, shortMaxTokens int, log *logger.Logger) *Orchestrator {
	if shortMaxTokens <= 0 {
		shortMaxTokens = 300
	}
	return &Orchestrator{
		client:         client,
		repo:           repo,
		shortMaxTokens: shortMaxTokens,
		log:            log.WithComponent("generation"),
	}
}

// Generate runs one persona generation call. Domain validation failures and
// a missing active prompt are returned as errors (fatal, nothing to log);
// upstream and parse failures are returned as a failed Outcome so the caller
// can record the attempt.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Outcome, error) {
	if req.PersonaID == 0 {
		return nil, fmt.Errorf("persona id is required")
	}
	if strings.TrimSpace(req.SourceMaterial) == "" {
		return nil, fmt.Errorf("source material is required")
	}

	template, ok := content.Resolve(req.ContentType)
	if !ok {
		return nil, fmt.Errorf("unknown content type %q", req.ContentType)
	}
	if content.IsSynthesis(req.ContentType) {
		return nil, fmt.Errorf("content type %q requires the synthesis orchestrator", req.ContentType)
	}

	// Single prompt read; the active-version switch is atomic on the storage
	// side, so this never observes half-old/half-new state.
	prompt, err := o.repo.GetActivePrompt(ctx, req.PersonaID)
	if err != nil {
		if errors.Is(err, storage.ErrNoActivePrompt) {
			return nil, fmt.Errorf("persona %d: %w", req.PersonaID, storage.ErrNoActivePrompt)
		}
		return nil, fmt.Errorf("active prompt lookup failed: %w", err)
	}

	// The persona prompt stays in the system turn, separate from template
	// instructions, so behavior guardrails remain authoritative even against
	// adversarial template text.
	userMessage := template.Instructions + "\n\nSource material:\n" + req.SourceMaterial

	maxTokens := template.TokenBudget
	if req.LengthHint == LengthShort {
		maxTokens = o.shortMaxTokens
	}

	raw, err := o.client.Complete(ctx, prompt.Content, userMessage, maxTokens)
	if err != nil {
		if errors.Is(err, ai.ErrUnavailable) {
			return &Outcome{
				Success:        false,
				SystemPromptID: prompt.ID,
				Err:            "client unavailable",
			}, nil
		}
		return &Outcome{
			Success:        false,
			SystemPromptID: prompt.ID,
			Err:            err.Error(),
		}, nil
	}

	parsed, err := ai.ParseJSON(raw)
	if err != nil {
		o.log.Warn().
			Err(err).
			Str("content_type", string(req.ContentType)).
			Msg("Unparseable generation output")
		return &Outcome{
			Success:        false,
			SystemPromptID: prompt.ID,
			RawOutput:      raw,
			Err:            err.Error(),
		}, nil
	}

	if err := validateShape(parsed, template); err != nil {
		return &Outcome{
			Success:        false,
			SystemPromptID: prompt.ID,
			RawOutput:      raw,
			Err:            err.Error(),
		}, nil
	}

	// Stance conformance is advisory: trusted from the model, surfaced for
	// operator review, never rejected here.
	if stance, ok := parsed["stance"].(string); ok && !content.IsValidStance(stance) {
		o.log.Warn().
			Str("stance", stance).
			Str("content_type", string(req.ContentType)).
			Msg("Stance outside known enumeration")
	}

	return &Outcome{
		Success:        true,
		Data:           parsed,
		SystemPromptID: prompt.ID,
		RawOutput:      raw,
	}, nil
}

// validateShape checks field presence and type against the template contract.
// A mismatch is treated like a parse failure: failed outcome, no partial
// acceptance, no auto-correction.
func validateShape(parsed map[string]interface{}, template content.Template) error {
	for _, field := range template.Fields {
		value, ok := parsed[field.Name]
		if !ok {
			return fmt.Errorf("output missing required field %q", field.Name)
		}
		switch field.Kind {
		case content.FieldString:
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("field %q is not a string", field.Name)
			}
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("field %q is empty", field.Name)
			}
		case content.FieldStringList:
			list, ok := value.([]interface{})
			if !ok {
				return fmt.Errorf("field %q is not a list", field.Name)
			}
			if len(list) == 0 {
				return fmt.Errorf("field %q is empty", field.Name)
			}
			for i, item := range list {
				if _, ok := item.(string); !ok {
					return fmt.Errorf("field %q item %d is not a string", field.Name, i)
				}
			}
		}
	}
	return nil
}

// StringList extracts a []string field from an outcome payload
func StringList(data map[string]interface{}, field string) []string {
	raw, ok := data[field].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
