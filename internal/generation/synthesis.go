package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agora-agent/internal/ai"
	"github.com/agora-agent/internal/content"
)

// synthesisSystemPrompt replaces the persona prompt for synthesis calls,
// which are not persona-specific.
const synthesisSystemPrompt = `You are the synthesis agent for a philosophy publication. You read a transcript of posts by several philosopher personas and produce a neutral, attributed summary.

Rules:
- Attribute every claim to the philosopher named in its section header
- Report genuine tensions and genuine agreements; do not invent either
- Take no side yourself`

// Contribution is one prior-phase post fed into a synthesis call
type Contribution struct {
	Author string
	Text   string
}

// FormatContributions concatenates prior-phase content with per-contributor
// section headers so the model can attribute claims correctly.
func FormatContributions(contributions []Contribution) string {
	var b strings.Builder
	for i, c := range contributions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "=== %s ===\n%s", c.Author, c.Text)
	}
	return b.String()
}

// GenerateSynthesis runs one synthesis call over pre-formatted source
// material. Same contract shape as Generate, keyed by synthesis type instead
// of persona: no persona prompt is read, so SystemPromptID stays zero.
func (o *Orchestrator) GenerateSynthesis(ctx context.Context, key content.Key, sourceMaterial string) (*Outcome, error) {
	if !content.IsSynthesis(key) {
		return nil, fmt.Errorf("content type %q is not a synthesis type", key)
	}
	if strings.TrimSpace(sourceMaterial) == "" {
		return nil, fmt.Errorf("source material is required")
	}

	template, _ := content.Resolve(key)
	userMessage := template.Instructions + "\n\nTranscript:\n" + sourceMaterial

	raw, err := o.client.Complete(ctx, synthesisSystemPrompt, userMessage, template.TokenBudget)
	if err != nil {
		if errors.Is(err, ai.ErrUnavailable) {
			return &Outcome{Success: false, Err: "client unavailable"}, nil
		}
		return &Outcome{Success: false, Err: err.Error()}, nil
	}

	parsed, err := ai.ParseJSON(raw)
	if err != nil {
		o.log.Warn().
			Err(err).
			Str("content_type", string(key)).
			Msg("Unparseable synthesis output")
		return &Outcome{Success: false, RawOutput: raw, Err: err.Error()}, nil
	}

	if err := validateShape(parsed, template); err != nil {
		return &Outcome{Success: false, RawOutput: raw, Err: err.Error()}, nil
	}

	return &Outcome{Success: true, Data: parsed, RawOutput: raw}, nil
}
