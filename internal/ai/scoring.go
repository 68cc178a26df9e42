package ai

import (
	"context"
	"fmt"
)

// ArticleScore is the scoring pass result for one article candidate
type ArticleScore struct {
	Score     float64 `json:"score"`
	Category  string  `json:"category"`
	Rationale string  `json:"rationale"`
}

// ScoreArticle scores one article for philosophical relevance and assigns a
// category tag. Token budget is small; the response is a three-field object.
func (c *Client) ScoreArticle(ctx context.Context, title, summary, sourceName string) (*ArticleScore, error) {
	userPrompt := fmt.Sprintf(ArticleScoringUserPrompt, title, summary, sourceName)

	response, err := c.CompleteJSON(ctx, ArticleScoringSystemPrompt, userPrompt, 512)
	if err != nil {
		return nil, err
	}

	parsed, err := ParseJSON(response)
	if err != nil {
		c.log.Error().
			Err(err).
			Str("response", response).
			Msg("Failed to parse scoring response")
		return nil, fmt.Errorf("failed to parse scoring response: %w", err)
	}

	score := &ArticleScore{}
	if v, ok := parsed["score"].(float64); ok {
		score.Score = v
	} else {
		return nil, fmt.Errorf("%w: scoring response missing numeric score", ErrParse)
	}
	if v, ok := parsed["category"].(string); ok {
		score.Category = v
	}
	if v, ok := parsed["rationale"].(string); ok {
		score.Rationale = v
	}

	return score, nil
}
