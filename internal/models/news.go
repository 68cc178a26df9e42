package models

import (
	"time"
)

// NewsSource is a configured RSS feed. Ingestion skips inactive sources.
type NewsSource struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	FeedURL   string    `gorm:"uniqueIndex;not null" json:"feed_url"`
	Category  string    `gorm:"size:50" json:"category"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CandidateStatus represents the current state of an article candidate
type CandidateStatus string

const (
	CandidateStatusNew       CandidateStatus = "new"
	CandidateStatusScored    CandidateStatus = "scored"
	CandidateStatusApproved  CandidateStatus = "approved"
	CandidateStatusDismissed CandidateStatus = "dismissed"
	CandidateStatusUsed      CandidateStatus = "used"
)

// ArticleCandidate is one RSS-sourced article awaiting or having received
// a relevance score. Deduplicated per source by link URL; re-fetching an
// already-seen link is a no-op.
type ArticleCandidate struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SourceID    uint            `gorm:"uniqueIndex:idx_source_link;not null" json:"source_id"`
	Source      *NewsSource     `gorm:"foreignKey:SourceID" json:"source,omitempty"`
	Title       string          `gorm:"not null" json:"title"`
	Link        string          `gorm:"uniqueIndex:idx_source_link;not null" json:"link"`
	Summary     string          `gorm:"type:text" json:"summary"`
	PublishedAt time.Time       `json:"published_at"`
	FetchedAt   time.Time       `gorm:"autoCreateTime" json:"fetched_at"`
	Status      CandidateStatus `gorm:"index;default:'new'" json:"status"`
	Score       float64         `json:"score"`    // relevance 0-100, set by scoring pass
	Category    string          `gorm:"size:50" json:"category"` // tag assigned by scoring
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsHighScore returns true if the candidate scored above the editorial shortlist threshold
func (c *ArticleCandidate) IsHighScore() bool {
	return c.Score >= 80.0
}
