package models

import (
	"time"
)

// Post is a published feed item (news reaction, timeless reflection, or
// cross-philosopher reply). Created only from an approved generation log entry.
type Post struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	PersonaID    uint           `gorm:"index;not null" json:"persona_id"`
	Persona      *Persona       `gorm:"foreignKey:PersonaID" json:"persona,omitempty"`
	LogEntryID   uint           `gorm:"index;not null" json:"log_entry_id"`
	CandidateID  *uint          `gorm:"index" json:"candidate_id"` // source article, if any
	ReplyToID    *uint          `gorm:"index" json:"reply_to_id"`  // cross-philosopher replies
	ContentType  string         `gorm:"not null" json:"content_type"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	Thesis       string         `json:"thesis"`
	Stance       string         `gorm:"size:20" json:"stance"`
	Tag          string         `gorm:"size:50" json:"tag"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// Debate groups opening statements and rebuttals on one topic.
// Synthesis holds the cross-philosopher summary once published.
type Debate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Topic     string    `gorm:"not null" json:"topic"`
	Synthesis JSON      `gorm:"type:json" json:"synthesis"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// DebatePhase identifies a debate statement's place in the transcript
type DebatePhase string

const (
	DebatePhaseOpening  DebatePhase = "opening"
	DebatePhaseRebuttal DebatePhase = "rebuttal"
)

// DebatePost is one published statement within a debate transcript
type DebatePost struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	DebateID   uint        `gorm:"index;not null" json:"debate_id"`
	Debate     *Debate     `gorm:"foreignKey:DebateID" json:"debate,omitempty"`
	PersonaID  uint        `gorm:"index;not null" json:"persona_id"`
	LogEntryID uint        `gorm:"index;not null" json:"log_entry_id"`
	Phase      DebatePhase `gorm:"size:20;not null" json:"phase"`
	Content    string      `gorm:"type:text;not null" json:"content"`
	SortOrder  int         `json:"sort_order"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

// AgoraThread is a reader question answered by multiple personas
type AgoraThread struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// AgoraResponse is one published post within a persona's answer to a thread.
// A multi-post answer produces several rows sharing the same log entry.
type AgoraResponse struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ThreadID   uint      `gorm:"index;not null" json:"thread_id"`
	PersonaID  uint      `gorm:"index;not null" json:"persona_id"`
	LogEntryID uint      `gorm:"index;not null" json:"log_entry_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	SortOrder  int       `json:"sort_order"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// AgoraSynthesis is the published cross-persona summary of a thread
type AgoraSynthesis struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	ThreadID   uint        `gorm:"uniqueIndex;not null" json:"thread_id"`
	LogEntryID uint        `gorm:"index;not null" json:"log_entry_id"`
	Tensions   StringSlice `gorm:"type:json" json:"tensions"`
	Agreements StringSlice `gorm:"type:json" json:"agreements"`
	Takeaways  StringSlice `gorm:"type:json" json:"takeaways"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
