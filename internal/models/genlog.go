package models

import (
	"time"
)

// LogStatus represents the review state of a generation log entry
type LogStatus string

const (
	LogStatusPending   LogStatus = "pending"
	LogStatusGenerated LogStatus = "generated"
	LogStatusApproved  LogStatus = "approved"
	LogStatusRejected  LogStatus = "rejected"
	LogStatusPublished LogStatus = "published"
)

// Group kinds for ordering-sensitive generation batches
const (
	GroupKindDebate = "debate"
	GroupKindAgora  = "agora"
)

// GenerationLog is the durable audit record of one generation attempt.
// Every attempt writes exactly one entry, success or failure; failed attempts
// carry status rejected and keep the raw output for operator diagnosis.
type GenerationLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PersonaID      *uint     `gorm:"index" json:"persona_id"` // nil for synthesis
	Persona        *Persona  `gorm:"foreignKey:PersonaID" json:"persona,omitempty"`
	ContentType    string    `gorm:"index;not null" json:"content_type"`
	SystemPromptID *uint     `json:"system_prompt_id"`
	SourceMaterial string    `gorm:"type:text" json:"source_material"`
	RawOutput      string    `gorm:"type:text" json:"raw_output"`
	Payload        JSON      `gorm:"type:json" json:"payload"` // parsed structured data on success
	ErrorMessage   string    `json:"error_message"`
	Status         LogStatus `gorm:"index;default:'generated'" json:"status"`
	// Ordering within a debate or agora thread. SortOrder is assigned by
	// insertion count at write time so concurrent completion cannot reorder
	// a transcript.
	GroupKind string    `gorm:"size:20" json:"group_kind"`
	GroupID   *uint     `gorm:"index" json:"group_id"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Succeeded reports whether the attempt produced a usable payload
func (g *GenerationLog) Succeeded() bool {
	return g.ErrorMessage == "" && g.Payload != nil
}
