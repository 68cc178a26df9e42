package models

import (
	"time"
)

// Persona represents a philosopher agent with a versioned system prompt
type Persona struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Tradition string    `json:"tradition"` // e.g. stoicism, existentialism
	Style     string    `json:"style"`     // short description of the voice
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SystemPrompt is one version of a persona's system prompt.
// At most one version per persona is active at any time; switching versions
// is a deactivate-all-then-activate-one transaction in the repository.
type SystemPrompt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PersonaID uint      `gorm:"index;not null" json:"persona_id"`
	Persona   *Persona  `gorm:"foreignKey:PersonaID" json:"persona,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Version   int       `gorm:"not null" json:"version"`
	IsActive  bool      `gorm:"index;default:false" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
