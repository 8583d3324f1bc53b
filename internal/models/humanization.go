package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	HumanizationCompleted  = "completed"
	HumanizationFailed     = "failed"
	HumanizationProcessing = "processing"
)

// Humanization is an append-only audit row, one per successful rewrite.
type Humanization struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	OriginalText  string    `gorm:"type:text;not null" json:"original_text"`
	HumanizedText string    `gorm:"type:text;not null" json:"humanized_text"`
	Status        string    `gorm:"size:20;not null" json:"status"`
	TokensUsed    int       `gorm:"not null;default:0" json:"tokens_used"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Humanization) TableName() string { return "humanization_history" }

func (h *Humanization) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
