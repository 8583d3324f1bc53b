package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UsagePeriod counts words consumed by one user in one calendar month.
// (user_id, period_start) is unique so lazy creation cannot duplicate a window.
type UsagePeriod struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_user_period" json:"user_id"`
	PeriodStart     time.Time `gorm:"not null;uniqueIndex:idx_usage_user_period" json:"period_start"`
	PeriodEnd       time.Time `gorm:"not null" json:"period_end"`
	WordCount       int       `gorm:"not null;default:0" json:"word_count"`
	MaxWordsAllowed int       `gorm:"not null" json:"max_words_allowed"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (UsagePeriod) TableName() string { return "usage_limits" }

func (p *UsagePeriod) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// MonthWindow returns the UTC calendar month containing t as [start, end).
func MonthWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
