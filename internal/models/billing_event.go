package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	BillingEventProcessed = "processed"
	BillingEventIgnored   = "ignored"
	BillingEventFailed    = "failed"
)

// BillingEvent records every verified payment-provider webhook delivery.
type BillingEvent struct {
	ID          string         `gorm:"size:255;primaryKey" json:"id"`
	Type        string         `gorm:"size:100;not null;index" json:"type"`
	Result      string         `gorm:"size:20;not null" json:"result"`
	Error       string         `gorm:"type:text" json:"error,omitempty"`
	Payload     datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	ProcessedAt *time.Time     `json:"processed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
