package models

import "time"

// GeneratedImage records the most recent artifacts a user produced.
// It is informational display data and never gates a generation.
type GeneratedImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"uuid"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Prompt    string    `gorm:"type:text;not null" json:"prompt"`
	URL       string    `gorm:"type:varchar(2048);not null" json:"url"`
	MirrorURL string    `gorm:"type:varchar(2048);default:''" json:"mirror_url,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
