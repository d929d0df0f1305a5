package models

import (
	"time"

	"gorm.io/gorm"
)

// Media is one accepted upload. Rows are created exactly once when a file
// has been durably written and are never updated or deleted by the service.
type Media struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DeviceID  string    `gorm:"size:128;index;not null" json:"device_id"`
	Filename  string    `gorm:"size:255;uniqueIndex;not null" json:"filename"`
	MediaType string    `gorm:"size:16;not null" json:"media_type"` // image | video
	Mime      string    `gorm:"size:128" json:"mime"`
	CreatedAt time.Time `json:"created_at"`
	Note      *string   `gorm:"size:1024" json:"note,omitempty"`
}

// BeforeCreate hook ensures the creation timestamp is set in UTC.
func (m *Media) BeforeCreate(tx *gorm.DB) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}
