package models

import "time"

// ConfigSnapshot is a published EventConfig as seen by the apply service.
// Version is the content-store token the admin service wrote it under.
type ConfigSnapshot struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Version     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"version"`
	Body        string    `gorm:"type:text;not null" json:"-"`
	PublishedAt time.Time `gorm:"not null" json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConfigPublished is the message body of a config.updated event.
type ConfigPublished struct {
	Version     string      `json:"version"`
	Config      EventConfig `json:"config"`
	PublishedAt time.Time   `json:"publishedAt"`
}
