// Package models contains data structures for the application's domain models.
package models

import "time"

// PublishFields holds the publication flag and creation timestamp shared by
// locations, categories and posts. It is embedded, so its columns live on the
// owning table.
type PublishFields struct {
	IsPublished bool      `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// Published returns publication fields for a freshly created, visible record.
func Published() PublishFields {
	return PublishFields{IsPublished: true}
}
