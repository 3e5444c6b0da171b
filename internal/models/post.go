package models

import "time"

// Post is a publication written by a user. A PubDate in the future schedules it.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:256;not null" json:"title"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	PubDate    time.Time `gorm:"not null;index" json:"pub_date"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	LocationID *uint     `gorm:"index" json:"location_id,omitempty"`
	Location   *Location `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL" json:"location,omitempty"`
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
	// Image is a path relative to the media root; empty when the post has no image.
	Image string `gorm:"size:255" json:"image,omitempty"`
	PublishFields
	// CommentCount is not persisted; computed at query time
	CommentCount int `gorm:"->;-:migration" json:"comment_count"`
}

// OwnerID returns the ID of the post's author.
func (p *Post) OwnerID() uint {
	return p.AuthorID
}
