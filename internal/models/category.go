package models

// Category groups posts. Unpublished categories hide their posts from public listings.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:256;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Slug        string `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	PublishFields
}
