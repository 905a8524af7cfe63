package models

import "gorm.io/gorm"

// MaxPostLength is the longest content (in characters) a post may carry.
const MaxPostLength = 140

// Post is a short text message authored by a user. Content is immutable
// after creation; only the author may delete it.
type Post struct {
	gorm.Model
	UserID  uint   `gorm:"not null;index"`
	Content string `gorm:"size:140;not null"`

	User  User   `gorm:"foreignKey:UserID"`
	Likes []Like `gorm:"foreignKey:PostID"`
}
