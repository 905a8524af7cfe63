package models

import "time"

// Like marks a post as liked by a user. The composite primary key enforces
// at most one like per (post, user) pair; rows are hard-deleted on unlike so
// the pair can be liked again later.
type Like struct {
	PostID    uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey"`
	CreatedAt time.Time

	Post Post `gorm:"foreignKey:PostID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
