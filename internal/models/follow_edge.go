package models

import "time"

// FollowEdge is a directed follow relationship: the follower observes the
// followed user's posts. "A follows B" always stores FollowerID=A and
// FollowedID=B; counts and listings rely on that direction everywhere.
// The composite primary key keeps the (follower, followed) pair unique.
type FollowEdge struct {
	FollowerID uint `gorm:"primaryKey"`
	FollowedID uint `gorm:"primaryKey"`
	CreatedAt  time.Time

	Follower User `gorm:"foreignKey:FollowerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Followed User `gorm:"foreignKey:FollowedID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
