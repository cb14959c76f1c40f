package entity

import "time"

// Follow is a one-way edge which needs no acceptance from the followed user.
type Follow struct {
	CreatedAt time.Time

	FollowerID string `gorm:"primaryKey"`
	Follower   User   `gorm:"foreignKey:FollowerID"`

	FollowingID string `gorm:"primaryKey;index"`
	Following   User   `gorm:"foreignKey:FollowingID"`
}
