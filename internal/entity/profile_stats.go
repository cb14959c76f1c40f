package entity

import "time"

// ProfileStats is derived from the graph and content tables. It can be dropped and rebuilt
// at any time.
type ProfileStats struct {
	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	ConnectionsCount    int64
	FollowersCount      int64
	FollowingCount      int64
	EndorsementsCount   int64
	ProfileCompleteness int

	LastUpdated time.Time
}

// SameCounters reports whether both records hold the same derived values.
func (s *ProfileStats) SameCounters(other *ProfileStats) bool {
	return s.ConnectionsCount == other.ConnectionsCount &&
		s.FollowersCount == other.FollowersCount &&
		s.FollowingCount == other.FollowingCount &&
		s.EndorsementsCount == other.EndorsementsCount &&
		s.ProfileCompleteness == other.ProfileCompleteness
}
