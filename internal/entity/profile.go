package entity

import "time"

// The content tables below are owned by the profile collaborators. This module only reads
// them, except for endorsements which it writes for the endorse flow.

type Profile struct {
	UserID    string `gorm:"primaryKey"`
	UpdatedAt time.Time

	Bio       string
	Location  string
	Position  string
	AvatarURL string
	Website   string
}

type Experience struct {
	Base
	UserID string `gorm:"index"`
	Title  string
}

type Education struct {
	Base
	UserID string `gorm:"index"`
	School string
}

type Skill struct {
	Base
	UserID string `gorm:"index"`
	Name   string
}

type SkillEndorsement struct {
	Base
	SkillID      string `gorm:"uniqueIndex:idx_skill_endorser"`
	EndorserID   string `gorm:"uniqueIndex:idx_skill_endorser"`
	SkillOwnerID string `gorm:"index"`
	Message      string
}
