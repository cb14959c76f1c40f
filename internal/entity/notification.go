package entity

import (
	"database/sql"

	"github.com/questx-lab/netgraph/pkg/enum"
)

type NotificationType string

var (
	NotificationConnectionRequest  = enum.New(NotificationType("connection_request"))
	NotificationConnectionAccepted = enum.New(NotificationType("connection_accepted"))
	NotificationNewFollower        = enum.New(NotificationType("new_follower"))
	NotificationSkillEndorsement   = enum.New(NotificationType("skill_endorsement"))
	NotificationEndorseReminder    = enum.New(NotificationType("endorsement_reminder"))
	NotificationSuggestion         = enum.New(NotificationType("connection_suggestion"))
)

type Notification struct {
	SnowFlakeBase

	RecipientID string `gorm:"index:idx_notifications_dedup"`
	Recipient   User   `gorm:"foreignKey:RecipientID"`

	SenderID sql.NullString

	Type      NotificationType `gorm:"index:idx_notifications_dedup;size:32"`
	SubjectID string           `gorm:"index:idx_notifications_dedup"`
	IsRead    bool             `gorm:"index:idx_notifications_dedup"`
	ReadAt    sql.NullTime

	Title string
	Data  Map `gorm:"type:json"`
}
