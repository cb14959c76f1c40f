package model

import (
	"strconv"
	"time"

	"github.com/questx-lab/netgraph/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func ConvertConnection(c *entity.Connection) Connection {
	if c == nil {
		return Connection{}
	}

	return Connection{
		ID:         c.ID,
		FromUserID: c.FromUserID,
		ToUserID:   c.ToUserID,
		Status:     string(c.Status),
		Message:    c.Message,
		CreatedAt:  c.CreatedAt.Format(DefaultTimeLayout),
		UpdatedAt:  c.UpdatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertVisibilitySetting(s *entity.VisibilitySetting) VisibilitySetting {
	if s == nil {
		return VisibilitySetting{}
	}

	return VisibilitySetting{
		OverallVisibility: string(s.OverallVisibility),
		Contact:           s.Contact,
		Experience:        s.Experience,
		Education:         s.Education,
		Skills:            s.Skills,
		Projects:          s.Projects,
		Achievements:      s.Achievements,
		Publications:      s.Publications,
		Volunteer:         s.Volunteer,
		Endorsable:        s.Endorsable,
		Messageable:       s.Messageable,
		Connectable:       s.Connectable,
	}
}

func ConvertProfileStats(s *entity.ProfileStats) ProfileStats {
	if s == nil {
		return ProfileStats{}
	}

	return ProfileStats{
		UserID:              s.UserID,
		ConnectionsCount:    s.ConnectionsCount,
		FollowersCount:      s.FollowersCount,
		FollowingCount:      s.FollowingCount,
		EndorsementsCount:   s.EndorsementsCount,
		ProfileCompleteness: s.ProfileCompleteness,
		LastUpdated:         s.LastUpdated.Format(DefaultTimeLayout),
	}
}

func ConvertNotification(n *entity.Notification) Notification {
	if n == nil {
		return Notification{}
	}

	return Notification{
		ID:        strconv.FormatInt(n.ID, 10),
		SenderID:  n.SenderID.String,
		Type:      string(n.Type),
		SubjectID: n.SubjectID,
		Title:     n.Title,
		Data:      n.Data,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(DefaultTimeLayout),
	}
}
