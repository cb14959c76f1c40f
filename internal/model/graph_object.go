package model

type Connection struct {
	ID         string `json:"id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type VisibilitySetting struct {
	OverallVisibility string `json:"overall_visibility"`
	Contact           bool   `json:"contact"`
	Experience        bool   `json:"experience"`
	Education         bool   `json:"education"`
	Skills            bool   `json:"skills"`
	Projects          bool   `json:"projects"`
	Achievements      bool   `json:"achievements"`
	Publications      bool   `json:"publications"`
	Volunteer         bool   `json:"volunteer"`
	Endorsable        bool   `json:"endorsable"`
	Messageable       bool   `json:"messageable"`
	Connectable       bool   `json:"connectable"`
}

type ProfileStats struct {
	UserID              string `json:"user_id"`
	ConnectionsCount    int64  `json:"connections_count"`
	FollowersCount      int64  `json:"followers_count"`
	FollowingCount      int64  `json:"following_count"`
	EndorsementsCount   int64  `json:"endorsements_count"`
	ProfileCompleteness int    `json:"profile_completeness"`
	LastUpdated         string `json:"last_updated"`
}

type Notification struct {
	ID        string         `json:"id"`
	SenderID  string         `json:"sender_id"`
	Type      string         `json:"type"`
	SubjectID string         `json:"subject_id"`
	Title     string         `json:"title"`
	Data      map[string]any `json:"data"`
	IsRead    bool           `json:"is_read"`
	CreatedAt string         `json:"created_at"`
}
