package model

type GetStatsRequest struct {
	UserID string `json:"user_id"`
}

type GetStatsResponse ProfileStats
