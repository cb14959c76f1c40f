package model

type EndorseSkillRequest struct {
	SkillID string `json:"skill_id"`
	Message string `json:"message"`
}

type EndorseSkillResponse struct {
	EndorsementID string `json:"endorsement_id"`
}

type RemoveEndorsementRequest struct {
	SkillID string `json:"skill_id"`
}

type RemoveEndorsementResponse struct{}
