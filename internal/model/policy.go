package model

type GetVisibilityRequest struct{}

type GetVisibilityResponse VisibilitySetting

type UpdateVisibilityRequest VisibilitySetting

type UpdateVisibilityResponse struct{}
