package model

type RequestConnectionRequest struct {
	ToUserID string `json:"to_user_id"`
	Message  string `json:"message"`
}

type RequestConnectionResponse struct {
	Connection Connection `json:"connection"`
}

type AcceptConnectionRequest struct {
	ConnectionID string `json:"connection_id"`
}

type AcceptConnectionResponse struct {
	Connection Connection `json:"connection"`
}

type DeclineConnectionRequest struct {
	ConnectionID string `json:"connection_id"`
}

type DeclineConnectionResponse struct{}

type CancelConnectionRequest struct {
	ConnectionID string `json:"connection_id"`
}

type CancelConnectionResponse struct{}

type RemoveConnectionRequest struct {
	UserID string `json:"user_id"`
}

type RemoveConnectionResponse struct{}

type BlockUserRequest struct {
	UserID string `json:"user_id"`
}

type BlockUserResponse struct{}

type UnblockUserRequest struct {
	UserID string `json:"user_id"`
}

type UnblockUserResponse struct{}

type GetConnectionsRequest struct {
	// Status is one of pending, accepted, declined or blocked. Empty means all.
	Status string `json:"status"`

	// Direction is incoming, outgoing or empty for both.
	Direction string `json:"direction"`
	Offset    int    `json:"offset"`
	Limit     int    `json:"limit"`
}

type GetConnectionsResponse struct {
	Connections []Connection `json:"connections"`
}
