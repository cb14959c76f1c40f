package client

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/internal/model"
	"github.com/questx-lab/netgraph/pkg/errorx"
	"github.com/questx-lab/netgraph/pkg/xcontext"
)

// GraphCaller calls the graph rpc server. Errors returned by the server are restored as
// errorx.Error, so callers can check their code with errorx.Is.
type GraphCaller interface {
	CanView(ctx context.Context, viewerID, ownerID, scope string) (bool, error)
	CanSendConnectionRequest(ctx context.Context, senderID, recipientID string) (bool, error)
	CanEndorseSkill(ctx context.Context, endorserID, ownerID string) (bool, error)
	CanSendMessage(ctx context.Context, senderID, recipientID string) (bool, error)
	GetStats(ctx context.Context, userID string) (*model.GetStatsResponse, error)
	Publish(ctx context.Context, ev *event.MutationEvent) error

	RequestConnection(ctx context.Context, actorID string, req *model.RequestConnectionRequest) (*model.RequestConnectionResponse, error)
	AcceptConnection(ctx context.Context, actorID string, req *model.AcceptConnectionRequest) (*model.AcceptConnectionResponse, error)
	DeclineConnection(ctx context.Context, actorID string, req *model.DeclineConnectionRequest) error
	CancelConnection(ctx context.Context, actorID string, req *model.CancelConnectionRequest) error
	RemoveConnection(ctx context.Context, actorID string, req *model.RemoveConnectionRequest) error
	Follow(ctx context.Context, actorID string, req *model.FollowRequest) error
	Unfollow(ctx context.Context, actorID string, req *model.UnfollowRequest) error
	Close()
}

type graphCaller struct {
	client *rpc.Client
}

func NewGraphCaller(client *rpc.Client) *graphCaller {
	return &graphCaller{client: client}
}

func (c *graphCaller) CanView(ctx context.Context, viewerID, ownerID, scope string) (bool, error) {
	var result bool
	err := c.call(ctx, &result, "canView", viewerID, ownerID, scope)
	return result, err
}

func (c *graphCaller) CanSendConnectionRequest(ctx context.Context, senderID, recipientID string) (bool, error) {
	var result bool
	err := c.call(ctx, &result, "canSendConnectionRequest", senderID, recipientID)
	return result, err
}

func (c *graphCaller) CanEndorseSkill(ctx context.Context, endorserID, ownerID string) (bool, error) {
	var result bool
	err := c.call(ctx, &result, "canEndorseSkill", endorserID, ownerID)
	return result, err
}

func (c *graphCaller) CanSendMessage(ctx context.Context, senderID, recipientID string) (bool, error) {
	var result bool
	err := c.call(ctx, &result, "canSendMessage", senderID, recipientID)
	return result, err
}

func (c *graphCaller) GetStats(ctx context.Context, userID string) (*model.GetStatsResponse, error) {
	var result model.GetStatsResponse
	if err := c.call(ctx, &result, "getStats", userID); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *graphCaller) Publish(ctx context.Context, ev *event.MutationEvent) error {
	return c.call(ctx, nil, "publish", ev)
}

func (c *graphCaller) RequestConnection(
	ctx context.Context, actorID string, req *model.RequestConnectionRequest,
) (*model.RequestConnectionResponse, error) {
	var result model.RequestConnectionResponse
	if err := c.call(ctx, &result, "requestConnection", actorID, req); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *graphCaller) AcceptConnection(
	ctx context.Context, actorID string, req *model.AcceptConnectionRequest,
) (*model.AcceptConnectionResponse, error) {
	var result model.AcceptConnectionResponse
	if err := c.call(ctx, &result, "acceptConnection", actorID, req); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *graphCaller) DeclineConnection(
	ctx context.Context, actorID string, req *model.DeclineConnectionRequest,
) error {
	return c.call(ctx, nil, "declineConnection", actorID, req)
}

func (c *graphCaller) CancelConnection(
	ctx context.Context, actorID string, req *model.CancelConnectionRequest,
) error {
	return c.call(ctx, nil, "cancelConnection", actorID, req)
}

func (c *graphCaller) RemoveConnection(
	ctx context.Context, actorID string, req *model.RemoveConnectionRequest,
) error {
	return c.call(ctx, nil, "removeConnection", actorID, req)
}

func (c *graphCaller) Follow(ctx context.Context, actorID string, req *model.FollowRequest) error {
	return c.call(ctx, nil, "follow", actorID, req)
}

func (c *graphCaller) Unfollow(ctx context.Context, actorID string, req *model.UnfollowRequest) error {
	return c.call(ctx, nil, "unfollow", actorID, req)
}

func (c *graphCaller) Close() {
	c.client.Close()
}

func (c *graphCaller) call(ctx context.Context, result any, funcName string, args ...any) error {
	return errorx.FromRPC(c.client.CallContext(ctx, result, c.fname(ctx, funcName), args...))
}

func (c *graphCaller) fname(ctx context.Context, funcName string) string {
	return fmt.Sprintf("%s_%s", xcontext.Configs(ctx).RPCServer.RPCName, funcName)
}
