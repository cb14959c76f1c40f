package graphrpc

import (
	"context"
	"time"

	"github.com/questx-lab/netgraph/internal/common"
	"github.com/questx-lab/netgraph/internal/domain"
	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/internal/model"
	"github.com/questx-lab/netgraph/pkg/enum"
	"github.com/questx-lab/netgraph/pkg/errorx"
	"github.com/questx-lab/netgraph/pkg/xcontext"
)

// Server exposes the graph domains over json-rpc. Every exported method is registered, as
// graph_canView, graph_requestConnection and so on. Mutations take the id of the acting
// user as their first parameter.
type Server struct {
	base context.Context

	policyDomain       domain.PolicyDomain
	statsDomain        domain.StatsDomain
	connectionDomain   domain.ConnectionDomain
	followDomain       domain.FollowDomain
	endorsementDomain  domain.EndorsementDomain
	notificationDomain domain.NotificationDomain
	publisher          event.Publisher
}

func NewServer(
	ctx context.Context,
	policyDomain domain.PolicyDomain,
	statsDomain domain.StatsDomain,
	connectionDomain domain.ConnectionDomain,
	followDomain domain.FollowDomain,
	endorsementDomain domain.EndorsementDomain,
	notificationDomain domain.NotificationDomain,
	publisher event.Publisher,
) *Server {
	return &Server{
		base:               ctx,
		policyDomain:       policyDomain,
		statsDomain:        statsDomain,
		connectionDomain:   connectionDomain,
		followDomain:       followDomain,
		endorsementDomain:  endorsementDomain,
		notificationDomain: notificationDomain,
		publisher:          publisher,
	}
}

// context carries the request cancellation together with the configs, logger and database
// of the server.
func (s *Server) context(ctx context.Context, method, actorID string) (context.Context, func()) {
	ctx = xcontext.WithConfigs(ctx, xcontext.Configs(s.base))
	ctx = xcontext.WithLogger(ctx, xcontext.Logger(s.base))
	ctx = xcontext.WithDB(ctx, xcontext.DB(s.base))
	if actorID != "" {
		ctx = xcontext.WithRequestUserID(ctx, actorID)
	}

	start := time.Now()
	return ctx, func() {
		common.PromHistograms[common.RPCRequestDurationSecond].
			WithLabelValues(method).Observe(time.Since(start).Seconds())
	}
}

// QUERY API
func (s *Server) CanView(ctx context.Context, viewerID, ownerID, scope string) (bool, error) {
	ctx, done := s.context(ctx, "canView", "")
	defer done()

	var parsedScope entity.Scope
	if scope != "" {
		var err error
		parsedScope, err = enum.ToEnum[entity.Scope](scope)
		if err != nil {
			return false, errorx.New(errorx.BadRequest, "Scope %s must be one of %s", scope, enum.Join[entity.Scope]())
		}
	}

	return s.policyDomain.CanView(ctx, viewerID, ownerID, parsedScope)
}

func (s *Server) CanSendConnectionRequest(ctx context.Context, senderID, recipientID string) (bool, error) {
	ctx, done := s.context(ctx, "canSendConnectionRequest", "")
	defer done()

	return s.policyDomain.CanSendConnectionRequest(ctx, senderID, recipientID)
}

func (s *Server) CanEndorseSkill(ctx context.Context, endorserID, ownerID string) (bool, error) {
	ctx, done := s.context(ctx, "canEndorseSkill", "")
	defer done()

	return s.policyDomain.CanEndorseSkill(ctx, endorserID, ownerID)
}

func (s *Server) CanSendMessage(ctx context.Context, senderID, recipientID string) (bool, error) {
	ctx, done := s.context(ctx, "canSendMessage", "")
	defer done()

	return s.policyDomain.CanSendMessage(ctx, senderID, recipientID)
}

func (s *Server) GetStats(ctx context.Context, userID string) (*model.GetStatsResponse, error) {
	ctx, done := s.context(ctx, "getStats", "")
	defer done()

	return s.statsDomain.GetStats(ctx, &model.GetStatsRequest{UserID: userID})
}

// INBOUND EVENTS
func (s *Server) Publish(ctx context.Context, ev event.MutationEvent) error {
	ctx, done := s.context(ctx, "publish", "")
	defer done()

	if err := ev.Validate(); err != nil {
		return errorx.New(errorx.BadRequest, "Invalid event: %v", err)
	}

	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	if err := s.publisher.Publish(ctx, &ev); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish inbound event: %v", err)
		return errorx.Unknown
	}

	return nil
}

// VISIBILITY
func (s *Server) GetVisibility(ctx context.Context, actorID string) (*model.GetVisibilityResponse, error) {
	ctx, done := s.context(ctx, "getVisibility", actorID)
	defer done()

	return s.policyDomain.GetVisibility(ctx, &model.GetVisibilityRequest{})
}

func (s *Server) UpdateVisibility(
	ctx context.Context, actorID string, req model.UpdateVisibilityRequest,
) (*model.UpdateVisibilityResponse, error) {
	ctx, done := s.context(ctx, "updateVisibility", actorID)
	defer done()

	return s.policyDomain.UpdateVisibility(ctx, &req)
}

// CONNECTIONS
func (s *Server) RequestConnection(
	ctx context.Context, actorID string, req model.RequestConnectionRequest,
) (*model.RequestConnectionResponse, error) {
	ctx, done := s.context(ctx, "requestConnection", actorID)
	defer done()

	return s.connectionDomain.Request(ctx, &req)
}

func (s *Server) AcceptConnection(
	ctx context.Context, actorID string, req model.AcceptConnectionRequest,
) (*model.AcceptConnectionResponse, error) {
	ctx, done := s.context(ctx, "acceptConnection", actorID)
	defer done()

	return s.connectionDomain.Accept(ctx, &req)
}

func (s *Server) DeclineConnection(
	ctx context.Context, actorID string, req model.DeclineConnectionRequest,
) (*model.DeclineConnectionResponse, error) {
	ctx, done := s.context(ctx, "declineConnection", actorID)
	defer done()

	return s.connectionDomain.Decline(ctx, &req)
}

func (s *Server) CancelConnection(
	ctx context.Context, actorID string, req model.CancelConnectionRequest,
) (*model.CancelConnectionResponse, error) {
	ctx, done := s.context(ctx, "cancelConnection", actorID)
	defer done()

	return s.connectionDomain.Cancel(ctx, &req)
}

func (s *Server) RemoveConnection(
	ctx context.Context, actorID string, req model.RemoveConnectionRequest,
) (*model.RemoveConnectionResponse, error) {
	ctx, done := s.context(ctx, "removeConnection", actorID)
	defer done()

	return s.connectionDomain.Remove(ctx, &req)
}

func (s *Server) BlockUser(
	ctx context.Context, actorID string, req model.BlockUserRequest,
) (*model.BlockUserResponse, error) {
	ctx, done := s.context(ctx, "blockUser", actorID)
	defer done()

	return s.connectionDomain.Block(ctx, &req)
}

func (s *Server) UnblockUser(
	ctx context.Context, actorID string, req model.UnblockUserRequest,
) (*model.UnblockUserResponse, error) {
	ctx, done := s.context(ctx, "unblockUser", actorID)
	defer done()

	return s.connectionDomain.Unblock(ctx, &req)
}

func (s *Server) GetConnections(
	ctx context.Context, actorID string, req model.GetConnectionsRequest,
) (*model.GetConnectionsResponse, error) {
	ctx, done := s.context(ctx, "getConnections", actorID)
	defer done()

	return s.connectionDomain.GetList(ctx, &req)
}

// FOLLOWS
func (s *Server) Follow(
	ctx context.Context, actorID string, req model.FollowRequest,
) (*model.FollowResponse, error) {
	ctx, done := s.context(ctx, "follow", actorID)
	defer done()

	return s.followDomain.Follow(ctx, &req)
}

func (s *Server) Unfollow(
	ctx context.Context, actorID string, req model.UnfollowRequest,
) (*model.UnfollowResponse, error) {
	ctx, done := s.context(ctx, "unfollow", actorID)
	defer done()

	return s.followDomain.Unfollow(ctx, &req)
}

// ENDORSEMENTS
func (s *Server) EndorseSkill(
	ctx context.Context, actorID string, req model.EndorseSkillRequest,
) (*model.EndorseSkillResponse, error) {
	ctx, done := s.context(ctx, "endorseSkill", actorID)
	defer done()

	return s.endorsementDomain.Endorse(ctx, &req)
}

func (s *Server) RemoveEndorsement(
	ctx context.Context, actorID string, req model.RemoveEndorsementRequest,
) (*model.RemoveEndorsementResponse, error) {
	ctx, done := s.context(ctx, "removeEndorsement", actorID)
	defer done()

	return s.endorsementDomain.Remove(ctx, &req)
}

// NOTIFICATIONS
func (s *Server) GetNotifications(
	ctx context.Context, actorID string, req model.GetNotificationsRequest,
) (*model.GetNotificationsResponse, error) {
	ctx, done := s.context(ctx, "getNotifications", actorID)
	defer done()

	return s.notificationDomain.GetMyNotifications(ctx, &req)
}

func (s *Server) MarkNotificationRead(
	ctx context.Context, actorID string, req model.MarkNotificationReadRequest,
) (*model.MarkNotificationReadResponse, error) {
	ctx, done := s.context(ctx, "markNotificationRead", actorID)
	defer done()

	return s.notificationDomain.MarkRead(ctx, &req)
}

func (s *Server) MarkAllNotificationsRead(
	ctx context.Context, actorID string,
) (*model.MarkAllNotificationsReadResponse, error) {
	ctx, done := s.context(ctx, "markAllNotificationsRead", actorID)
	defer done()

	return s.notificationDomain.MarkAllRead(ctx, &model.MarkAllNotificationsReadRequest{})
}
