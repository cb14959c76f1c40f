package domain

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/internal/model"
	"github.com/questx-lab/netgraph/internal/repository"
	"github.com/questx-lab/netgraph/pkg/enum"
	"github.com/questx-lab/netgraph/pkg/errorx"
	"github.com/questx-lab/netgraph/pkg/idutil"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"gorm.io/gorm"
)

type ConnectionDomain interface {
	Request(context.Context, *model.RequestConnectionRequest) (*model.RequestConnectionResponse, error)
	Accept(context.Context, *model.AcceptConnectionRequest) (*model.AcceptConnectionResponse, error)
	Decline(context.Context, *model.DeclineConnectionRequest) (*model.DeclineConnectionResponse, error)
	Cancel(context.Context, *model.CancelConnectionRequest) (*model.CancelConnectionResponse, error)
	Remove(context.Context, *model.RemoveConnectionRequest) (*model.RemoveConnectionResponse, error)
	Block(context.Context, *model.BlockUserRequest) (*model.BlockUserResponse, error)
	Unblock(context.Context, *model.UnblockUserRequest) (*model.UnblockUserResponse, error)
	GetList(context.Context, *model.GetConnectionsRequest) (*model.GetConnectionsResponse, error)
}

type connectionDomain struct {
	connectionRepo repository.ConnectionRepository
	followRepo     repository.FollowRepository
	userRepo       repository.UserRepository
	policy         PolicyDomain
	outbox         *event.Outbox
}

func NewConnectionDomain(
	connectionRepo repository.ConnectionRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	policy PolicyDomain,
	outbox *event.Outbox,
) *connectionDomain {
	return &connectionDomain{
		connectionRepo: connectionRepo,
		followRepo:     followRepo,
		userRepo:       userRepo,
		policy:         policy,
		outbox:         outbox,
	}
}

func (d *connectionDomain) Request(
	ctx context.Context, req *model.RequestConnectionRequest,
) (*model.RequestConnectionResponse, error) {
	actorID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	if req.ToUserID == actorID {
		return nil, errorx.New(errorx.SelfReference, "Cannot connect to yourself")
	}

	if utf8.RuneCountInString(req.Message) > xcontext.Configs(ctx).Connection.MaxMessageLength {
		return nil, errorx.New(errorx.BadRequest, "Message is too long")
	}

	if err := d.checkUser(ctx, req.ToUserID); err != nil {
		return nil, err
	}

	connection := &entity.Connection{
		ID:         idutil.NewUUID(),
		FromUserID: actorID,
		ToUserID:   req.ToUserID,
		Status:     entity.ConnectionPending,
		Message:    req.Message,
	}

	err = mutate(ctx, d.outbox, func(ctx context.Context) ([]*event.MutationEvent, error) {
		declined, err := d.policy.CheckConnectionRequest(ctx, actorID, req.ToUserID)
		if err != nil {
			return nil, err
		}

		if declined != nil {
			if err := d.connectionRepo.Delete(ctx, declined.ID, entity.ConnectionDeclined); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, errorx.New(errorx.DuplicateEdge, "The connection was changed concurrently")
				}

				xcontext.Logger(ctx).Errorf("Cannot delete declined connection: %v", err)
				return nil, errorx.Unknown
			}
		}

		if err := d.connectionRepo.Create(ctx, connection); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, errorx.New(errorx.DuplicateEdge, "A connection request already exists")
			}

			xcontext.Logger(ctx).Errorf("Cannot create connection: %v", err)
			return nil, errorx.Unknown
		}

		payload := event.NewConnectionPayload(
			event.ConnectionRequested, connection.ID, connection.FromUserID, connection.ToUserID)
		payload.Message = connection.Message

		return []*event.MutationEvent{
			event.New(payload, actorID, connection.ID, connection.FromUserID, connection.ToUserID),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.RequestConnectionResponse{Connection: model.ConvertConnection(connection)}, nil
}

func (d *connectionDomain) Accept(
	ctx context.Context, req *model.AcceptConnectionRequest,
) (*model.AcceptConnectionResponse, error) {
	connection, err := d.transit(ctx, req.ConnectionID, entity.ConnectionAccepted, event.ConnectionAccepted)
	if err != nil {
		return nil, err
	}

	return &model.AcceptConnectionResponse{Connection: model.ConvertConnection(connection)}, nil
}

func (d *connectionDomain) Decline(
	ctx context.Context, req *model.DeclineConnectionRequest,
) (*model.DeclineConnectionResponse, error) {
	_, err := d.transit(ctx, req.ConnectionID, entity.ConnectionDeclined, event.ConnectionDeclined)
	if err != nil {
		return nil, err
	}

	return &model.DeclineConnectionResponse{}, nil
}

// transit moves a pending connection to the given status on behalf of its recipient.
func (d *connectionDomain) transit(
	ctx context.Context, connectionID string, to entity.ConnectionStatus, eventType event.Type,
) (*entity.Connection, error) {
	actorID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	var connection *entity.Connection
	err = mutate(ctx, d.outbox, func(ctx context.Context) ([]*event.MutationEvent, error) {
		connection, err = d.getConnection(ctx, connectionID)
		if err != nil {
			return nil, err
		}

		if connection.ToUserID != actorID {
			return nil, errorx.New(errorx.InvalidStateTransition, "Only the recipient can respond to the request")
		}

		if connection.Status != entity.ConnectionPending {
			return nil, errorx.New(errorx.InvalidStateTransition,
				"Cannot change a %s connection to %s", connection.Status, to)
		}

		if err := d.connectionRepo.UpdateStatus(ctx, connection.ID, entity.ConnectionPending, to); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.InvalidStateTransition, "The connection is not pending anymore")
			}

			xcontext.Logger(ctx).Errorf("Cannot update connection status: %v", err)
			return nil, errorx.Unknown
		}

		connection.Status = to
		payload := event.NewConnectionPayload(eventType, connection.ID, connection.FromUserID, connection.ToUserID)
		return []*event.MutationEvent{
			event.New(payload, actorID, connection.ID, connection.FromUserID, connection.ToUserID),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return connection, nil
}

func (d *connectionDomain) Cancel(
	ctx context.Context, req *model.CancelConnectionRequest,
) (*model.CancelConnectionResponse, error) {
	actorID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	err = mutate(ctx, d.outbox, func(ctx context.Context) ([]*event.MutationEvent, error) {
		connection, err := d.getConnection(ctx, req.ConnectionID)
		if err != nil {
			return nil, err
		}

		if !connection.Involves(actorID) {
			return nil, errorx.New(errorx.InvalidStateTransition, "Only the parties can cancel the request")
		}

		if connection.Status != entity.ConnectionPending {
			return nil, errorx.New(errorx.InvalidStateTransition, "Cannot cancel a %s connection", connection.Status)
		}

		if err := d.connectionRepo.Delete(ctx, connection.ID, entity.ConnectionPending); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.InvalidStateTransition, "The connection is not pending anymore")
			}

			xcontext.Logger(ctx).Errorf("Cannot delete connection: %v", err)
			return nil, errorx.Unknown
		}

		payload := event.NewConnectionPayload(
			event.ConnectionDeclined, connection.ID, connection.FromUserID, connection.ToUserID)
		payload.Cancelled = true

		return []*event.MutationEvent{
			event.New(payload, actorID, connection.ID, connection.FromUserID, connection.ToUserID),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.CancelConnectionResponse{}, nil
}

func (d *connectionDomain) Remove(
	ctx context.Context, req *model.RemoveConnectionRequest,
) (*model.RemoveConnectionResponse, error) {
	actorID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	if req.UserID == actorID {
		return nil, errorx.New(errorx.SelfReference, "Cannot remove connection with yourself")
	}

	err = mutate(ctx, d.outbox, func(ctx context.Context) ([]*event.MutationEvent, error) {
		connection, err := d.connectionRepo.GetByPair(ctx, actorID, req.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "Not found connection")
			}

			xcontext.Logger(ctx).Errorf("Cannot get connection: %v", err)
			return nil, errorx.Unknown
		}

		if connection.Status != entity.ConnectionAccepted {
			return nil, errorx.New(errorx.NotFound, "Not found connection")
		}

		if err := d.connectionRepo.Delete(ctx, connection.ID, entity.ConnectionAccepted); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "Not found connection")
			}

			xcontext.Logger(ctx).Errorf("Cannot delete connection: %v", err)
			return nil, errorx.Unknown
		}

		payload := event.NewConnectionPayload(
			event.ConnectionRemoved, connection.ID, connection.FromUserID, connection.ToUserID)

		return []*event.MutationEvent{
			event.New(payload, actorID, connection.ID, connection.FromUserID, connection.ToUserID),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.RemoveConnectionResponse{}, nil
}

// Block replaces any connection of the pair with a blocked one owned by the request user.
// Follows between both users are removed too.
func (d *connectionDomain) Block(
	ctx context.Context, req *model.BlockUserRequest,
) (*model.BlockUserResponse, error) {
	actorID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	if req.UserID == actorID {
		return nil, errorx.New(errorx.SelfReference, "Cannot block yourself")
	}

	if err := d.checkUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	err = mutate(ctx, d.outbox, func(ctx context.Context) ([]*event.MutationEvent, error) {
		var events []*event.MutationEvent

		existing, err := d.connectionRepo.GetByPair(ctx, actorID, req.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get connection: %v", err)
			return nil, errorx.Unknown
		}

		if existing != nil {
			if existing.Status == entity.ConnectionBlocked {
				if existing.FromUserID == actorID {
					return nil, errorx.New(errorx.DuplicateEdge, "User is already blocked")
				}

				return nil, errorx.New(errorx.PolicyDenied, "Cannot block this user")
			}

			if err := d.connectionRepo.Delete(ctx, existing.ID, existing.Status); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, errorx.New(errorx.DuplicateEdge, "The connection was changed concurrently")
				}

				xcontext.Logger(ctx).Errorf("Cannot delete connection: %v", err)
				return nil, errorx.Unknown
			}

			if existing.Status == entity.ConnectionAccepted {
				payload := event.NewConnectionPayload(
					event.ConnectionRemoved, existing.ID, existing.FromUserID, existing.ToUserID)
				events = append(events,
					event.New(payload, actorID, existing.ID, existing.FromUserID, existing.ToUserID))
			}
		}

		blocked := &entity.Connection{
			ID:         idutil.NewUUID(),
			FromUserID: actorID,
			ToUserID:   req.UserID,
			Status:     entity.ConnectionBlocked,
		}

		if err := d.connectionRepo.Create(ctx, blocked); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, errorx.New(errorx.DuplicateEdge, "The connection was changed concurrently")
			}

			xcontext.Logger(ctx).Errorf("Cannot create blocked connection: %v", err)
			return nil, errorx.Unknown
		}

		for _, pair := range [][2]string{{actorID, req.UserID}, {req.UserID, actorID}} {
			err := d.followRepo.Delete(ctx, pair[0], pair[1])
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}

			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot delete follow: %v", err)
				return nil, errorx.Unknown
			}

			payload := &event.FollowPayload{FollowerID: pair[0], FollowingID: pair[1], Removed: true}
			events = append(events, event.New(payload, actorID, pair[1], pair[0], pair[1]))
		}

		return events, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.BlockUserResponse{}, nil
}

func (d *connectionDomain) Unblock(
	ctx context.Context, req *model.UnblockUserRequest,
) (*model.UnblockUserResponse, error) {
	actorID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	err = mutate(ctx, d.outbox, func(ctx context.Context) ([]*event.MutationEvent, error) {
		connection, err := d.connectionRepo.GetByPair(ctx, actorID, req.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "User is not blocked")
			}

			xcontext.Logger(ctx).Errorf("Cannot get connection: %v", err)
			return nil, errorx.Unknown
		}

		if connection.Status != entity.ConnectionBlocked || connection.FromUserID != actorID {
			return nil, errorx.New(errorx.NotFound, "User is not blocked")
		}

		if err := d.connectionRepo.Delete(ctx, connection.ID, entity.ConnectionBlocked); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "User is not blocked")
			}

			xcontext.Logger(ctx).Errorf("Cannot delete connection: %v", err)
			return nil, errorx.Unknown
		}

		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.UnblockUserResponse{}, nil
}

func (d *connectionDomain) GetList(
	ctx context.Context, req *model.GetConnectionsRequest,
) (*model.GetConnectionsResponse, error) {
	actorID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	offset, limit, err := pagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	filter := repository.GetListConnectionFilter{
		UserID: actorID,
		Offset: offset,
		Limit:  limit,
	}

	if req.Status != "" {
		status, err := enum.ToEnum[entity.ConnectionStatus](req.Status)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid connection status: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Connection status must be one of %s", enum.Join[entity.ConnectionStatus]())
		}

		filter.Status = append(filter.Status, status)
	}

	switch req.Direction {
	case "", "incoming", "outgoing":
		filter.Direction = req.Direction
	default:
		return nil, errorx.New(errorx.BadRequest, "Invalid direction")
	}

	connections, err := d.connectionRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get connection list: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetConnectionsResponse{Connections: []model.Connection{}}
	for i := range connections {
		// A blocked row is only visible to the blocker.
		if connections[i].Status == entity.ConnectionBlocked && connections[i].FromUserID != actorID {
			continue
		}

		resp.Connections = append(resp.Connections, model.ConvertConnection(&connections[i]))
	}

	return resp, nil
}

func (d *connectionDomain) getConnection(ctx context.Context, id string) (*entity.Connection, error) {
	connection, err := d.connectionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found connection")
		}

		xcontext.Logger(ctx).Errorf("Cannot get connection: %v", err)
		return nil, errorx.Unknown
	}

	return connection, nil
}

func (d *connectionDomain) checkUser(ctx context.Context, userID string) error {
	if userID == "" {
		return errorx.New(errorx.BadRequest, "Empty user id")
	}

	if _, err := d.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return errorx.Unknown
	}

	return nil
}
