package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/internal/model"
	"github.com/questx-lab/netgraph/internal/repository"
	"github.com/questx-lab/netgraph/pkg/errorx"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"gorm.io/gorm"
)

type FollowDomain interface {
	Follow(context.Context, *model.FollowRequest) (*model.FollowResponse, error)
	Unfollow(context.Context, *model.UnfollowRequest) (*model.UnfollowResponse, error)
}

type followDomain struct {
	followRepo     repository.FollowRepository
	userRepo       repository.UserRepository
	connectionRepo repository.ConnectionRepository
	outbox         *event.Outbox
}

func NewFollowDomain(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	connectionRepo repository.ConnectionRepository,
	outbox *event.Outbox,
) *followDomain {
	return &followDomain{
		followRepo:     followRepo,
		userRepo:       userRepo,
		connectionRepo: connectionRepo,
		outbox:         outbox,
	}
}

func (d *followDomain) Follow(
	ctx context.Context, req *model.FollowRequest,
) (*model.FollowResponse, error) {
	actorID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	if req.UserID == actorID {
		return nil, errorx.New(errorx.SelfReference, "Cannot follow yourself")
	}

	if _, err := d.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	err = mutate(ctx, d.outbox, func(ctx context.Context) ([]*event.MutationEvent, error) {
		connection, err := d.connectionRepo.GetByPair(ctx, actorID, req.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get connection: %v", err)
			return nil, errorx.Unknown
		}

		if connection != nil && connection.Status == entity.ConnectionBlocked {
			return nil, errorx.New(errorx.PolicyDenied, "Cannot follow this user")
		}

		exists, err := d.followRepo.Exists(ctx, actorID, req.UserID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check follow: %v", err)
			return nil, errorx.Unknown
		}

		if exists {
			return nil, errorx.New(errorx.DuplicateEdge, "Already followed")
		}

		follow := &entity.Follow{FollowerID: actorID, FollowingID: req.UserID}
		if err := d.followRepo.Create(ctx, follow); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, errorx.New(errorx.DuplicateEdge, "Already followed")
			}

			xcontext.Logger(ctx).Errorf("Cannot create follow: %v", err)
			return nil, errorx.Unknown
		}

		payload := &event.FollowPayload{FollowerID: actorID, FollowingID: req.UserID}
		return []*event.MutationEvent{event.New(payload, actorID, req.UserID, actorID, req.UserID)}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.FollowResponse{}, nil
}

func (d *followDomain) Unfollow(
	ctx context.Context, req *model.UnfollowRequest,
) (*model.UnfollowResponse, error) {
	actorID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	if req.UserID == actorID {
		return nil, errorx.New(errorx.SelfReference, "Cannot unfollow yourself")
	}

	err = mutate(ctx, d.outbox, func(ctx context.Context) ([]*event.MutationEvent, error) {
		if err := d.followRepo.Delete(ctx, actorID, req.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "Not followed yet")
			}

			xcontext.Logger(ctx).Errorf("Cannot delete follow: %v", err)
			return nil, errorx.Unknown
		}

		payload := &event.FollowPayload{FollowerID: actorID, FollowingID: req.UserID, Removed: true}
		return []*event.MutationEvent{event.New(payload, actorID, req.UserID, actorID, req.UserID)}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.UnfollowResponse{}, nil
}
