package domain

import (
	"context"
	"errors"
	"strconv"

	"github.com/questx-lab/netgraph/internal/common"
	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/internal/model"
	"github.com/questx-lab/netgraph/internal/repository"
	"github.com/questx-lab/netgraph/pkg/enum"
	"github.com/questx-lab/netgraph/pkg/errorx"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// PolicyDomain is the only place deciding whether a user may see or act on the data of
// another user. Decisions never write and take no lock.
type PolicyDomain interface {
	CanView(ctx context.Context, viewerID, ownerID string, scope entity.Scope) (bool, error)
	CanSendConnectionRequest(ctx context.Context, senderID, recipientID string) (bool, error)
	CanEndorseSkill(ctx context.Context, endorserID, ownerID string) (bool, error)
	CanSendMessage(ctx context.Context, senderID, recipientID string) (bool, error)

	// CheckConnectionRequest returns why sender cannot request recipient, or the existing
	// declined connection of the pair (nil if none) which a new request replaces.
	CheckConnectionRequest(ctx context.Context, senderID, recipientID string) (*entity.Connection, error)

	GetVisibility(context.Context, *model.GetVisibilityRequest) (*model.GetVisibilityResponse, error)
	UpdateVisibility(context.Context, *model.UpdateVisibilityRequest) (*model.UpdateVisibilityResponse, error)
}

type policyDomain struct {
	userRepo       repository.UserRepository
	visibilityRepo repository.VisibilityRepository
	connectionRepo repository.ConnectionRepository
}

func NewPolicyDomain(
	userRepo repository.UserRepository,
	visibilityRepo repository.VisibilityRepository,
	connectionRepo repository.ConnectionRepository,
) *policyDomain {
	return &policyDomain{
		userRepo:       userRepo,
		visibilityRepo: visibilityRepo,
		connectionRepo: connectionRepo,
	}
}

func (d *policyDomain) CanView(
	ctx context.Context, viewerID, ownerID string, scope entity.Scope,
) (allowed bool, err error) {
	defer d.record("can_view", &allowed, &err)

	if viewerID != "" && viewerID == ownerID {
		return true, nil
	}

	isAdmin, err := d.isAdmin(ctx, viewerID)
	if err != nil {
		return false, err
	}

	if isAdmin {
		return true, nil
	}

	setting, err := d.getVisibility(ctx, ownerID)
	if err != nil {
		return false, err
	}

	switch setting.OverallVisibility {
	case entity.VisibilityPrivate:
		return false, nil

	case entity.VisibilityConnectionsOnly:
		connected, err := d.isConnected(ctx, viewerID, ownerID)
		if err != nil {
			return false, err
		}

		if !connected {
			return false, nil
		}
	}

	return setting.ScopeAllowed(scope), nil
}

func (d *policyDomain) CanSendConnectionRequest(
	ctx context.Context, senderID, recipientID string,
) (allowed bool, err error) {
	defer d.record("can_send_connection_request", &allowed, &err)

	_, err = d.CheckConnectionRequest(ctx, senderID, recipientID)
	if err != nil {
		if errorx.Is(err, errorx.Unknown.Code) {
			return false, err
		}

		return false, nil
	}

	return true, nil
}

func (d *policyDomain) CheckConnectionRequest(
	ctx context.Context, senderID, recipientID string,
) (*entity.Connection, error) {
	if senderID == recipientID {
		return nil, errorx.New(errorx.SelfReference, "Cannot connect to yourself")
	}

	setting, err := d.getVisibility(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	if !setting.Connectable {
		return nil, errorx.New(errorx.PolicyDenied, "User does not accept connection requests")
	}

	connection, err := d.connectionRepo.GetByPair(ctx, senderID, recipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get connection: %v", err)
		return nil, errorx.Unknown
	}

	switch connection.Status {
	case entity.ConnectionBlocked:
		return nil, errorx.New(errorx.PolicyDenied, "Cannot connect to this user")
	case entity.ConnectionPending:
		return nil, errorx.New(errorx.DuplicateEdge, "A connection request already exists")
	case entity.ConnectionAccepted:
		return nil, errorx.New(errorx.DuplicateEdge, "Already connected")
	}

	// A declined request does not prevent a new one.
	return connection, nil
}

func (d *policyDomain) CanEndorseSkill(
	ctx context.Context, endorserID, ownerID string,
) (allowed bool, err error) {
	defer d.record("can_endorse_skill", &allowed, &err)

	if endorserID == ownerID {
		return false, nil
	}

	setting, err := d.getVisibility(ctx, ownerID)
	if err != nil {
		return false, err
	}

	if !setting.Endorsable {
		return false, nil
	}

	if setting.OverallVisibility != entity.VisibilityPublic {
		return d.isConnected(ctx, endorserID, ownerID)
	}

	return true, nil
}

func (d *policyDomain) CanSendMessage(
	ctx context.Context, senderID, recipientID string,
) (allowed bool, err error) {
	defer d.record("can_send_message", &allowed, &err)

	if senderID == recipientID {
		return false, nil
	}

	setting, err := d.getVisibility(ctx, recipientID)
	if err != nil {
		return false, err
	}

	if setting.Messageable {
		return true, nil
	}

	return d.isConnected(ctx, senderID, recipientID)
}

func (d *policyDomain) GetVisibility(
	ctx context.Context, req *model.GetVisibilityRequest,
) (*model.GetVisibilityResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	setting, err := d.getVisibility(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := model.GetVisibilityResponse(model.ConvertVisibilitySetting(setting))
	return &resp, nil
}

func (d *policyDomain) UpdateVisibility(
	ctx context.Context, req *model.UpdateVisibilityRequest,
) (*model.UpdateVisibilityResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	visibility, err := enum.ToEnum[entity.Visibility](req.OverallVisibility)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid overall visibility: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Overall visibility must be one of %s", enum.Join[entity.Visibility]())
	}

	setting := &entity.VisibilitySetting{
		UserID:            userID,
		OverallVisibility: visibility,
		Contact:           req.Contact,
		Experience:        req.Experience,
		Education:         req.Education,
		Skills:            req.Skills,
		Projects:          req.Projects,
		Achievements:      req.Achievements,
		Publications:      req.Publications,
		Volunteer:         req.Volunteer,
		Endorsable:        req.Endorsable,
		Messageable:       req.Messageable,
		Connectable:       req.Connectable,
	}

	if err := d.visibilityRepo.Upsert(ctx, setting); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update visibility setting: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateVisibilityResponse{}, nil
}

func (d *policyDomain) isAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return false, errorx.Unknown
	}

	return slices.Contains(entity.GlobalAdminRoles, user.Role), nil
}

func (d *policyDomain) getVisibility(ctx context.Context, userID string) (*entity.VisibilitySetting, error) {
	setting, err := d.visibilityRepo.Get(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get visibility setting: %v", err)
		return nil, errorx.Unknown
	}

	return setting, nil
}

func (d *policyDomain) isConnected(ctx context.Context, userA, userB string) (bool, error) {
	if userA == "" || userB == "" {
		return false, nil
	}

	connected, err := d.connectionRepo.HasAccepted(ctx, userA, userB)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check accepted connection: %v", err)
		return false, errorx.Unknown
	}

	return connected, nil
}

func (d *policyDomain) record(check string, allowed *bool, err *error) {
	if *err != nil {
		return
	}

	common.PromCounters[common.PolicyDecisionTotal].WithLabelValues(check, strconv.FormatBool(*allowed)).Inc()
}
