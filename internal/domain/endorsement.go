package domain

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/internal/model"
	"github.com/questx-lab/netgraph/internal/repository"
	"github.com/questx-lab/netgraph/pkg/errorx"
	"github.com/questx-lab/netgraph/pkg/idutil"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"gorm.io/gorm"
)

type EndorsementDomain interface {
	Endorse(context.Context, *model.EndorseSkillRequest) (*model.EndorseSkillResponse, error)
	Remove(context.Context, *model.RemoveEndorsementRequest) (*model.RemoveEndorsementResponse, error)
}

type endorsementDomain struct {
	endorsementRepo repository.EndorsementRepository
	profileRepo     repository.ProfileRepository
	policy          PolicyDomain
	outbox          *event.Outbox
}

func NewEndorsementDomain(
	endorsementRepo repository.EndorsementRepository,
	profileRepo repository.ProfileRepository,
	policy PolicyDomain,
	outbox *event.Outbox,
) *endorsementDomain {
	return &endorsementDomain{
		endorsementRepo: endorsementRepo,
		profileRepo:     profileRepo,
		policy:          policy,
		outbox:          outbox,
	}
}

func (d *endorsementDomain) Endorse(
	ctx context.Context, req *model.EndorseSkillRequest,
) (*model.EndorseSkillResponse, error) {
	actorID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	if utf8.RuneCountInString(req.Message) > xcontext.Configs(ctx).Connection.MaxMessageLength {
		return nil, errorx.New(errorx.BadRequest, "Message is too long")
	}

	skill, err := d.getSkill(ctx, req.SkillID)
	if err != nil {
		return nil, err
	}

	if skill.UserID == actorID {
		return nil, errorx.New(errorx.SelfReference, "Cannot endorse your own skill")
	}

	endorsement := &entity.SkillEndorsement{
		Base:         entity.Base{ID: idutil.NewUUID()},
		SkillID:      skill.ID,
		EndorserID:   actorID,
		SkillOwnerID: skill.UserID,
		Message:      req.Message,
	}

	err = mutate(ctx, d.outbox, func(ctx context.Context) ([]*event.MutationEvent, error) {
		allowed, err := d.policy.CanEndorseSkill(ctx, actorID, skill.UserID)
		if err != nil {
			return nil, err
		}

		if !allowed {
			return nil, errorx.New(errorx.PolicyDenied, "Cannot endorse skills of this user")
		}

		if err := d.endorsementRepo.Create(ctx, endorsement); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, errorx.New(errorx.DuplicateEdge, "Already endorsed this skill")
			}

			xcontext.Logger(ctx).Errorf("Cannot create endorsement: %v", err)
			return nil, errorx.Unknown
		}

		payload := &event.EndorsementPayload{
			EndorsementID: endorsement.ID,
			SkillID:       skill.ID,
			SkillName:     skill.Name,
			SkillOwnerID:  skill.UserID,
			EndorserID:    actorID,
		}

		return []*event.MutationEvent{event.New(payload, actorID, skill.ID, skill.UserID)}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.EndorseSkillResponse{EndorsementID: endorsement.ID}, nil
}

func (d *endorsementDomain) Remove(
	ctx context.Context, req *model.RemoveEndorsementRequest,
) (*model.RemoveEndorsementResponse, error) {
	actorID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	skill, err := d.getSkill(ctx, req.SkillID)
	if err != nil {
		return nil, err
	}

	err = mutate(ctx, d.outbox, func(ctx context.Context) ([]*event.MutationEvent, error) {
		if err := d.endorsementRepo.Delete(ctx, skill.ID, actorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "Not found endorsement")
			}

			xcontext.Logger(ctx).Errorf("Cannot delete endorsement: %v", err)
			return nil, errorx.Unknown
		}

		payload := &event.EndorsementPayload{
			SkillID:      skill.ID,
			SkillName:    skill.Name,
			SkillOwnerID: skill.UserID,
			EndorserID:   actorID,
			Removed:      true,
		}

		return []*event.MutationEvent{event.New(payload, actorID, skill.ID, skill.UserID)}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.RemoveEndorsementResponse{}, nil
}

func (d *endorsementDomain) getSkill(ctx context.Context, skillID string) (*entity.Skill, error) {
	if skillID == "" {
		return nil, errorx.New(errorx.BadRequest, "Empty skill id")
	}

	skill, err := d.profileRepo.GetSkill(ctx, skillID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found skill")
		}

		xcontext.Logger(ctx).Errorf("Cannot get skill: %v", err)
		return nil, errorx.Unknown
	}

	return skill, nil
}
