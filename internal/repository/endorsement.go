package repository

import (
	"context"
	"time"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"gorm.io/gorm"
)

type EndorsementRepository interface {
	Create(ctx context.Context, data *entity.SkillEndorsement) error
	Get(ctx context.Context, skillID, endorserID string) (*entity.SkillEndorsement, error)
	Delete(ctx context.Context, skillID, endorserID string) error
	CountReceived(ctx context.Context, ownerID string) (int64, error)
	HasEndorsedSince(ctx context.Context, ownerID, endorserID string, since time.Time) (bool, error)
}

type endorsementRepository struct{}

func NewEndorsementRepository() EndorsementRepository {
	return &endorsementRepository{}
}

func (r *endorsementRepository) Create(ctx context.Context, data *entity.SkillEndorsement) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *endorsementRepository) Get(
	ctx context.Context, skillID, endorserID string,
) (*entity.SkillEndorsement, error) {
	var result entity.SkillEndorsement
	err := xcontext.DB(ctx).
		Take(&result, "skill_id=? AND endorser_id=?", skillID, endorserID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *endorsementRepository) Delete(ctx context.Context, skillID, endorserID string) error {
	tx := xcontext.DB(ctx).
		Where("skill_id=? AND endorser_id=?", skillID, endorserID).
		Delete(&entity.SkillEndorsement{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *endorsementRepository) CountReceived(ctx context.Context, ownerID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.SkillEndorsement{}).
		Where("skill_owner_id=?", ownerID).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *endorsementRepository) HasEndorsedSince(
	ctx context.Context, ownerID, endorserID string, since time.Time,
) (bool, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.SkillEndorsement{}).
		Where("skill_owner_id=? AND endorser_id=? AND created_at>=?", ownerID, endorserID, since).
		Count(&result).Error
	if err != nil {
		return false, err
	}

	return result > 0, nil
}
