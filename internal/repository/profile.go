package repository

import (
	"context"
	"time"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/xcontext"
)

// ProfileRepository reads the profile content tables. The content itself is written by the
// profile service.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*entity.Profile, error)
	CountExperiences(ctx context.Context, userID string) (int64, error)
	CountEducations(ctx context.Context, userID string) (int64, error)
	CountSkills(ctx context.Context, userID string) (int64, error)
	GetSkill(ctx context.Context, skillID string) (*entity.Skill, error)

	// GetUserIDsLackingEndorsements returns users owning at least one skill who received no
	// endorsement since the given time.
	GetUserIDsLackingEndorsements(ctx context.Context, since time.Time, afterID string, limit int) ([]string, error)
}

type profileRepository struct{}

func NewProfileRepository() ProfileRepository {
	return &profileRepository{}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*entity.Profile, error) {
	var result entity.Profile
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *profileRepository) CountExperiences(ctx context.Context, userID string) (int64, error) {
	return r.countByUser(ctx, &entity.Experience{}, userID)
}

func (r *profileRepository) CountEducations(ctx context.Context, userID string) (int64, error) {
	return r.countByUser(ctx, &entity.Education{}, userID)
}

func (r *profileRepository) CountSkills(ctx context.Context, userID string) (int64, error) {
	return r.countByUser(ctx, &entity.Skill{}, userID)
}

func (r *profileRepository) countByUser(ctx context.Context, model any, userID string) (int64, error) {
	var result int64
	if err := xcontext.DB(ctx).Model(model).Where("user_id=?", userID).Count(&result).Error; err != nil {
		return 0, err
	}

	return result, nil
}

func (r *profileRepository) GetSkill(ctx context.Context, skillID string) (*entity.Skill, error) {
	var result entity.Skill
	if err := xcontext.DB(ctx).Take(&result, "id=?", skillID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *profileRepository) GetUserIDsLackingEndorsements(
	ctx context.Context, since time.Time, afterID string, limit int,
) ([]string, error) {
	recent := xcontext.DB(ctx).Model(&entity.SkillEndorsement{}).
		Select("skill_owner_id").
		Where("created_at>=?", since)

	var result []string
	err := xcontext.DB(ctx).Model(&entity.Skill{}).
		Distinct("user_id").
		Where("user_id>?", afterID).
		Where("user_id NOT IN (?)", recent).
		Order("user_id ASC").
		Limit(limit).
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
