package repository

import (
	"context"
	"errors"

	"github.com/questx-lab/netgraph/internal/common"
	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"github.com/questx-lab/netgraph/pkg/xredis"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VisibilityRepository interface {
	// Get returns the stored setting of the user, or the default one if the user never
	// saved it. Nothing is written on this path.
	Get(ctx context.Context, userID string) (*entity.VisibilitySetting, error)
	Upsert(ctx context.Context, data *entity.VisibilitySetting) error
}

type visibilityRepository struct {
	redisClient xredis.Client
}

func NewVisibilityRepository(redisClient xredis.Client) VisibilityRepository {
	return &visibilityRepository{redisClient: redisClient}
}

func (r *visibilityRepository) Get(ctx context.Context, userID string) (*entity.VisibilitySetting, error) {
	ttl := xcontext.Configs(ctx).Visibility.CacheTTL
	return xredis.GetOrLoad(ctx, r.redisClient, common.RedisKeyVisibility(userID), ttl,
		func(ctx context.Context) (*entity.VisibilitySetting, error) {
			var result entity.VisibilitySetting
			err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = entity.DefaultVisibilitySetting(userID)
				return &result, nil
			}

			if err != nil {
				return nil, err
			}

			return &result, nil
		})
}

func (r *visibilityRepository) Upsert(ctx context.Context, data *entity.VisibilitySetting) error {
	err := xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Omit("User").
		Create(data).Error
	if err != nil {
		return err
	}

	xredis.Invalidate(ctx, r.redisClient, common.RedisKeyVisibility(data.UserID))
	return nil
}
