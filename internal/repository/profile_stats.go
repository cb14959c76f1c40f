package repository

import (
	"context"

	"github.com/questx-lab/netgraph/internal/common"
	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"github.com/questx-lab/netgraph/pkg/xredis"
	"gorm.io/gorm/clause"
)

type ProfileStatsRepository interface {
	Get(ctx context.Context, userID string) (*entity.ProfileStats, error)
	GetCached(ctx context.Context, userID string) (*entity.ProfileStats, error)
	Upsert(ctx context.Context, data *entity.ProfileStats) error
}

type profileStatsRepository struct {
	redisClient xredis.Client
}

func NewProfileStatsRepository(redisClient xredis.Client) ProfileStatsRepository {
	return &profileStatsRepository{redisClient: redisClient}
}

func (r *profileStatsRepository) Get(ctx context.Context, userID string) (*entity.ProfileStats, error) {
	var result entity.ProfileStats
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetCached reads the stats from redis, then from the database. The database result is
// cached for the configured TTL.
func (r *profileStatsRepository) GetCached(ctx context.Context, userID string) (*entity.ProfileStats, error) {
	return xredis.GetOrLoad(ctx, r.redisClient, common.RedisKeyProfileStats(userID),
		xcontext.Configs(ctx).Stats.CacheTTL, func(ctx context.Context) (*entity.ProfileStats, error) {
			return r.Get(ctx, userID)
		})
}

func (r *profileStatsRepository) Upsert(ctx context.Context, data *entity.ProfileStats) error {
	err := xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"connections_count":    data.ConnectionsCount,
				"followers_count":      data.FollowersCount,
				"following_count":      data.FollowingCount,
				"endorsements_count":   data.EndorsementsCount,
				"profile_completeness": data.ProfileCompleteness,
				"last_updated":         data.LastUpdated,
			}),
		}).
		Omit("User").
		Create(data).Error
	if err != nil {
		return err
	}

	xredis.Store(ctx, r.redisClient, common.RedisKeyProfileStats(data.UserID), data,
		xcontext.Configs(ctx).Stats.CacheTTL)
	return nil
}
