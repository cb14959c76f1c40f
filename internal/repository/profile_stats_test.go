package repository

import (
	"testing"
	"time"

	"github.com/questx-lab/netgraph/internal/common"
	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_profileStatsRepository(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertUsers(ctx)
	redisClient, store := memoryRedis()
	statsRepo := NewProfileStatsRepository(redisClient)

	_, err := statsRepo.GetCached(ctx, testutil.User1.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	stats := &entity.ProfileStats{
		UserID:           testutil.User1.ID,
		ConnectionsCount: 1,
		FollowersCount:   2,
		LastUpdated:      time.Now(),
	}
	require.NoError(t, statsRepo.Upsert(ctx, stats))
	require.Contains(t, store, common.RedisKeyProfileStats(testutil.User1.ID))

	stats.FollowersCount = 3
	require.NoError(t, statsRepo.Upsert(ctx, stats))

	got, err := statsRepo.Get(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), got.FollowersCount)
	require.Equal(t, int64(1), got.ConnectionsCount)

	cached, err := statsRepo.GetCached(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.True(t, got.SameCounters(cached))

	// A cache miss falls back to the database and fills the cache again.
	delete(store, common.RedisKeyProfileStats(testutil.User1.ID))
	cached, err = statsRepo.GetCached(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), cached.FollowersCount)
	require.Contains(t, store, common.RedisKeyProfileStats(testutil.User1.ID))
}
