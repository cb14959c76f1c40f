package repository

import (
	"testing"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_followRepository(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertUsers(ctx)
	followRepo := NewFollowRepository()

	require.NoError(t, followRepo.Create(ctx, &entity.Follow{
		FollowerID:  testutil.User1.ID,
		FollowingID: testutil.User2.ID,
	}))
	require.NoError(t, followRepo.Create(ctx, &entity.Follow{
		FollowerID:  testutil.User3.ID,
		FollowingID: testutil.User2.ID,
	}))

	err := followRepo.Create(ctx, &entity.Follow{
		FollowerID:  testutil.User1.ID,
		FollowingID: testutil.User2.ID,
	})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	exists, err := followRepo.Exists(ctx, testutil.User1.ID, testutil.User2.ID)
	require.NoError(t, err)
	require.True(t, exists)

	// Follows are directed.
	exists, err = followRepo.Exists(ctx, testutil.User2.ID, testutil.User1.ID)
	require.NoError(t, err)
	require.False(t, exists)

	followers, err := followRepo.CountFollowers(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), followers)

	following, err := followRepo.CountFollowing(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), following)

	require.NoError(t, followRepo.Delete(ctx, testutil.User1.ID, testutil.User2.ID))
	require.ErrorIs(t, followRepo.Delete(ctx, testutil.User1.ID, testutil.User2.ID), gorm.ErrRecordNotFound)

	_, err = followRepo.Get(ctx, testutil.User1.ID, testutil.User2.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	followers, err = followRepo.CountFollowers(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), followers)
}
