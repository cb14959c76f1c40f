package migration_test

import (
	"testing"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/migration"
	"github.com/questx-lab/netgraph/pkg/testutil"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func TestMigrate0001(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertUsers(ctx)
	require.NoError(t, testutil.SaveVisibility(ctx, testutil.User1.ID, func(s *entity.VisibilitySetting) {
		s.OverallVisibility = entity.VisibilityPublic
	}))

	affected, err := migration.Migrators["0001"](ctx)
	require.NoError(t, err)
	require.Empty(t, affected)

	var settings []entity.VisibilitySetting
	require.NoError(t, xcontext.DB(ctx).Order("user_id ASC").Find(&settings).Error)
	require.Len(t, settings, len(testutil.Users))

	// Stored settings are kept.
	require.Equal(t, entity.VisibilityPublic, settings[0].OverallVisibility)
	require.Equal(t, entity.VisibilityConnectionsOnly, settings[1].OverallVisibility)

	// Running again changes nothing.
	_, err = migration.Migrators["0001"](ctx)
	require.NoError(t, err)
}

func TestMigrate0002(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertUsers(ctx)

	_, err := testutil.SampleConnection(ctx, &entity.Connection{Status: entity.ConnectionBlocked})
	require.NoError(t, err)

	for _, pair := range [][2]string{
		{testutil.User1.ID, testutil.User2.ID},
		{testutil.User2.ID, testutil.User1.ID},
		{testutil.User3.ID, testutil.User1.ID},
	} {
		_, err := testutil.SampleFollow(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	affected, err := migration.Migrators["0002"](ctx)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.User1.ID, testutil.User2.ID}, affected)

	var follows []entity.Follow
	require.NoError(t, xcontext.DB(ctx).Find(&follows).Error)
	require.Len(t, follows, 1)
	require.Equal(t, testutil.User3.ID, follows[0].FollowerID)

	// Nothing left to delete, nobody to recompute.
	affected, err = migration.Migrators["0002"](ctx)
	require.NoError(t, err)
	require.Empty(t, affected)
}
