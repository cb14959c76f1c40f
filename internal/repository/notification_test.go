package repository

import (
	"testing"
	"time"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/dateutil"
	"github.com/questx-lab/netgraph/pkg/idutil"
	"github.com/questx-lab/netgraph/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newNotification(recipientID, subjectID string) *entity.Notification {
	return &entity.Notification{
		SnowFlakeBase: entity.SnowFlakeBase{ID: idutil.NextSnowflake()},
		RecipientID:   recipientID,
		Type:          entity.NotificationNewFollower,
		SubjectID:     subjectID,
		Title:         "title",
		Data:          entity.Map{"user_id": subjectID},
	}
}

func Test_notificationRepository(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertUsers(ctx)
	notificationRepo := NewNotificationRepository()

	first := newNotification(testutil.User1.ID, testutil.User2.ID)
	require.NoError(t, notificationRepo.Create(ctx, first))
	require.NoError(t, notificationRepo.Create(ctx, newNotification(testutil.User1.ID, testutil.User3.ID)))
	require.NoError(t, notificationRepo.Create(ctx, newNotification(testutil.User2.ID, testutil.User3.ID)))

	today := dateutil.Date(time.Now())
	exists, err := notificationRepo.ExistsUnreadSince(
		ctx, testutil.User1.ID, entity.NotificationNewFollower, testutil.User2.ID, today)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = notificationRepo.ExistsUnreadSince(
		ctx, testutil.User1.ID, entity.NotificationConnectionRequest, testutil.User2.ID, today)
	require.NoError(t, err)
	require.False(t, exists)

	unread, err := notificationRepo.CountUnread(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), unread)

	count, err := notificationRepo.CountSince(ctx, testutil.User1.ID, entity.NotificationNewFollower, today)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	count, err = notificationRepo.CountSince(ctx, testutil.User1.ID, entity.NotificationSuggestion, today)
	require.NoError(t, err)
	require.Zero(t, count)

	count, err = notificationRepo.CountSince(
		ctx, testutil.User1.ID, entity.NotificationNewFollower, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Zero(t, count)

	// Only the recipient can mark a notification.
	require.ErrorIs(t, notificationRepo.MarkRead(ctx, testutil.User2.ID, first.ID), gorm.ErrRecordNotFound)
	require.NoError(t, notificationRepo.MarkRead(ctx, testutil.User1.ID, first.ID))

	// A read notification does not prevent a new one.
	exists, err = notificationRepo.ExistsUnreadSince(
		ctx, testutil.User1.ID, entity.NotificationNewFollower, testutil.User2.ID, today)
	require.NoError(t, err)
	require.False(t, exists)

	list, err := notificationRepo.GetList(ctx, testutil.User1.ID, true, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, testutil.User3.ID, list[0].SubjectID)

	list, err = notificationRepo.GetList(ctx, testutil.User1.ID, false, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	updated, err := notificationRepo.MarkAllRead(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), updated)

	deleted, err := notificationRepo.DeleteReadBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	unread, err = notificationRepo.CountUnread(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)
}
