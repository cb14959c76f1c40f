package repository

import (
	"testing"
	"time"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/idutil"
	"github.com/questx-lab/netgraph/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_outboxRepository(t *testing.T) {
	ctx := testutil.MockContext()
	outboxRepo := NewOutboxRepository()

	first := &entity.OutboxEvent{
		SnowFlakeBase: entity.SnowFlakeBase{ID: idutil.NextSnowflake()},
		Type:          "follow_created",
		Data:          []byte(`{}`),
	}
	second := &entity.OutboxEvent{
		SnowFlakeBase: entity.SnowFlakeBase{ID: idutil.NextSnowflake()},
		Type:          "follow_removed",
		Data:          []byte(`{}`),
	}
	require.NoError(t, outboxRepo.Create(ctx, first))
	require.NoError(t, outboxRepo.Create(ctx, second))

	require.NoError(t, outboxRepo.MarkDelivered(ctx, first.ID))
	require.ErrorIs(t, outboxRepo.MarkDelivered(ctx, first.ID), gorm.ErrRecordNotFound)

	require.NoError(t, outboxRepo.IncreaseAttempts(ctx, second.ID))

	undelivered, err := outboxRepo.GetUndelivered(ctx, time.Now().Add(time.Minute), 0, 0, 10)
	require.NoError(t, err)
	require.Len(t, undelivered, 1)
	require.Equal(t, second.ID, undelivered[0].ID)
	require.Equal(t, 1, undelivered[0].Attempts)

	undelivered, err = outboxRepo.GetUndelivered(ctx, time.Now().Add(-time.Minute), 0, 0, 10)
	require.NoError(t, err)
	require.Empty(t, undelivered)

	// Rows which reached the attempt limit are skipped.
	undelivered, err = outboxRepo.GetUndelivered(ctx, time.Now().Add(time.Minute), 1, 0, 10)
	require.NoError(t, err)
	require.Empty(t, undelivered)

	undelivered, err = outboxRepo.GetUndelivered(ctx, time.Now().Add(time.Minute), 2, second.ID, 10)
	require.NoError(t, err)
	require.Empty(t, undelivered)

	// Only rows delivered before the given time are deleted.
	deleted, err := outboxRepo.DeleteDeliveredBefore(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Zero(t, deleted)

	deleted, err = outboxRepo.DeleteDeliveredBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	undelivered, err = outboxRepo.GetUndelivered(ctx, time.Now().Add(time.Minute), 0, 0, 10)
	require.NoError(t, err)
	require.Len(t, undelivered, 1)
}
