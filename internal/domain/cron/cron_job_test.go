package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/questx-lab/netgraph/internal/domain"
	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/internal/repository"
	"github.com/questx-lab/netgraph/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runNow bool
	next   time.Duration
	count  atomic.Int32
}

func (job *countingJob) Do(context.Context) {
	job.count.Add(1)
}

func (job *countingJob) RunNow() bool {
	return job.runNow
}

func (job *countingJob) Next() time.Time {
	return time.Now().Add(job.next)
}

func TestCronJobManager(t *testing.T) {
	ctx := testutil.MockContext()

	immediate := &countingJob{runNow: true, next: time.Hour}
	repeated := &countingJob{next: 10 * time.Millisecond}
	later := &countingJob{next: time.Hour}

	manager := NewCronJobManager()
	manager.Register(immediate, repeated, later)

	stopped := make(chan struct{})
	go func() {
		manager.Start(ctx)
		close(stopped)
	}()

	require.Eventually(t, func() bool {
		return immediate.count.Load() == 1 && repeated.count.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	manager.Cancel(ctx)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		require.FailNow(t, "manager did not stop")
	}

	require.Equal(t, int32(0), later.count.Load())
}

func TestExpirePendingConnectionCronJob(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	old, err := testutil.SampleConnection(ctx, &entity.Connection{
		CreatedAt: time.Now().Add(-60 * 24 * time.Hour),
	})
	require.NoError(t, err)

	fresh, err := testutil.SampleConnection(ctx, &entity.Connection{
		FromUserID: testutil.User3.ID,
		ToUserID:   testutil.User1.ID,
	})
	require.NoError(t, err)

	accepted, err := testutil.SampleConnection(ctx, &entity.Connection{
		FromUserID: testutil.User4.ID,
		ToUserID:   testutil.User1.ID,
		Status:     entity.ConnectionAccepted,
		CreatedAt:  time.Now().Add(-60 * 24 * time.Hour),
	})
	require.NoError(t, err)

	connectionRepo := repository.NewConnectionRepository()
	NewExpirePendingConnectionCronJob(connectionRepo).Do(ctx)

	_, err = connectionRepo.GetByID(ctx, old.ID)
	require.Error(t, err)

	_, err = connectionRepo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)

	_, err = connectionRepo.GetByID(ctx, accepted.ID)
	require.NoError(t, err)
}

func TestReconcileStatsCronJob(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	_, err := testutil.SampleFollow(ctx, testutil.User2.ID, testutil.User1.ID)
	require.NoError(t, err)

	statsRepo := repository.NewProfileStatsRepository(nil)
	statsDomain := domain.NewStatsDomain(
		statsRepo,
		repository.NewUserRepository(),
		repository.NewConnectionRepository(),
		repository.NewFollowRepository(),
		repository.NewEndorsementRepository(),
		repository.NewProfileRepository(),
	)

	job := NewReconcileStatsCronJob(statsDomain, time.Hour)
	require.False(t, job.RunNow())
	require.True(t, job.Next().After(time.Now()))

	job.Do(ctx)

	stats, err := statsRepo.Get(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.FollowersCount)
	require.Equal(t, 70, stats.ProfileCompleteness)
}

func TestRedeliverOutboxCronJob(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	var delivered []*event.MutationEvent
	bus := event.NewBus()
	outboxRepo := repository.NewOutboxRepository()
	outbox := event.NewOutbox(outboxRepo, bus)

	recorder := &recordingSubscriber{handle: func(ev *event.MutationEvent) {
		delivered = append(delivered, ev)
	}}
	bus.Subscribe(recorder)

	// A staged event whose delivery never happened, as after a crash.
	ev := event.New(&event.FollowPayload{FollowerID: testutil.User1.ID, FollowingID: testutil.User2.ID},
		testutil.User1.ID, testutil.User2.ID, testutil.User1.ID, testutil.User2.ID)
	_, err := outbox.Stage(ctx, ev)
	require.NoError(t, err)

	job := NewRedeliverOutboxCronJob(outbox, time.Minute)
	job.Do(ctx)
	require.Len(t, delivered, 1)
	require.Equal(t, event.FollowCreated, delivered[0].Type)

	// Delivered rows are not published twice.
	job.Do(ctx)
	require.Len(t, delivered, 1)
}

type recordingSubscriber struct {
	handle func(*event.MutationEvent)
}

func (s *recordingSubscriber) Name() string {
	return "recording"
}

func (s *recordingSubscriber) Handle(_ context.Context, ev *event.MutationEvent) error {
	s.handle(ev)
	return nil
}

func TestCleanupOutboxCronJob(t *testing.T) {
	ctx := testutil.MockContext()
	outbox := event.NewOutbox(repository.NewOutboxRepository(), event.NewBus())

	record, err := outbox.Stage(ctx, event.New(&event.UserPayload{UserID: testutil.User1.ID},
		testutil.User1.ID, testutil.User1.ID, testutil.User1.ID))
	require.NoError(t, err)
	outbox.Deliver(ctx, record)

	job := NewCleanupOutboxCronJob(outbox)
	require.False(t, job.RunNow())
	require.True(t, job.Next().After(time.Now()))

	// Delivered just now, kept within the retention.
	job.Do(ctx)

	var count int64
	require.NoError(t, testutil.CountRows(ctx, &entity.OutboxEvent{}, &count))
	require.Equal(t, int64(1), count)
}

func TestConnectionSuggestionCronJob(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	for _, pair := range [][2]string{
		{testutil.User1.ID, testutil.User2.ID},
		{testutil.User2.ID, testutil.User3.ID},
	} {
		_, err := testutil.SampleConnection(ctx, &entity.Connection{
			FromUserID: pair[0],
			ToUserID:   pair[1],
			Status:     entity.ConnectionAccepted,
		})
		require.NoError(t, err)
	}

	notificationRepo := repository.NewNotificationRepository()
	notificationDomain := domain.NewNotificationDomain(
		notificationRepo,
		repository.NewUserRepository(),
		repository.NewConnectionRepository(),
		repository.NewEndorsementRepository(),
		repository.NewProfileRepository(),
	)

	job := NewConnectionSuggestionCronJob(notificationDomain)
	require.False(t, job.RunNow())
	job.Do(ctx)

	list, err := notificationRepo.GetList(ctx, testutil.User1.ID, true, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, entity.NotificationSuggestion, list[0].Type)
	require.Equal(t, testutil.User3.ID, list[0].SubjectID)
}
