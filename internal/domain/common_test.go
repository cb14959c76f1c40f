package domain

import (
	"context"
	"sync"
	"testing"

	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/internal/repository"
	"github.com/questx-lab/netgraph/pkg/errorx"
	"github.com/questx-lab/netgraph/pkg/testutil"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

// eventRecorder keeps every event dispatched by the bus.
type eventRecorder struct {
	mutex  sync.Mutex
	events []*event.MutationEvent
}

func (r *eventRecorder) Name() string {
	return "recorder"
}

func (r *eventRecorder) Handle(ctx context.Context, ev *event.MutationEvent) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *eventRecorder) Types() []event.Type {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	types := make([]event.Type, 0, len(r.events))
	for _, ev := range r.events {
		types = append(types, ev.Type)
	}

	return types
}

func (r *eventRecorder) Last() *event.MutationEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(r.events) == 0 {
		return nil
	}

	return r.events[len(r.events)-1]
}

func (r *eventRecorder) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = nil
}

// testGraph wires every domain on a fixture database with an in-process bus.
type testGraph struct {
	ctx      context.Context
	bus      *event.Bus
	recorder *eventRecorder

	connectionRepo repository.ConnectionRepository
	followRepo     repository.FollowRepository
	statsRepo      repository.ProfileStatsRepository

	policyDomain       PolicyDomain
	statsDomain        StatsDomain
	connectionDomain   ConnectionDomain
	followDomain       FollowDomain
	endorsementDomain  EndorsementDomain
	notificationDomain NotificationDomain
}

func newTestGraph() *testGraph {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	userRepo := repository.NewUserRepository()
	connectionRepo := repository.NewConnectionRepository()
	followRepo := repository.NewFollowRepository()
	visibilityRepo := repository.NewVisibilityRepository(nil)
	statsRepo := repository.NewProfileStatsRepository(nil)
	notificationRepo := repository.NewNotificationRepository()
	profileRepo := repository.NewProfileRepository()
	endorsementRepo := repository.NewEndorsementRepository()
	outboxRepo := repository.NewOutboxRepository()

	bus := event.NewBus()
	outbox := event.NewOutbox(outboxRepo, bus)

	g := &testGraph{
		ctx:            ctx,
		bus:            bus,
		recorder:       &eventRecorder{},
		connectionRepo: connectionRepo,
		followRepo:     followRepo,
		statsRepo:      statsRepo,
	}

	g.policyDomain = NewPolicyDomain(userRepo, visibilityRepo, connectionRepo)
	g.statsDomain = NewStatsDomain(statsRepo, userRepo, connectionRepo, followRepo, endorsementRepo, profileRepo)
	g.notificationDomain = NewNotificationDomain(notificationRepo, userRepo, connectionRepo, endorsementRepo, profileRepo)
	g.connectionDomain = NewConnectionDomain(connectionRepo, followRepo, userRepo, g.policyDomain, outbox)
	g.followDomain = NewFollowDomain(followRepo, userRepo, connectionRepo, outbox)
	g.endorsementDomain = NewEndorsementDomain(endorsementRepo, profileRepo, g.policyDomain, outbox)

	bus.Subscribe(g.statsDomain, g.notificationDomain, g.recorder)
	return g
}

// as returns a context acting as the given user.
func (g *testGraph) as(userID string) context.Context {
	return testutil.WithUserID(g.ctx, userID)
}

func (g *testGraph) connect(t *testing.T, from, to string) *entity.Connection {
	c, err := testutil.SampleConnection(g.ctx, &entity.Connection{
		FromUserID: from,
		ToUserID:   to,
		Status:     entity.ConnectionAccepted,
	})
	require.NoError(t, err)
	return &c
}

func (g *testGraph) setVisibility(t *testing.T, userID string, modify func(*entity.VisibilitySetting)) {
	require.NoError(t, testutil.SaveVisibility(g.ctx, userID, modify))
}

func (g *testGraph) storedStats(t *testing.T, userID string) *entity.ProfileStats {
	stats, err := g.statsRepo.Get(g.ctx, userID)
	require.NoError(t, err)
	return stats
}

func (g *testGraph) countConnections(t *testing.T) int64 {
	var count int64
	require.NoError(t, xcontext.DB(g.ctx).Model(&entity.Connection{}).Count(&count).Error)
	return count
}

func requireErrorCode(t *testing.T, err error, code errorx.Code) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errorx.Is(err, code), "want code %d, got %v", code, err)
}

func Test_pagination(t *testing.T) {
	ctx := testutil.MockContext()

	tests := []struct {
		name       string
		offset     int
		limit      int
		wantOffset int
		wantLimit  int
		wantErr    bool
	}{
		{name: "default limit", offset: 0, limit: 0, wantOffset: 0, wantLimit: 2},
		{name: "custom", offset: 4, limit: 10, wantOffset: 4, wantLimit: 10},
		{name: "negative offset", offset: -1, limit: 10, wantErr: true},
		{name: "negative limit", offset: 0, limit: -1, wantErr: true},
		{name: "exceed max limit", offset: 0, limit: 51, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit, err := pagination(ctx, tt.offset, tt.limit)
			if tt.wantErr {
				requireErrorCode(t, err, errorx.BadRequest)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantOffset, offset)
			require.Equal(t, tt.wantLimit, limit)
		})
	}
}

func Test_mutate_Rollback(t *testing.T) {
	g := newTestGraph()

	err := mutate(g.ctx, event.NewOutbox(repository.NewOutboxRepository(), g.bus),
		func(ctx context.Context) ([]*event.MutationEvent, error) {
			if err := g.followRepo.Create(ctx, &entity.Follow{
				FollowerID:  testutil.User1.ID,
				FollowingID: testutil.User2.ID,
			}); err != nil {
				return nil, err
			}

			return nil, errorx.New(errorx.PolicyDenied, "denied")
		})
	requireErrorCode(t, err, errorx.PolicyDenied)

	exists, err := g.followRepo.Exists(g.ctx, testutil.User1.ID, testutil.User2.ID)
	require.NoError(t, err)
	require.False(t, exists)
	require.Empty(t, g.recorder.Types())
}
