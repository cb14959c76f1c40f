package graphrpc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/netgraph/internal/client"
	"github.com/questx-lab/netgraph/internal/domain"
	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/internal/model"
	"github.com/questx-lab/netgraph/internal/repository"
	"github.com/questx-lab/netgraph/pkg/errorx"
	"github.com/questx-lab/netgraph/pkg/testutil"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type inboundSubscriber struct {
	mutex  sync.Mutex
	events []*event.MutationEvent
}

func (s *inboundSubscriber) Name() string {
	return "inbound"
}

func (s *inboundSubscriber) Handle(_ context.Context, ev *event.MutationEvent) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func newCaller(t *testing.T) (context.Context, client.GraphCaller, *inboundSubscriber) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	userRepo := repository.NewUserRepository()
	connectionRepo := repository.NewConnectionRepository()
	followRepo := repository.NewFollowRepository()
	endorsementRepo := repository.NewEndorsementRepository()
	profileRepo := repository.NewProfileRepository()

	bus := event.NewBus()
	outbox := event.NewOutbox(repository.NewOutboxRepository(), bus)

	policyDomain := domain.NewPolicyDomain(userRepo, repository.NewVisibilityRepository(nil), connectionRepo)
	statsDomain := domain.NewStatsDomain(repository.NewProfileStatsRepository(nil),
		userRepo, connectionRepo, followRepo, endorsementRepo, profileRepo)
	notificationDomain := domain.NewNotificationDomain(repository.NewNotificationRepository(),
		userRepo, connectionRepo, endorsementRepo, profileRepo)

	inbound := &inboundSubscriber{}
	bus.Subscribe(statsDomain, notificationDomain, inbound)

	server := NewServer(ctx,
		policyDomain,
		statsDomain,
		domain.NewConnectionDomain(connectionRepo, followRepo, userRepo, policyDomain, outbox),
		domain.NewFollowDomain(followRepo, userRepo, connectionRepo, outbox),
		domain.NewEndorsementDomain(endorsementRepo, profileRepo, policyDomain, outbox),
		notificationDomain,
		bus,
	)

	rpcServer := rpc.NewServer()
	require.NoError(t, rpcServer.RegisterName(xcontext.Configs(ctx).RPCServer.RPCName, server))
	t.Cleanup(rpcServer.Stop)

	caller := client.NewGraphCaller(rpc.DialInProc(rpcServer))
	t.Cleanup(caller.Close)

	return ctx, caller, inbound
}

func TestServer_ConnectionFlow(t *testing.T) {
	ctx, caller, _ := newCaller(t)

	canView, err := caller.CanView(ctx, testutil.User2.ID, testutil.User1.ID, "experience")
	require.NoError(t, err)
	require.False(t, canView)

	requested, err := caller.RequestConnection(ctx, testutil.User2.ID,
		&model.RequestConnectionRequest{ToUserID: testutil.User1.ID})
	require.NoError(t, err)
	require.Equal(t, "pending", requested.Connection.Status)

	_, err = caller.RequestConnection(ctx, testutil.User1.ID,
		&model.RequestConnectionRequest{ToUserID: testutil.User2.ID})
	require.True(t, errorx.Is(err, errorx.DuplicateEdge), err)

	accepted, err := caller.AcceptConnection(ctx, testutil.User1.ID,
		&model.AcceptConnectionRequest{ConnectionID: requested.Connection.ID})
	require.NoError(t, err)
	require.Equal(t, "accepted", accepted.Connection.Status)

	canView, err = caller.CanView(ctx, testutil.User2.ID, testutil.User1.ID, "experience")
	require.NoError(t, err)
	require.True(t, canView)

	canEndorse, err := caller.CanEndorseSkill(ctx, testutil.User2.ID, testutil.User1.ID)
	require.NoError(t, err)
	require.True(t, canEndorse)

	stats, err := caller.GetStats(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.ConnectionsCount)
	require.Equal(t, 70, stats.ProfileCompleteness)

	require.NoError(t, caller.RemoveConnection(ctx, testutil.User1.ID,
		&model.RemoveConnectionRequest{UserID: testutil.User2.ID}))

	stats, err = caller.GetStats(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.ConnectionsCount)
}

func TestServer_Errors(t *testing.T) {
	ctx, caller, _ := newCaller(t)

	_, err := caller.CanView(ctx, testutil.User2.ID, testutil.User1.ID, "salary")
	require.True(t, errorx.Is(err, errorx.BadRequest), err)

	_, err = caller.RequestConnection(ctx, "", &model.RequestConnectionRequest{ToUserID: testutil.User1.ID})
	require.True(t, errorx.Is(err, errorx.Unauthenticated), err)

	err = caller.Follow(ctx, testutil.User1.ID, &model.FollowRequest{UserID: testutil.User1.ID})
	require.True(t, errorx.Is(err, errorx.SelfReference), err)

	err = caller.Unfollow(ctx, testutil.User1.ID, &model.UnfollowRequest{UserID: testutil.User2.ID})
	require.True(t, errorx.Is(err, errorx.NotFound), err)

	err = caller.CancelConnection(ctx, testutil.User1.ID, &model.CancelConnectionRequest{ConnectionID: "unknown"})
	require.True(t, errorx.Is(err, errorx.NotFound), err)
}

func TestServer_Publish(t *testing.T) {
	ctx, caller, inbound := newCaller(t)

	err := caller.Publish(ctx, &event.MutationEvent{Type: "unknown", AffectedUserIDs: []string{testutil.User1.ID}})
	require.True(t, errorx.Is(err, errorx.BadRequest), err)

	err = caller.Publish(ctx, &event.MutationEvent{
		Type:            event.ContentChanged,
		ActorID:         testutil.User3.ID,
		AffectedUserIDs: []string{testutil.User3.ID},
		Payload:         map[string]any{"user_id": testutil.User3.ID, "section": "profile"},
		OccurredAt:      time.Now(),
	})
	require.NoError(t, err)

	inbound.mutex.Lock()
	defer inbound.mutex.Unlock()
	require.Len(t, inbound.events, 1)
	require.Equal(t, event.ContentChanged, inbound.events[0].Type)

	// The stats subscriber recomputed the affected user.
	stats, err := repository.NewProfileStatsRepository(nil).Get(ctx, testutil.User3.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.User3.ID, stats.UserID)
}
