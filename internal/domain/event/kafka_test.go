package event

import (
	"context"
	"testing"
	"time"

	"github.com/questx-lab/netgraph/pkg/pubsub"
	"github.com/questx-lab/netgraph/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisher(t *testing.T) {
	ctx := testutil.MockContext()

	var topic string
	var pack *pubsub.Pack
	publisher := NewKafkaPublisher(&testutil.MockPublisher{
		PublishFunc: func(ctx context.Context, t string, p *pubsub.Pack) error {
			topic, pack = t, p
			return nil
		},
	}, "graph.mutation")

	ev := New(NewConnectionPayload(ConnectionRequested, "c1", "user1", "user2"), "user1", "c1", "user1", "user2")
	require.NoError(t, publisher.Publish(ctx, ev))
	require.Equal(t, "graph.mutation", topic)
	require.Equal(t, []byte("c1"), pack.Key)
	require.Equal(t, "connection_requested", pack.Headers["event_type"])

	// The worker side restores the event and dispatches it.
	var received []*MutationEvent
	handler := NewSubscribeHandler(publisherFunc(func(ctx context.Context, ev *MutationEvent) error {
		received = append(received, ev)
		return nil
	}))

	handler(ctx, pack, time.Now())
	require.Len(t, received, 1)
	require.Equal(t, ConnectionRequested, received[0].Type)
	require.Equal(t, []string{"user1", "user2"}, received[0].AffectedUserIDs)

	payload := ConnectionPayload{}
	require.NoError(t, received[0].Decode(&payload))
	require.Equal(t, "user2", payload.ToUserID)
}

func TestNewSubscribeHandler_InvalidMessage(t *testing.T) {
	ctx := testutil.MockContext()

	called := false
	handler := NewSubscribeHandler(publisherFunc(func(ctx context.Context, ev *MutationEvent) error {
		called = true
		return nil
	}))

	handler(ctx, &pubsub.Pack{Msg: []byte("not json")}, time.Now())
	handler(ctx, &pubsub.Pack{Msg: []byte(`{"type":"unknown","affected_user_ids":["user1"]}`)}, time.Now())
	handler(ctx, &pubsub.Pack{Msg: []byte(`{"type":"user_created"}`)}, time.Now())
	handler(ctx, &pubsub.Pack{
		Msg:     []byte(`{"type":"user_created","affected_user_ids":["user1"]}`),
		Headers: map[string]string{"event_type": "unknown"},
	}, time.Now())
	require.False(t, called)
}
