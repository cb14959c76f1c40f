package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/questx-lab/netgraph/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type mockSubscriber struct {
	name       string
	HandleFunc func(ctx context.Context, ev *MutationEvent) error

	mutex  sync.Mutex
	calls  int
	events []*MutationEvent
}

func (s *mockSubscriber) Name() string {
	return s.name
}

func (s *mockSubscriber) Handle(ctx context.Context, ev *MutationEvent) error {
	s.mutex.Lock()
	s.calls++
	s.events = append(s.events, ev)
	s.mutex.Unlock()

	if s.HandleFunc != nil {
		return s.HandleFunc(ctx, ev)
	}

	return nil
}

func (s *mockSubscriber) Calls() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.calls
}

func TestBus_Publish_Retry(t *testing.T) {
	ctx := testutil.MockContext()
	bus := NewBus()

	failures := 2
	flaky := &mockSubscriber{
		name: "flaky",
		HandleFunc: func(ctx context.Context, ev *MutationEvent) error {
			if failures > 0 {
				failures--
				return errors.New("temporary failure")
			}

			return nil
		},
	}
	bus.Subscribe(flaky)

	ev := New(&UserPayload{UserID: "user1"}, "user1", "user1", "user1")
	require.NoError(t, bus.Publish(ctx, ev))
	require.Equal(t, 3, flaky.Calls())
}

func TestBus_Publish_Isolation(t *testing.T) {
	ctx := testutil.MockContext()
	bus := NewBus()

	broken := &mockSubscriber{
		name: "broken",
		HandleFunc: func(ctx context.Context, ev *MutationEvent) error {
			return errors.New("permanent failure")
		},
	}
	panicking := &mockSubscriber{
		name: "panicking",
		HandleFunc: func(ctx context.Context, ev *MutationEvent) error {
			panic("unexpected")
		},
	}
	healthy := &mockSubscriber{name: "healthy"}
	bus.Subscribe(broken, panicking, healthy)

	ev := New(&ContentPayload{UserID: "user1", Section: "profile"}, "user1", "user1", "user1")
	require.NoError(t, bus.Publish(ctx, ev))

	maxAttempts := 3
	require.Equal(t, maxAttempts, broken.Calls())
	require.Equal(t, maxAttempts, panicking.Calls())
	require.Equal(t, 1, healthy.Calls())
	require.Equal(t, ev, healthy.events[0])
}

func TestBus_Unsubscribe(t *testing.T) {
	ctx := testutil.MockContext()
	bus := NewBus()

	s := &mockSubscriber{name: "stats"}
	bus.Subscribe(s)
	bus.Unsubscribe("stats")

	require.NoError(t, bus.Publish(ctx, New(&UserPayload{UserID: "user1"}, "", "user1", "user1")))
	require.Zero(t, s.Calls())
}
