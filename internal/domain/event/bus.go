package event

import (
	"context"
	"fmt"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/netgraph/internal/common"
	"github.com/questx-lab/netgraph/pkg/xcontext"
)

type Publisher interface {
	Publish(ctx context.Context, ev *MutationEvent) error
}

type Subscriber interface {
	Name() string
	Handle(ctx context.Context, ev *MutationEvent) error
}

// Bus dispatches events to subscribers in the current process. A failing subscriber never
// affects the others nor the publisher.
type Bus struct {
	subscribers *xsync.MapOf[string, Subscriber]
}

func NewBus() *Bus {
	return &Bus{subscribers: xsync.NewMapOf[Subscriber]()}
}

func (b *Bus) Subscribe(subscribers ...Subscriber) {
	for _, s := range subscribers {
		b.subscribers.Store(s.Name(), s)
	}
}

func (b *Bus) Unsubscribe(name string) {
	b.subscribers.Delete(name)
}

func (b *Bus) Publish(ctx context.Context, ev *MutationEvent) error {
	b.subscribers.Range(func(name string, s Subscriber) bool {
		b.dispatch(ctx, s, ev)
		return true
	})

	return nil
}

func (b *Bus) dispatch(ctx context.Context, s Subscriber, ev *MutationEvent) {
	cfg := xcontext.Configs(ctx).Bus
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = b.handle(ctx, s, ev); err == nil {
			return
		}

		xcontext.Logger(ctx).Warnf("Subscriber %s cannot handle %s (attempt %d): %v",
			s.Name(), ev.Type, i, err)

		if i < attempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(i) * cfg.RetryDelay):
			}
		}
	}

	xcontext.Logger(ctx).Errorf("Subscriber %s gave up event %s of %v: %v",
		s.Name(), ev.Type, ev.AffectedUserIDs, err)
	common.PromCounters[common.EventDispatchFailure].WithLabelValues(s.Name(), string(ev.Type)).Inc()
}

func (b *Bus) handle(ctx context.Context, s Subscriber, ev *MutationEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return s.Handle(ctx, ev)
}
