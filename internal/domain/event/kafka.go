package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/questx-lab/netgraph/pkg/enum"
	"github.com/questx-lab/netgraph/pkg/pubsub"
	"github.com/questx-lab/netgraph/pkg/xcontext"
)

const typeHeader = "event_type"

// KafkaPublisher sends events to the mutation topic. The worker command consumes the topic
// and dispatches the events to a Bus.
type KafkaPublisher struct {
	publisher pubsub.Publisher
	topic     string
}

func NewKafkaPublisher(publisher pubsub.Publisher, topic string) *KafkaPublisher {
	return &KafkaPublisher{publisher: publisher, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev *MutationEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	// Events of the same subject keep their order in a partition.
	key := ev.SubjectID
	if key == "" && len(ev.AffectedUserIDs) > 0 {
		key = ev.AffectedUserIDs[0]
	}

	return p.publisher.Publish(ctx, p.topic, &pubsub.Pack{
		Key:     []byte(key),
		Msg:     b,
		Headers: map[string]string{typeHeader: string(ev.Type)},
	})
}

// NewSubscribeHandler decodes messages of the mutation topic and publishes them to target.
func NewSubscribeHandler(target Publisher) pubsub.SubscribeHandler {
	return func(ctx context.Context, pack *pubsub.Pack, t time.Time) {
		if tp, ok := pack.Headers[typeHeader]; ok {
			if _, err := enum.ToEnum[Type](tp); err != nil {
				xcontext.Logger(ctx).Warnf("Skip message of unknown event type %s", tp)
				return
			}
		}

		ev := MutationEvent{}
		if err := json.Unmarshal(pack.Msg, &ev); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot unmarshal mutation event: %v", err)
			return
		}

		if err := ev.Validate(); err != nil {
			xcontext.Logger(ctx).Errorf("Invalid mutation event: %v", err)
			return
		}

		if ev.OccurredAt.IsZero() {
			ev.OccurredAt = t
		}

		if err := target.Publish(ctx, &ev); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot dispatch mutation event %s: %v", ev.Type, err)
		}
	}
}
