package pubsub

import "context"

// Pack is a single message on a topic. Messages with the same key keep their order.
type Pack struct {
	Key     []byte
	Msg     []byte
	Headers map[string]string
}

type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
}
