package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/Shopify/sarama"
	"github.com/questx-lab/netgraph/pkg/pubsub"
)

const (
	maxSendRetries = 5
	retryBackoff   = 200 * time.Millisecond
)

type publisher struct {
	clientID    string
	brokerAddrs []string
	producer    sarama.SyncProducer
}

// NewPublisher creates a producer which waits for all in-sync replicas and partitions
// messages by key.
func NewPublisher(clientID string, brokerAddrs []string) (*publisher, error) {
	config := sarama.NewConfig()
	config.ClientID = clientID
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Producer.Retry.Max = maxSendRetries
	config.Producer.Retry.Backoff = retryBackoff
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokerAddrs, config)
	if err != nil {
		return nil, err
	}

	return &publisher{
		clientID:    clientID,
		brokerAddrs: brokerAddrs,
		producer:    producer,
	}, nil
}

func (p *publisher) Stop(ctx context.Context) error {
	return p.producer.Close()
}

func (p *publisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.ByteEncoder(pack.Key),
		Value:   sarama.ByteEncoder(pack.Msg),
		Headers: toRecordHeaders(pack.Headers),
	}

	if _, _, err := p.producer.SendMessage(m); err != nil {
		return fmt.Errorf("send message to %s: %w", topic, err)
	}

	return nil
}

func toRecordHeaders(headers map[string]string) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}

	records := make([]sarama.RecordHeader, 0, len(headers))
	for k, v := range headers {
		records = append(records, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	return records
}

func fromRecordHeaders(records []*sarama.RecordHeader) map[string]string {
	if len(records) == 0 {
		return nil
	}

	headers := make(map[string]string, len(records))
	for _, r := range records {
		headers[string(r.Key)] = string(r.Value)
	}

	return headers
}
