package event

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/internal/repository"
	"github.com/questx-lab/netgraph/pkg/idutil"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"gorm.io/gorm"
)

// Outbox stores events in the transaction of the mutation and publishes them once the
// transaction committed. Rows which could not be published are picked up by Redeliver.
type Outbox struct {
	outboxRepo repository.OutboxRepository
	publisher  Publisher
}

func NewOutbox(outboxRepo repository.OutboxRepository, publisher Publisher) *Outbox {
	return &Outbox{outboxRepo: outboxRepo, publisher: publisher}
}

// Stage must be called with the context of the mutation transaction.
func (o *Outbox) Stage(ctx context.Context, ev *MutationEvent) (*entity.OutboxEvent, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}

	record := &entity.OutboxEvent{
		SnowFlakeBase: entity.SnowFlakeBase{ID: idutil.NextSnowflake()},
		Type:          string(ev.Type),
		Data:          b,
	}

	if err := o.outboxRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// Deliver publishes staged records. Errors are logged, the records stay undelivered.
func (o *Outbox) Deliver(ctx context.Context, records ...*entity.OutboxEvent) {
	for _, record := range records {
		if err := o.deliver(ctx, record); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot deliver outbox event %d: %v", record.ID, err)
		}
	}
}

func (o *Outbox) deliver(ctx context.Context, record *entity.OutboxEvent) error {
	ev := MutationEvent{}
	if err := json.Unmarshal(record.Data, &ev); err != nil {
		return err
	}

	if err := o.publisher.Publish(ctx, &ev); err != nil {
		if err := o.outboxRepo.IncreaseAttempts(ctx, record.ID); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot increase outbox attempts: %v", err)
		}

		maxAttempts := xcontext.Configs(ctx).Outbox.MaxAttempts
		if maxAttempts > 0 && record.Attempts+1 >= maxAttempts {
			xcontext.Logger(ctx).Errorf("Give up outbox event %d of %s after %d attempts",
				record.ID, record.Type, record.Attempts+1)
		}

		return err
	}

	err := o.outboxRepo.MarkDelivered(ctx, record.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Delivered concurrently by the redelivery job.
		return nil
	}

	return err
}

// Redeliver publishes every record which is still undelivered after the configured delay.
// Records failing in this run do not hold back the later ones. It returns the number of
// delivered records.
func (o *Outbox) Redeliver(ctx context.Context) (int, error) {
	cfg := xcontext.Configs(ctx).Outbox
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	createdBefore := time.Now().Add(-cfg.RedeliverAfter)
	delivered := 0
	var lastID int64
	for {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}

		records, err := o.outboxRepo.GetUndelivered(ctx, createdBefore, cfg.MaxAttempts, lastID, batchSize)
		if err != nil {
			return delivered, err
		}

		for i := range records {
			if err := o.deliver(ctx, &records[i]); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot redeliver outbox event %d: %v", records[i].ID, err)
				continue
			}

			delivered++
		}

		if len(records) < batchSize {
			return delivered, nil
		}

		lastID = records[len(records)-1].ID
	}
}

// Cleanup deletes records delivered before the configured retention.
func (o *Outbox) Cleanup(ctx context.Context) (int64, error) {
	before := time.Now().Add(-xcontext.Configs(ctx).Outbox.Retention)
	return o.outboxRepo.DeleteDeliveredBefore(ctx, before)
}
