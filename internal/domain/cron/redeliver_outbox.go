package cron

import (
	"context"
	"time"

	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/pkg/dateutil"
	"github.com/questx-lab/netgraph/pkg/xcontext"
)

type RedeliverOutboxCronJob struct {
	outbox   *event.Outbox
	interval time.Duration
}

func NewRedeliverOutboxCronJob(outbox *event.Outbox, interval time.Duration) *RedeliverOutboxCronJob {
	return &RedeliverOutboxCronJob{outbox: outbox, interval: interval}
}

func (job *RedeliverOutboxCronJob) Do(ctx context.Context) {
	n, err := job.outbox.Redeliver(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot redeliver outbox events: %v", err)
		return
	}

	if n > 0 {
		xcontext.Logger(ctx).Infof("Redelivered %d outbox events", n)
	}
}

func (job *RedeliverOutboxCronJob) RunNow() bool {
	return true
}

func (job *RedeliverOutboxCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}

type CleanupOutboxCronJob struct {
	outbox *event.Outbox
}

func NewCleanupOutboxCronJob(outbox *event.Outbox) *CleanupOutboxCronJob {
	return &CleanupOutboxCronJob{outbox: outbox}
}

func (job *CleanupOutboxCronJob) Do(ctx context.Context) {
	n, err := job.outbox.Cleanup(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot cleanup delivered outbox events: %v", err)
		return
	}

	xcontext.Logger(ctx).Infof("Deleted %d delivered outbox events", n)
}

func (job *CleanupOutboxCronJob) RunNow() bool {
	return false
}

func (job *CleanupOutboxCronJob) Next() time.Time {
	return dateutil.NextDay(time.Now())
}
