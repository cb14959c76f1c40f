package cron

import (
	"context"
	"time"

	"github.com/questx-lab/netgraph/internal/repository"
	"github.com/questx-lab/netgraph/pkg/dateutil"
	"github.com/questx-lab/netgraph/pkg/xcontext"
)

// ExpirePendingConnectionCronJob deletes connection requests nobody answered in time, so
// they can be sent again.
type ExpirePendingConnectionCronJob struct {
	connectionRepo repository.ConnectionRepository
}

func NewExpirePendingConnectionCronJob(
	connectionRepo repository.ConnectionRepository,
) *ExpirePendingConnectionCronJob {
	return &ExpirePendingConnectionCronJob{connectionRepo: connectionRepo}
}

func (job *ExpirePendingConnectionCronJob) Do(ctx context.Context) {
	before := time.Now().Add(-xcontext.Configs(ctx).Connection.PendingExpiration)
	expired, err := job.connectionRepo.DeletePendingBefore(ctx, before)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot expire pending connections: %v", err)
		return
	}

	xcontext.Logger(ctx).Infof("Expired %d pending connections", len(expired))
}

func (job *ExpirePendingConnectionCronJob) RunNow() bool {
	return true
}

func (job *ExpirePendingConnectionCronJob) Next() time.Time {
	return dateutil.NextDay(time.Now())
}
