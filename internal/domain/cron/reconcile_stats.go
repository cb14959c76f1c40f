package cron

import (
	"context"
	"time"

	"github.com/questx-lab/netgraph/internal/domain"
	"github.com/questx-lab/netgraph/pkg/dateutil"
	"github.com/questx-lab/netgraph/pkg/xcontext"
)

// ReconcileStatsCronJob recomputes the stats of every user, fixing counters of events which
// were lost or failed.
type ReconcileStatsCronJob struct {
	statsDomain domain.StatsDomain
	interval    time.Duration
}

func NewReconcileStatsCronJob(statsDomain domain.StatsDomain, interval time.Duration) *ReconcileStatsCronJob {
	return &ReconcileStatsCronJob{statsDomain: statsDomain, interval: interval}
}

func (job *ReconcileStatsCronJob) Do(ctx context.Context) {
	n, err := job.statsDomain.RebuildAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reconcile profile stats after %d users: %v", n, err)
		return
	}

	xcontext.Logger(ctx).Infof("Reconciled profile stats of %d users", n)
}

func (job *ReconcileStatsCronJob) RunNow() bool {
	return false
}

func (job *ReconcileStatsCronJob) Next() time.Time {
	return dateutil.NextInterval(time.Now(), job.interval)
}
