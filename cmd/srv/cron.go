package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/netgraph/internal/domain/cron"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	if err := s.loadAll(); err != nil {
		return err
	}

	cfg := xcontext.Configs(s.ctx)
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(
		cron.NewReconcileStatsCronJob(s.statsDomain, cfg.Stats.ReconcileInterval),
		cron.NewRedeliverOutboxCronJob(s.outbox, cfg.Outbox.RedeliverAfter),
		cron.NewCleanupOutboxCronJob(s.outbox),
		cron.NewExpirePendingConnectionCronJob(s.connectionRepo),
		cron.NewCleanupNotificationCronJob(s.notificationDomain),
		cron.NewEndorsementReminderCronJob(s.notificationDomain),
		cron.NewConnectionSuggestionCronJob(s.notificationDomain),
	)

	go func() {
		termSignal := make(chan os.Signal, 1)
		signal.Notify(termSignal, syscall.SIGINT, syscall.SIGTERM)
		sig := <-termSignal
		xcontext.Logger(s.ctx).Infof("Got a signal of %s", sig.String())
		cronJobManager.Cancel(s.ctx)
	}()

	cronJobManager.Start(s.ctx)
	return nil
}
