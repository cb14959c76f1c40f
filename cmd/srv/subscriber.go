package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/pkg/kafka"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startWorker(*cli.Context) error {
	if err := s.loadAll(); err != nil {
		return err
	}

	cfg := xcontext.Configs(s.ctx).Kafka
	subscriber, err := kafka.NewSubscriber(
		cfg.ConsumerGroup,
		[]string{cfg.Addr},
		[]string{cfg.MutationTopic},
		event.NewSubscribeHandler(s.bus),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	go s.startMetrics(ctx)

	subscriber.Subscribe(ctx)
	xcontext.Logger(s.ctx).Infof("Started worker of topic %s", cfg.MutationTopic)

	termSignal := make(chan os.Signal, 1)
	signal.Notify(termSignal, syscall.SIGINT, syscall.SIGTERM)
	sig := <-termSignal
	xcontext.Logger(s.ctx).Infof("Got a signal of %s", sig.String())

	cancel()
	return subscriber.Stop(s.ctx)
}
