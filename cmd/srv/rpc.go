package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/netgraph/internal/domain/graphrpc"
	"github.com/questx-lab/netgraph/pkg/prometheus"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startRPC(*cli.Context) error {
	if err := s.loadAll(); err != nil {
		return err
	}

	cfg := xcontext.Configs(s.ctx)
	graphServer := graphrpc.NewServer(s.ctx, s.policyDomain, s.statsDomain, s.connectionDomain,
		s.followDomain, s.endorsementDomain, s.notificationDomain, s.publisher)

	rpcHandler := rpc.NewServer()
	if err := rpcHandler.RegisterName(cfg.RPCServer.RPCName, graphServer); err != nil {
		xcontext.Logger(s.ctx).Errorf("Cannot register graph server: %v", err)
		return err
	}
	defer rpcHandler.Stop()

	metricsCtx, stopMetrics := context.WithCancel(s.ctx)
	defer stopMetrics()
	go s.startMetrics(metricsCtx)

	httpSrv := &http.Server{
		Handler: rpcHandler,
		Addr:    cfg.RPCServer.Address(),
	}

	go func() {
		termSignal := make(chan os.Signal, 1)
		signal.Notify(termSignal, syscall.SIGINT, syscall.SIGTERM)
		sig := <-termSignal
		xcontext.Logger(s.ctx).Infof("Got a signal of %s", sig.String())
		if err := httpSrv.Shutdown(s.ctx); err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot shutdown rpc server: %v", err)
		}
	}()

	xcontext.Logger(s.ctx).Infof("Started rpc server of graph at %s", httpSrv.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		xcontext.Logger(s.ctx).Errorf("A error occurs when running rpc server: %v", err)
		return err
	}
	xcontext.Logger(s.ctx).Infof("Stopped rpc server of graph")

	return nil
}

func (s *srv) startMetrics(ctx context.Context) {
	addr := xcontext.Configs(s.ctx).Metrics.Address()
	if err := prometheus.Serve(ctx, addr); err != nil {
		xcontext.Logger(s.ctx).Errorf("A error occurs when running metrics server: %v", err)
	}
}
