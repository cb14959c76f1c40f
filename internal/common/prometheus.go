package common

import "github.com/prometheus/client_golang/prometheus"

const (
	GraphMutationTotal       = "graph_mutation_total"
	EventDispatchFailure     = "event_dispatch_failure"
	NotificationFailure      = "notification_failure"
	StatsRecomputeTotal      = "stats_recompute_total"
	StatsRebuildFailure      = "stats_rebuild_failure"
	PolicyDecisionTotal      = "policy_decision_total"
	RPCRequestDurationSecond = "rpc_request_duration_seconds"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		GraphMutationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: GraphMutationTotal,
			Help: "Count of all committed graph mutations",
		}, []string{"type"}),
		EventDispatchFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: EventDispatchFailure,
			Help: "Count of mutation events a subscriber failed to handle",
		}, []string{"subscriber", "type"}),
		NotificationFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: NotificationFailure,
			Help: "Count of notifications which could not be created",
		}, []string{"type"}),
		StatsRecomputeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: StatsRecomputeTotal,
			Help: "Count of profile stats recomputations",
		}, []string{"changed"}),
		StatsRebuildFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: StatsRebuildFailure,
			Help: "Count of users whose stats could not be rebuilt",
		}, []string{}),
		PolicyDecisionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PolicyDecisionTotal,
			Help: "Count of policy decisions",
		}, []string{"check", "allowed"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		RPCRequestDurationSecond: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: RPCRequestDurationSecond,
			Help: "Duration of all rpc requests",
		}, []string{"method"}),
	}
)
