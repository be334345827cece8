package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	transitionsTotal = promauto.With(ctrlmetrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "k3s_upgrade_monitor_transitions_total",
			Help: "Job lifecycle transitions reported, by kind.",
		},
		[]string{"kind"},
	)
	streamRestartsTotal = promauto.With(ctrlmetrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "k3s_upgrade_monitor_stream_restarts_total",
			Help: "Watch loop restarts, by reason (closed, failed).",
		},
		[]string{"reason"},
	)
	eventHandlerPanicsTotal = promauto.With(ctrlmetrics.Registry).NewCounter(
		prometheus.CounterOpts{
			Name: "k3s_upgrade_monitor_event_handler_panics_total",
			Help: "Job events whose handling panicked and was recovered.",
		},
	)
	trackedJobs = promauto.With(ctrlmetrics.Registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "k3s_upgrade_monitor_tracked_jobs",
			Help: "Number of job identities held by the transition tracker.",
		},
	)
)
