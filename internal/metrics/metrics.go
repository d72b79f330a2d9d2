package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	probeAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gatewait",
			Subsystem: "probe",
			Name:      "attempts_total",
			Help:      "Number of dependency probe attempts.",
		}, []string{"target"},
	)
	probeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gatewait",
			Subsystem: "probe",
			Name:      "failures_total",
			Help:      "Number of failed dependency probe attempts.",
		}, []string{"target"},
	)
	dependencyWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gatewait",
			Subsystem: "probe",
			Name:      "dependency_wait_seconds",
			Help:      "Time spent waiting for a dependency to become reachable.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"target"},
	)
	processStarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gatewait",
			Subsystem: "process",
			Name:      "starts_total",
			Help:      "Number of successful child process starts.",
		}, []string{"role"},
	)
	processStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gatewait",
			Subsystem: "process",
			Name:      "stops_total",
			Help:      "Number of child process exits (clean or terminated).",
		}, []string{"role"},
	)
	currentState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "gatewait",
			Subsystem: "supervisor",
			Name:      "state",
			Help:      "Current supervisor state (1 = active state, 0 = inactive).",
		}, []string{"state"},
	)
	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gatewait",
			Subsystem: "supervisor",
			Name:      "state_transitions_total",
			Help:      "Number of supervisor state transitions.",
		}, []string{"from", "to"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{probeAttempts, probeFailures, dependencyWait, processStarts, processStops, currentState, stateTransitions}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
// The caller is responsible for starting an HTTP server and wiring the route.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncProbeAttempt(target string) {
	if regOK.Load() {
		probeAttempts.WithLabelValues(target).Inc()
	}
}

func IncProbeFailure(target string) {
	if regOK.Load() {
		probeFailures.WithLabelValues(target).Inc()
	}
}

func ObserveDependencyWait(target string, seconds float64) {
	if regOK.Load() {
		dependencyWait.WithLabelValues(target).Observe(seconds)
	}
}

func IncProcessStart(role string) {
	if regOK.Load() {
		processStarts.WithLabelValues(role).Inc()
	}
}

func IncProcessStop(role string) {
	if regOK.Load() {
		processStops.WithLabelValues(role).Inc()
	}
}

func SetState(state string, active bool) {
	if regOK.Load() {
		var value float64
		if active {
			value = 1
		}
		currentState.WithLabelValues(state).Set(value)
	}
}

func RecordStateTransition(from, to string) {
	if regOK.Load() {
		stateTransitions.WithLabelValues(from, to).Inc()
	}
}
