package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the process-wide metrics registry exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// CyclesTotal counts watch cycles, including aborted ones.
	CyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skywatch_cycles_total",
		Help: "Watch cycles started, including cycles aborted by fetch failures.",
	})

	// CycleFailures counts cycles aborted by a telemetry fetch failure.
	CycleFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skywatch_cycle_failures_total",
		Help: "Watch cycles aborted because the telemetry fetch failed.",
	})

	// SightingsTotal counts alert-eligible sightings that fired.
	SightingsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skywatch_sightings_total",
		Help: "Sightings that passed the cooldown check and fired an alert.",
	})

	// Deliveries counts per-destination delivery outcomes.
	// result is one of: ok | error | skipped.
	Deliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skywatch_deliveries_total",
		Help: "Alert deliveries per destination by outcome.",
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(
		CyclesTotal,
		CycleFailures,
		SightingsTotal,
		Deliveries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler returns the HTTP handler serving the registry in Prometheus
// exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
