package watch

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/skywatch/skywatch/internal/metrics"
	"github.com/skywatch/skywatch/internal/track"
)

// Fetcher retrieves the transponder codes from the tracked set that are
// currently visible in live airspace data.
type Fetcher interface {
	States(ctx context.Context, icaos []string) ([]string, error)
}

// Sink consumes sightings that passed the cooldown check.
type Sink interface {
	Broadcast(ctx context.Context, s track.Sighting)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(context.Context, track.Sighting)

// Broadcast calls f.
func (f SinkFunc) Broadcast(ctx context.Context, s track.Sighting) { f(ctx, s) }

// Runner drives the fetch → evaluate → fan out → commit pipeline on a fixed
// interval for the lifetime of the process.
type Runner struct {
	fetcher  Fetcher
	table    *track.Table
	sinks    []Sink
	interval time.Duration

	running atomic.Bool
	now     func() time.Time // injectable for deterministic tests
}

// New creates a Runner. Sightings are handed to every sink in order.
func New(fetcher Fetcher, table *track.Table, interval time.Duration, sinks ...Sink) *Runner {
	return &Runner{
		fetcher:  fetcher,
		table:    table,
		sinks:    sinks,
		interval: interval,
		now:      time.Now,
	}
}

// Start launches the watch loop in its own goroutine. Calling Start while
// the loop is already running is a no-op. The loop has no stop condition of
// its own; it exits when ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		slog.Info("watch: loop already running — ignoring Start")
		return
	}
	go r.run(ctx)
}

// Running reports whether the watch loop is active.
func (r *Runner) Running() bool {
	return r.running.Load()
}

func (r *Runner) run(ctx context.Context) {
	slog.Info("watch: loop started",
		"interval", r.interval, "aircraft", len(r.table.Icaos()))

	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.running.Store(false)
			slog.Info("watch: loop stopped")
			return
		case <-t.C:
			r.runCycle(ctx)
		}
	}
}

// runCycle executes one fetch → evaluate → fan out → commit pass. Any
// failure is confined to this cycle: state stays untouched, nothing is sent,
// and the next tick is the de facto retry.
func (r *Runner) runCycle(ctx context.Context) {
	metrics.CyclesTotal.Inc()

	observed, err := r.fetcher.States(ctx, r.table.Icaos())
	if err != nil {
		metrics.CycleFailures.Inc()
		slog.Warn("watch: fetch failed — skipping cycle", "err", err)
		return
	}

	sightings := r.table.Evaluate(observed, r.now())
	for _, s := range sightings {
		slog.Info("watch: tracked aircraft spotted",
			"icao24", s.Icao24, "registration", s.Registration)
		metrics.SightingsTotal.Inc()
		for _, sink := range r.sinks {
			sink.Broadcast(ctx, s)
		}
	}

	// Alert times are committed once delivery has been attempted, whether or
	// not any destination accepted it. Delivery failures do not re-open the
	// cooldown; the next qualifying sighting is the retry path.
	r.table.Commit(sightings)
}
