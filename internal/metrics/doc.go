// Package metrics defines the Prometheus collectors for the watch loop and
// notification fanout.
package metrics
