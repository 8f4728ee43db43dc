// Package watch runs the polling loop: every interval it fetches live
// airspace state for the tracked aircraft, evaluates which sightings are
// outside their cooldown window, fans the resulting alerts out to the
// configured sinks, and commits the alert times. A failed cycle is logged
// and skipped; the loop itself never stops on error.
package watch
