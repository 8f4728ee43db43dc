// Package track holds the tracked-aircraft table and the sighting evaluator.
// Evaluate is the core decision step of every watch cycle: given the
// transponder codes observed in live airspace data and the per-aircraft
// last-alert times, it decides which aircraft are outside their cooldown
// window and should fire an alert now. The evaluation is read-only; the
// scheduler commits the resulting alert times separately after fanout.
package track
