// Package notify implements the notification fanout: formatting a sighting
// alert and delivering it to every registered destination's webhook channel
// (Discord, Slack, or generic HTTP), isolating per-destination failures.
package notify
