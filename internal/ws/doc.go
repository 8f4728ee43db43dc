// Package ws streams fired sightings to WebSocket clients. Unlike the
// webhook fanout, the stream is best-effort and unregistered: any client may
// connect, and slow clients are dropped rather than buffered indefinitely.
package ws
