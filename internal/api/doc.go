// Package api exposes the HTTP surface: the liveness endpoint used by the
// hosting platform, the tracked-aircraft status view, and the destination
// admin operations. Mutating requests are gated by an admin key header; all
// admin service errors are mapped to one uniform JSON error shape.
package api
