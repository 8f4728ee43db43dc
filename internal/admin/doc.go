// Package admin implements the administrative operations on the destination
// registry as plain request/response calls: bind a tenant to an alert
// channel, and query which channel a tenant is bound to. The HTTP layer in
// internal/api is one transport over this service; the package itself knows
// nothing about HTTP.
package admin
