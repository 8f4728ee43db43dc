package api

// HealthResponse is the payload for GET /healthz. A zero Destinations with a
// running watch means sightings fire but nobody receives them.
type HealthResponse struct {
	Status       string `json:"status"`
	WatchRunning bool   `json:"watch_running"`
	Destinations int    `json:"destinations"`
}

// AircraftResponse is one tracked aircraft in GET /api/v1/aircraft.
type AircraftResponse struct {
	Icao24       string `json:"icao24"`
	Registration string `json:"registration"`
	LastAlertAt  string `json:"last_alert_at,omitempty"` // RFC3339; absent when never alerted
}

// DestinationResponse is the payload for the destination endpoints.
// Status is one of: ok | unset | invalid.
type DestinationResponse struct {
	TenantID  string `json:"tenant_id"`
	Status    string `json:"status"`
	ChannelID string `json:"channel_id,omitempty"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
